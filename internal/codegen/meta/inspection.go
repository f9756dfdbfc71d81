package meta

import "slices"

// Inspection is the read-only result of one crawl: interop methods in
// declaration order, custom types in first-seen order, and the target
// namespaces that hold them in first-seen order.
type Inspection struct {
	methods []MethodDescriptor
	types   []CustomTypeDescriptor
	spaces  []string
	index   map[string]int
}

// NewInspection copies its inputs so later mutation by the caller cannot leak in.
func NewInspection(methods []MethodDescriptor, types []CustomTypeDescriptor, spaces []string) *Inspection {
	in := &Inspection{
		methods: slices.Clone(methods),
		types:   slices.Clone(types),
		spaces:  slices.Clone(spaces),
		index:   make(map[string]int, len(types)),
	}
	for i, t := range in.types {
		in.index[t.ID.Key()] = i
	}
	return in
}

func (in *Inspection) Methods() []MethodDescriptor { return slices.Clone(in.methods) }

func (in *Inspection) Types() []CustomTypeDescriptor { return slices.Clone(in.types) }

// Spaces returns the target namespaces in first-seen order.
func (in *Inspection) Spaces() []string { return slices.Clone(in.spaces) }

// Empty reports whether the crawl found no interop methods.
func (in *Inspection) Empty() bool { return len(in.methods) == 0 }

// Type looks up a crawled custom type by identity.
func (in *Inspection) Type(id TypeID) (CustomTypeDescriptor, bool) {
	i, ok := in.index[id.Key()]
	if !ok {
		return CustomTypeDescriptor{}, false
	}
	return in.types[i], true
}

// TargetSpaceOf returns the resolved namespace of a crawled type. Types the
// crawl never reached report the global namespace.
func (in *Inspection) TargetSpaceOf(id TypeID) string {
	if space, ok := in.LookupSpace(id); ok {
		return space
	}
	return GlobalSpace
}

// LookupSpace is TargetSpaceOf that also reports whether id was crawled.
func (in *Inspection) LookupSpace(id TypeID) (string, bool) {
	t, ok := in.Type(id)
	return t.TargetSpace, ok
}

// MethodsIn returns the methods declared under a target namespace, in declaration order.
func (in *Inspection) MethodsIn(space string) []MethodDescriptor {
	var out []MethodDescriptor
	for _, m := range in.methods {
		if m.TargetSpace == space {
			out = append(out, m)
		}
	}
	return out
}

// TypesIn returns the types declared under a target namespace, in first-seen order.
func (in *Inspection) TypesIn(space string) []CustomTypeDescriptor {
	var out []CustomTypeDescriptor
	for _, t := range in.types {
		if t.TargetSpace == space {
			out = append(out, t)
		}
	}
	return out
}
