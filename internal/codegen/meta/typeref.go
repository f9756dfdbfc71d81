package meta

import "strings"

// TypeKind discriminates the TypeRef variant.
type TypeKind int

const (
	KindUnknown TypeKind = iota
	KindPrimitive
	KindNullable
	KindArray
	KindMap
	KindGeneric
	KindCustom
	KindAsync
	KindParam
)

func (k TypeKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindNullable:
		return "nullable"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindGeneric:
		return "generic"
	case KindCustom:
		return "custom"
	case KindAsync:
		return "async"
	case KindParam:
		return "param"
	default:
		return "unknown"
	}
}

// Bucket is the consuming-side category a primitive falls into.
type Bucket int

const (
	BucketAny Bucket = iota
	BucketVoid
	BucketNumeric
	BucketBigInt
	BucketBoolean
	BucketString
	BucketDate
	BucketInt8Array
	BucketUint8Array
	BucketInt16Array
	BucketUint16Array
	BucketInt32Array
	BucketUint32Array
	BucketBigInt64Array
	BucketBigUint64Array
)

// Container names the producing-side collection a list or map is declared as.
type Container string

const (
	ContainerArray               Container = ""
	ContainerList                Container = "System.Collections.Generic.List"
	ContainerIList               Container = "System.Collections.Generic.IList"
	ContainerIReadOnlyList       Container = "System.Collections.Generic.IReadOnlyList"
	ContainerICollection         Container = "System.Collections.Generic.ICollection"
	ContainerIReadOnlyCollection Container = "System.Collections.Generic.IReadOnlyCollection"
	ContainerDictionary          Container = "System.Collections.Generic.Dictionary"
	ContainerIDictionary         Container = "System.Collections.Generic.IDictionary"
	ContainerIReadOnlyDictionary Container = "System.Collections.Generic.IReadOnlyDictionary"
)

// IsInterface reports whether the container is an interface that needs a
// concrete backing container on the producing side.
func (c Container) IsInterface() bool {
	switch c {
	case ContainerIList, ContainerIReadOnlyList, ContainerICollection,
		ContainerIReadOnlyCollection, ContainerIDictionary, ContainerIReadOnlyDictionary:
		return true
	}
	return false
}

// Backing returns the concrete container backing c.
func (c Container) Backing() Container {
	switch c {
	case ContainerIList, ContainerIReadOnlyList, ContainerICollection, ContainerIReadOnlyCollection:
		return ContainerList
	case ContainerIDictionary, ContainerIReadOnlyDictionary:
		return ContainerDictionary
	}
	return c
}

// TypeRef is a closed reference to a type as it appears in a signature or member.
//
// Only the fields relevant to Kind are set:
//
//	Primitive: Bucket, Name (producing-side name, e.g. "System.Int32")
//	Nullable, Async: Elem (nil Elem on Async means no value)
//	Array: Elem, Container
//	Map: Key, Elem (value), Container
//	Generic: ID, Args
//	Custom: ID
//	Param: Name
type TypeRef struct {
	Kind      TypeKind
	Bucket    Bucket
	Name      string
	Container Container
	ID        TypeID
	Elem      *TypeRef
	Key       *TypeRef
	Args      []*TypeRef
}

func Primitive(bucket Bucket, name string) *TypeRef {
	return &TypeRef{Kind: KindPrimitive, Bucket: bucket, Name: name}
}

// Void is the return type of methods without a value.
func Void() *TypeRef { return Primitive(BucketVoid, "System.Void") }

func Unknown(name string) *TypeRef { return &TypeRef{Kind: KindUnknown, Name: name} }

// Nullable wraps inner; wrapping an already nullable reference is a no-op.
func Nullable(inner *TypeRef) *TypeRef {
	if inner != nil && inner.Kind == KindNullable {
		return inner
	}
	return &TypeRef{Kind: KindNullable, Elem: inner}
}

func ArrayOf(elem *TypeRef) *TypeRef {
	return &TypeRef{Kind: KindArray, Elem: elem, Container: ContainerArray}
}

func ListOf(container Container, elem *TypeRef) *TypeRef {
	return &TypeRef{Kind: KindArray, Elem: elem, Container: container}
}

func MapOf(container Container, key, value *TypeRef) *TypeRef {
	return &TypeRef{Kind: KindMap, Key: key, Elem: value, Container: container}
}

func GenericOf(id TypeID, args ...*TypeRef) *TypeRef {
	if id.Arity == 0 {
		id.Arity = len(args)
	}
	return &TypeRef{Kind: KindGeneric, ID: id, Args: args}
}

func Custom(id TypeID) *TypeRef { return &TypeRef{Kind: KindCustom, ID: id} }

// Async wraps the awaited result; pass nil for a wrapper without a value.
func Async(inner *TypeRef) *TypeRef { return &TypeRef{Kind: KindAsync, Elem: inner} }

func Param(name string) *TypeRef { return &TypeRef{Kind: KindParam, Name: name} }

// IsNullable reports whether the reference is nullable at the top level.
func (t *TypeRef) IsNullable() bool { return t != nil && t.Kind == KindNullable }

// IsAsync reports whether the reference is an async wrapper at the top level.
func (t *TypeRef) IsAsync() bool { return t != nil && t.Kind == KindAsync }

// Unwrap strips a top-level nullable wrapper.
func (t *TypeRef) Unwrap() *TypeRef {
	if t.IsNullable() {
		return t.Elem
	}
	return t
}

// Walk visits t and every nested reference in depth-first order.
// Returning false from fn skips the children of the visited node.
func (t *TypeRef) Walk(fn func(*TypeRef) bool) {
	if t == nil || !fn(t) {
		return
	}
	t.Key.Walk(fn)
	t.Elem.Walk(fn)
	for _, a := range t.Args {
		a.Walk(fn)
	}
}

// IsOpen reports whether the reference mentions a generic parameter anywhere.
func (t *TypeRef) IsOpen() bool {
	open := false
	t.Walk(func(r *TypeRef) bool {
		if r.Kind == KindParam {
			open = true
		}
		return !open
	})
	return open
}

// String renders the reference in producing-side notation, for logs and diagnostics.
func (t *TypeRef) String() string {
	if t == nil {
		return "void"
	}
	switch t.Kind {
	case KindPrimitive, KindParam:
		return t.Name
	case KindNullable:
		return t.Elem.String() + "?"
	case KindArray:
		if t.Container == ContainerArray {
			return t.Elem.String() + "[]"
		}
		return string(t.Container) + "<" + t.Elem.String() + ">"
	case KindMap:
		return string(t.Container) + "<" + t.Key.String() + ", " + t.Elem.String() + ">"
	case KindGeneric:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = a.String()
		}
		return t.ID.FullName() + "<" + strings.Join(args, ", ") + ">"
	case KindCustom:
		return t.ID.FullName()
	case KindAsync:
		if t.Elem == nil {
			return "Task"
		}
		return "Task<" + t.Elem.String() + ">"
	default:
		if t.Name != "" {
			return t.Name
		}
		return "unknown"
	}
}

// RequiresSerialization reports whether values of this type cross the
// boundary as serialized text. Custom and generic types do, as do
// collections declared through a generic container and anything nesting
// them; primitive buckets, typed arrays, parameters, and unknown types do not.
func (t *TypeRef) RequiresSerialization() bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case KindCustom, KindGeneric, KindMap:
		return true
	case KindArray:
		return t.Container != ContainerArray || t.Elem.RequiresSerialization()
	case KindNullable, KindAsync:
		return t.Elem.RequiresSerialization()
	default:
		return false
	}
}
