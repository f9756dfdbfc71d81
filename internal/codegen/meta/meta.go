// Package meta holds the immutable records shared between the crawler and
// the language generators: interop methods, the custom value types they
// reference, and the Inspection aggregate built from one crawl.
package meta

import (
	"fmt"
	"strconv"
	"strings"
)

// GlobalSpace is the target namespace used for declarations without a namespace.
const GlobalSpace = "Global"

// TypeID is the canonical identity of a custom type.
type TypeID struct {
	Namespace string `json:"namespace" yaml:"namespace" toml:"namespace"`
	Name      string `json:"name" yaml:"name" toml:"name"`
	Arity     int    `json:"arity,omitempty" yaml:"arity,omitempty" toml:"arity,omitempty"`
}

// FullName returns the dot-joined namespace and name, without arity.
func (id TypeID) FullName() string {
	if id.Namespace == "" {
		return id.Name
	}
	return id.Namespace + "." + id.Name
}

// Key is the deduplication key: full name plus a "`N" arity suffix for generics.
func (id TypeID) Key() string {
	if id.Arity == 0 {
		return id.FullName()
	}
	return id.FullName() + "`" + strconv.Itoa(id.Arity)
}

func (id TypeID) String() string { return id.Key() }

// MethodKind is the interop direction of a method.
type MethodKind int

const (
	// KindNone marks a method that does not cross the boundary; the crawler skips it.
	KindNone MethodKind = iota
	// Invokable methods are implemented on the producing side and called by scripts.
	Invokable
	// Function methods are implemented by scripts and called by the producing side.
	Function
	// Event methods are broadcast by the producing side to script subscribers.
	Event
)

func (k MethodKind) String() string {
	switch k {
	case Invokable:
		return "invokable"
	case Function:
		return "function"
	case Event:
		return "event"
	default:
		return "none"
	}
}

// ParseMethodKind maps a descriptor kind string to a MethodKind.
func ParseMethodKind(s string) (MethodKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return KindNone, nil
	case "invokable":
		return Invokable, nil
	case "function":
		return Function, nil
	case "event":
		return Event, nil
	default:
		return KindNone, fmt.Errorf("unknown method kind %q", s)
	}
}

// ModuleIdentity names where a method is declared on the producing side.
type ModuleIdentity struct {
	Assembly string // compiled module name, without extension
	Owner    string // short name of the declaring type
}

// ArgumentDescriptor is a single method argument.
type ArgumentDescriptor struct {
	Name string
	Type *TypeRef
}

// Nullable reports whether the argument may be omitted.
func (a ArgumentDescriptor) Nullable() bool { return a.Type.IsNullable() }

// ValueDescriptor describes a method's return value.
type ValueDescriptor struct {
	Type *TypeRef
}

// Async reports whether the value is wrapped in an async result.
func (v ValueDescriptor) Async() bool { return v.Type.IsAsync() }

// Nullable reports whether the (awaited) value may be null.
func (v ValueDescriptor) Nullable() bool {
	if v.Async() {
		return v.Type.Elem.IsNullable()
	}
	return v.Type.IsNullable()
}

// Void reports whether the method produces no value (sync or async).
func (v ValueDescriptor) Void() bool {
	t := v.Type
	if t.IsAsync() {
		t = t.Elem
	}
	return t == nil || (t.Kind == KindPrimitive && t.Bucket == BucketVoid)
}

// MethodDescriptor is an interop method. Space and Name come from the
// producing side; TargetSpace and TargetName are filled in by the crawler.
type MethodDescriptor struct {
	Kind        MethodKind
	Module      ModuleIdentity
	Space       string
	TargetSpace string
	Name        string
	TargetName  string
	Arguments   []ArgumentDescriptor
	Return      ValueDescriptor
}

func (m MethodDescriptor) String() string {
	args := make([]string, len(m.Arguments))
	for i, a := range m.Arguments {
		args[i] = a.Type.String() + " " + a.Name
	}
	return fmt.Sprintf("[%s] %s.%s.%s (%s) => %s",
		m.Kind, m.Module.Assembly, m.Space, m.Name, strings.Join(args, ", "), m.Return.Type)
}

// TypeShape discriminates object and enum custom types.
type TypeShape int

const (
	ShapeObject TypeShape = iota
	ShapeEnum
)

// Member is a property of an object-shaped custom type.
type Member struct {
	Name     string
	Type     *TypeRef
	Static   bool
	Computed bool // expression-bodied, has no backing storage
}

// Nullable reports whether the member may be absent.
func (m Member) Nullable() bool { return m.Type.IsNullable() }

// EnumValue is one declared enum member with its numeric value.
type EnumValue struct {
	Name  string
	Value int64
}

// CustomTypeDescriptor is the shape of a custom value type.
type CustomTypeDescriptor struct {
	ID          TypeID
	TargetSpace string
	Shape       TypeShape
	TypeParams  []string
	Members     []Member
	Values      []EnumValue
	Extends     []*TypeRef
}

// NamespaceRule rewrites matching source namespaces; see the namespace package.
type NamespaceRule struct {
	Pattern     string `json:"pattern" yaml:"pattern" toml:"pattern"`
	Replacement string `json:"replacement" yaml:"replacement" toml:"replacement"`
}

// ModuleDescriptor is everything one compiled module contributes.
type ModuleDescriptor struct {
	Assembly string
	Rules    []NamespaceRule
	Methods  []MethodDescriptor
	Types    []CustomTypeDescriptor
}
