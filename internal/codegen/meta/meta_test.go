package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeIDKey(t *testing.T) {
	assert.Equal(t, "n.Foo", TypeID{Namespace: "n", Name: "Foo"}.Key())
	assert.Equal(t, "Foo", TypeID{Name: "Foo"}.Key())
	assert.Equal(t, "n.Box`2", TypeID{Namespace: "n", Name: "Box", Arity: 2}.Key())
}

func TestRequiresSerialization(t *testing.T) {
	num := Primitive(BucketNumeric, "System.Int32")
	info := Custom(TypeID{Name: "Info"})
	tests := []struct {
		name string
		ref  *TypeRef
		want bool
	}{
		{"primitive", num, false},
		{"typed array", Primitive(BucketUint8Array, "System.Byte[]"), false},
		{"unknown", Unknown("object"), false},
		{"param", Param("T"), false},
		{"custom", info, true},
		{"nullable custom", Nullable(info), true},
		{"plain array of primitive", ArrayOf(num), false},
		{"plain array of custom", ArrayOf(Nullable(info)), true},
		{"generic list of primitive", ListOf(ContainerIList, num), true},
		{"map", MapOf(ContainerDictionary, num, num), true},
		{"generic", GenericOf(TypeID{Name: "Box"}, num), true},
		{"async void", Async(nil), false},
		{"async primitive", Async(num), false},
		{"async custom", Async(info), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ref.RequiresSerialization())
		})
	}
}

func TestValueDescriptorFlags(t *testing.T) {
	v := ValueDescriptor{Type: Async(Nullable(Custom(TypeID{Name: "Info"})))}
	assert.True(t, v.Async())
	assert.True(t, v.Nullable())
	assert.False(t, v.Void())
	assert.False(t, ValueDescriptor{Type: Void()}.Nullable())
	assert.True(t, ValueDescriptor{Type: Async(nil)}.Void())
	assert.True(t, ValueDescriptor{Type: Void()}.Void())
}

func TestNullableIsIdempotent(t *testing.T) {
	n := Nullable(Nullable(Void()))
	assert.Equal(t, KindPrimitive, n.Elem.Kind)
}

func TestGenericOfInfersArity(t *testing.T) {
	g := GenericOf(TypeID{Name: "Pair"}, Void(), Void())
	assert.Equal(t, 2, g.ID.Arity)
	assert.True(t, Param("T").IsOpen())
	assert.True(t, ListOf(ContainerList, GenericOf(TypeID{Name: "Box"}, Param("T"))).IsOpen())
	assert.False(t, g.IsOpen())
}

func TestInspectionLookups(t *testing.T) {
	foo := CustomTypeDescriptor{ID: TypeID{Namespace: "n", Name: "Foo"}, TargetSpace: "N"}
	methods := []MethodDescriptor{{Kind: Invokable, Name: "A", TargetSpace: "N"}, {Kind: Event, Name: "B", TargetSpace: "M"}}
	in := NewInspection(methods, []CustomTypeDescriptor{foo}, []string{"N", "M"})

	methods[0].Name = "mutated"
	assert.Equal(t, "A", in.Methods()[0].Name)
	assert.Equal(t, "N", in.TargetSpaceOf(foo.ID))
	assert.Equal(t, GlobalSpace, in.TargetSpaceOf(TypeID{Name: "Missing"}))
	assert.Len(t, in.MethodsIn("M"), 1)
	assert.Len(t, in.TypesIn("N"), 1)
	assert.False(t, in.Empty())
}

func TestParseMethodKind(t *testing.T) {
	k, err := ParseMethodKind("Event")
	assert.NoError(t, err)
	assert.Equal(t, Event, k)
	_, err = ParseMethodKind("callback")
	assert.Error(t, err)
}
