package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/interopgen/internal/codegen/meta"
	"github.com/Alia5/interopgen/internal/codegen/namespace"
)

func str() *meta.TypeRef { return meta.Primitive(meta.BucketString, "System.String") }

func method(kind meta.MethodKind, space, name string, ret *meta.TypeRef, args ...meta.ArgumentDescriptor) meta.MethodDescriptor {
	return meta.MethodDescriptor{
		Kind:      kind,
		Module:    meta.ModuleIdentity{Owner: "Program"},
		Space:     space,
		Name:      name,
		Arguments: args,
		Return:    meta.ValueDescriptor{Type: ret},
	}
}

func crawl(t *testing.T, rules []meta.NamespaceRule, mods ...meta.ModuleDescriptor) *meta.Inspection {
	t.Helper()
	r, err := namespace.New(rules)
	require.NoError(t, err)
	in, err := New(r, nil).Crawl(mods)
	require.NoError(t, err)
	return in
}

func typeKeys(in *meta.Inspection) []string {
	var keys []string
	for _, t := range in.Types() {
		keys = append(keys, t.ID.Key())
	}
	return keys
}

func TestCrawlTerminatesOnCycles(t *testing.T) {
	a := meta.TypeID{Namespace: "n", Name: "A"}
	b := meta.TypeID{Namespace: "n", Name: "B"}
	mod := meta.ModuleDescriptor{
		Assembly: "App",
		Types: []meta.CustomTypeDescriptor{
			{ID: a, Members: []meta.Member{{Name: "B", Type: meta.Custom(b)}}},
			{ID: b, Members: []meta.Member{{Name: "A", Type: meta.Nullable(meta.Custom(a))}}},
		},
		Methods: []meta.MethodDescriptor{
			method(meta.Invokable, "n", "GetA", meta.Custom(a)),
			method(meta.Invokable, "n", "GetB", meta.Custom(b), meta.ArgumentDescriptor{Name: "a", Type: meta.Custom(a)}),
		},
	}

	in := crawl(t, nil, mod)
	assert.Equal(t, []string{"n.A", "n.B"}, typeKeys(in))
	assert.Len(t, in.Methods(), 2)
}

func TestCrawlSkipsUntaggedMethods(t *testing.T) {
	mod := meta.ModuleDescriptor{
		Assembly: "App",
		Methods: []meta.MethodDescriptor{
			method(meta.KindNone, "Foo", "Helper", meta.Void()),
			method(meta.Event, "Foo", "OnBar", meta.Void(), meta.ArgumentDescriptor{Name: "a", Type: str()}),
		},
	}
	in := crawl(t, nil, mod)
	require.Len(t, in.Methods(), 1)
	m := in.Methods()[0]
	assert.Equal(t, "onBar", m.TargetName)
	assert.Equal(t, "Foo", m.TargetSpace)
	assert.Equal(t, "App", m.Module.Assembly)
}

func TestCrawlDiscoversThroughEveryEdge(t *testing.T) {
	id := func(name string) meta.TypeID { return meta.TypeID{Namespace: "n", Name: name} }
	gen := meta.TypeID{Namespace: "n", Name: "Box", Arity: 1}
	mod := meta.ModuleDescriptor{
		Assembly: "App",
		Types: []meta.CustomTypeDescriptor{
			{ID: id("Root"), Extends: []*meta.TypeRef{meta.Custom(id("Base"))}, Members: []meta.Member{
				{Name: "Items", Type: meta.ListOf(meta.ContainerIReadOnlyList, meta.Custom(id("Item")))},
				{Name: "Lookup", Type: meta.MapOf(meta.ContainerDictionary, meta.Custom(id("Key")), meta.Custom(id("Value")))},
				{Name: "Boxed", Type: meta.GenericOf(gen, meta.Nullable(meta.Custom(id("Inner"))))},
				{Name: "Shared", Type: meta.Custom(id("Static")), Static: true},
				{Name: "Derived", Type: meta.Custom(id("Computed")), Computed: true},
			}},
			{ID: id("Base")},
			{ID: id("Item")},
			{ID: id("Key")},
			{ID: id("Value")},
			{ID: gen, TypeParams: []string{"T"}, Members: []meta.Member{{Name: "Value", Type: meta.Param("T")}}},
			{ID: id("Inner")},
			{ID: id("Static")},
			{ID: id("Computed")},
			{ID: id("Unreachable")},
		},
		Methods: []meta.MethodDescriptor{
			method(meta.Function, "n", "Fetch", meta.Async(meta.Custom(id("Root")))),
		},
	}

	in := crawl(t, nil, mod)
	assert.Equal(t, []string{"n.Root", "n.Base", "n.Item", "n.Key", "n.Value", "n.Box`1", "n.Inner"}, typeKeys(in))

	root, ok := in.Type(id("Root"))
	require.True(t, ok)
	assert.Len(t, root.Members, 3, "static and computed members are dropped")
}

func TestCrawlDeduplicatesAcrossMethods(t *testing.T) {
	info := meta.TypeID{Name: "Info"}
	mod := meta.ModuleDescriptor{
		Assembly: "App",
		Types:    []meta.CustomTypeDescriptor{{ID: info}},
		Methods: []meta.MethodDescriptor{
			method(meta.Invokable, "", "A", meta.Custom(info)),
			method(meta.Function, "", "B", meta.Void(), meta.ArgumentDescriptor{Name: "i", Type: meta.Custom(info)}),
			method(meta.Event, "", "C", meta.Void(), meta.ArgumentDescriptor{Name: "i", Type: meta.ArrayOf(meta.Custom(info))}),
		},
	}
	in := crawl(t, nil, mod)
	assert.Equal(t, []string{"Info"}, typeKeys(in))
	assert.Equal(t, []string{meta.GlobalSpace}, in.Spaces())
	assert.Equal(t, meta.GlobalSpace, in.TargetSpaceOf(info))
}

func TestCrawlAppliesNamespaceRulesToMethodsAndTypes(t *testing.T) {
	nya := meta.TypeID{Namespace: "Foo.Bar.Nya", Name: "Nya"}
	mod := meta.ModuleDescriptor{
		Assembly: "App",
		Types:    []meta.CustomTypeDescriptor{{ID: nya}},
		Methods: []meta.MethodDescriptor{
			method(meta.Function, "Foo.Bar.Fun", "OnFun", meta.Void(), meta.ArgumentDescriptor{Name: "nya", Type: meta.Custom(nya)}),
		},
	}
	in := crawl(t, []meta.NamespaceRule{{Pattern: `Foo\.Bar\.(\S+)`, Replacement: "$1"}}, mod)
	assert.Equal(t, []string{"Fun", "Nya"}, in.Spaces())
	assert.Equal(t, "Nya", in.TargetSpaceOf(nya))
	assert.Equal(t, "Foo.Bar.Fun", in.Methods()[0].Space, "source namespace is preserved")
}

func TestCrawlRejectsDuplicateTargetNames(t *testing.T) {
	first := meta.ModuleDescriptor{Assembly: "A", Methods: []meta.MethodDescriptor{method(meta.Invokable, "Foo", "Bar", meta.Void())}}
	second := meta.ModuleDescriptor{Assembly: "B", Methods: []meta.MethodDescriptor{method(meta.Invokable, "Foo", "bar", meta.Void())}}

	_, err := New(nil, nil).Crawl([]meta.ModuleDescriptor{first, second})
	assert.ErrorIs(t, err, ErrDuplicateMethod)
}

func TestCrawlRejectsSameNameAcrossKinds(t *testing.T) {
	tests := []struct {
		name  string
		kinds [2]meta.MethodKind
	}{
		{"invokable and event", [2]meta.MethodKind{meta.Invokable, meta.Event}},
		{"invokable and function", [2]meta.MethodKind{meta.Invokable, meta.Function}},
		{"function and event", [2]meta.MethodKind{meta.Function, meta.Event}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := meta.ModuleDescriptor{Assembly: "A", Methods: []meta.MethodDescriptor{
				method(tt.kinds[0], "Foo", "Bar", meta.Void()),
				method(tt.kinds[1], "Foo", "Bar", meta.Void()),
			}}
			_, err := New(nil, nil).Crawl([]meta.ModuleDescriptor{mod})
			assert.ErrorIs(t, err, ErrDuplicateMethod)
		})
	}
}

func TestCrawlRejectsDerivedKeyCollisions(t *testing.T) {
	tests := []struct {
		name string
		a, b meta.MethodDescriptor
	}{
		{"event wire", method(meta.Event, "Foo", "X", meta.Void()), method(meta.Invokable, "Foo", "XSerialized", meta.Void())},
		{"function wire", method(meta.Function, "Foo", "X", meta.Void()), method(meta.Event, "Foo", "XSerialized", meta.Void())},
		{"function slot", method(meta.Function, "Foo", "X", meta.Void()), method(meta.Invokable, "Foo", "XHandler", meta.Void())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := meta.ModuleDescriptor{Assembly: "A", Methods: []meta.MethodDescriptor{tt.a, tt.b}}
			_, err := New(nil, nil).Crawl([]meta.ModuleDescriptor{mod})
			assert.ErrorIs(t, err, ErrDuplicateMethod)
		})
	}
}

func TestCrawlAllowsSameNameInDifferentSpaces(t *testing.T) {
	mod := meta.ModuleDescriptor{Assembly: "A", Methods: []meta.MethodDescriptor{
		method(meta.Invokable, "Foo", "Bar", meta.Void()),
		method(meta.Event, "Baz", "Bar", meta.Void()),
	}}
	in := crawl(t, nil, mod)
	assert.Len(t, in.Methods(), 2)
}

func TestCrawlDefaultsMissingReturnToVoid(t *testing.T) {
	mod := meta.ModuleDescriptor{Assembly: "A", Methods: []meta.MethodDescriptor{{Kind: meta.Invokable, Name: "Run"}}}
	in := crawl(t, nil, mod)
	assert.True(t, in.Methods()[0].Return.Void())
}
