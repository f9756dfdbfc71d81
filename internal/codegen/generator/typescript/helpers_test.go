package typescript

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Alia5/interopgen/internal/codegen/crawler"
	"github.com/Alia5/interopgen/internal/codegen/meta"
	"github.com/Alia5/interopgen/internal/codegen/namespace"
)

func str() *meta.TypeRef  { return meta.Primitive(meta.BucketString, "System.String") }
func num() *meta.TypeRef  { return meta.Primitive(meta.BucketNumeric, "System.Int32") }
func flag() *meta.TypeRef { return meta.Primitive(meta.BucketBoolean, "System.Boolean") }

func arg(name string, t *meta.TypeRef) meta.ArgumentDescriptor {
	return meta.ArgumentDescriptor{Name: name, Type: t}
}

func method(kind meta.MethodKind, space, owner, name string, ret *meta.TypeRef, args ...meta.ArgumentDescriptor) meta.MethodDescriptor {
	return meta.MethodDescriptor{
		Kind:      kind,
		Module:    meta.ModuleIdentity{Owner: owner},
		Space:     space,
		Name:      name,
		Arguments: args,
		Return:    meta.ValueDescriptor{Type: ret},
	}
}

func inspect(t *testing.T, rules []meta.NamespaceRule, types []meta.CustomTypeDescriptor, methods ...meta.MethodDescriptor) *meta.Inspection {
	t.Helper()
	r, err := namespace.New(rules)
	require.NoError(t, err)
	in, err := crawler.New(r, nil).Crawl([]meta.ModuleDescriptor{{Assembly: "Test", Types: types, Methods: methods}})
	require.NoError(t, err)
	return in
}
