// Package csharp emits producing-side sources: the serializer registration
// manifest that lets the source-generated JSON context handle every type
// crossing the interop boundary serialized.
package csharp

import (
	"strings"
	"text/template"

	"github.com/Alia5/interopgen/internal/codegen/common"
	"github.com/Alia5/interopgen/internal/codegen/meta"
)

const serializerTemplate = `{{.Header}}
using System.Text.Json.Serialization;

namespace Interop.Generated;

{{range .Registrations}}[JsonSerializable(typeof({{.}}))]
{{end}}internal partial class SerializerContext : JsonSerializerContext
{
    [System.Runtime.CompilerServices.ModuleInitializer]
    internal static void InjectTypeInfoResolver ()
    {
        Serializer.Options.TypeInfoResolverChain.Add(SerializerContext.Default);
    }
}
`

var serializerTmpl = template.Must(template.New("serializer").Parse(serializerTemplate))

// manifest collects registrations in first-seen order, deduplicated by text.
type manifest struct {
	seen  map[string]bool
	texts []string
}

func (m *manifest) add(text string) {
	if m.seen[text] {
		return
	}
	m.seen[text] = true
	m.texts = append(m.texts, text)
}

// Registrations lists the producing-side type texts the serializer context
// must know, in the order they were reached.
func Registrations(in *meta.Inspection) []string {
	m := &manifest{seen: make(map[string]bool)}
	for _, method := range in.Methods() {
		for _, a := range method.Arguments {
			m.collect(a.Type)
		}
		m.collect(method.Return.Type)
	}
	for _, t := range in.Types() {
		if len(t.TypeParams) == 0 {
			m.add(TypeText(meta.Custom(t.ID)))
		}
		for _, base := range t.Extends {
			m.collect(base)
		}
		for _, member := range t.Members {
			m.collect(member.Type)
		}
	}
	return m.texts
}

func (m *manifest) collect(ref *meta.TypeRef) {
	ref.Walk(func(r *meta.TypeRef) bool {
		if r.IsOpen() {
			return true
		}
		switch r.Kind {
		case meta.KindNullable:
			return true
		case meta.KindAsync:
			if r.RequiresSerialization() {
				m.add("(" + TypeText(r.Elem.Unwrap()) + ", byte)")
			}
			return true
		}
		if !r.RequiresSerialization() {
			return true
		}
		m.add(TypeText(r))
		if r.Container.IsInterface() {
			m.proxies(r)
		}
		return true
	})
}

// proxies registers the concrete container behind an interface collection
// and, for the list family, the element array.
func (m *manifest) proxies(r *meta.TypeRef) {
	backing := *r
	backing.Container = r.Container.Backing()
	m.add(TypeText(&backing))
	if r.Kind == meta.KindArray {
		m.add(TypeText(meta.ArrayOf(r.Elem)))
	}
}

// GenerateSerializer renders the registration source. It is empty when no
// type needs registration.
func GenerateSerializer(in *meta.Inspection) (string, error) {
	regs := Registrations(in)
	if len(regs) == 0 {
		return "", nil
	}
	var out strings.Builder
	err := serializerTmpl.Execute(&out, struct {
		Header        string
		Registrations []string
	}{common.FileHeader("//", "C#"), regs})
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// TypeText spells ref the way the producing side names it in a typeof
// expression. Nullable annotations are dropped since typeof rejects them on
// reference types.
func TypeText(ref *meta.TypeRef) string {
	if ref == nil {
		return "global::System.Void"
	}
	switch ref.Kind {
	case meta.KindPrimitive:
		return "global::" + ref.Name
	case meta.KindNullable:
		return TypeText(ref.Elem)
	case meta.KindArray:
		if ref.Container == meta.ContainerArray {
			return TypeText(ref.Elem) + "[]"
		}
		return "global::" + string(ref.Container) + "<" + TypeText(ref.Elem) + ">"
	case meta.KindMap:
		return "global::" + string(ref.Container) + "<" + TypeText(ref.Key) + ", " + TypeText(ref.Elem) + ">"
	case meta.KindGeneric:
		args := make([]string, len(ref.Args))
		for i, a := range ref.Args {
			args[i] = TypeText(a)
		}
		return "global::" + ref.ID.FullName() + "<" + strings.Join(args, ", ") + ">"
	case meta.KindCustom:
		return "global::" + ref.ID.FullName()
	case meta.KindAsync:
		if ref.Elem == nil {
			return "global::System.Threading.Tasks.Task"
		}
		return "global::System.Threading.Tasks.Task<" + TypeText(ref.Elem) + ">"
	case meta.KindParam:
		return ref.Name
	default:
		if ref.Name == "" {
			return "global::System.Object"
		}
		return "global::" + ref.Name
	}
}
