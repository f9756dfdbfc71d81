package typescript

import (
	"strconv"
	"strings"
	"text/template"

	"github.com/Alia5/interopgen/internal/codegen/common"
	"github.com/Alia5/interopgen/internal/codegen/meta"
	"github.com/Alia5/interopgen/internal/codegen/namespace"
)

const declarationsTemplate = `{{writeFileHeaderTS}}import type { Event } from "./event";
{{range .}}
{{.}}{{end}}`

var declarationsTmpl = template.Must(template.New("declarations").Funcs(template.FuncMap{
	"writeFileHeaderTS": writeFileHeaderTS,
}).Parse(declarationsTemplate))

// GenerateDeclarations emits the type-declaration artifact: one namespace
// block per target namespace in first-seen order, holding its enums, then
// its interfaces, then its method declarations.
func GenerateDeclarations(in *meta.Inspection) (string, error) {
	tr := NewTranslator(in)
	var blocks []string
	for _, space := range in.Spaces() {
		blocks = append(blocks, declareSpace(tr, space, in.TypesIn(space), in.MethodsIn(space)))
	}
	var out strings.Builder
	if err := declarationsTmpl.Execute(&out, blocks); err != nil {
		return "", err
	}
	return out.String(), nil
}

func declareSpace(tr *Translator, space string, types []meta.CustomTypeDescriptor, methods []meta.MethodDescriptor) string {
	w := &block{}
	segments := namespace.Segments(space)
	for _, seg := range segments {
		w.open("export namespace " + seg + " {")
	}
	for _, t := range types {
		if t.Shape == meta.ShapeEnum {
			declareEnum(w, t)
		}
	}
	for _, t := range types {
		if t.Shape == meta.ShapeObject {
			declareInterface(w, tr, t)
		}
	}
	for _, m := range methods {
		w.line(declareMethod(tr, m))
	}
	for range segments {
		w.close("}")
	}
	return w.String()
}

func declareEnum(w *block, t meta.CustomTypeDescriptor) {
	w.open("export enum " + t.ID.Name + " {")
	var implicit int64
	for i, v := range t.Values {
		entry := v.Name
		if v.Value != implicit {
			entry += " = " + strconv.FormatInt(v.Value, 10)
		}
		implicit = v.Value + 1
		if i < len(t.Values)-1 {
			entry += ","
		}
		w.line(entry)
	}
	w.close("}")
}

func declareInterface(w *block, tr *Translator, t meta.CustomTypeDescriptor) {
	header := "export interface " + t.ID.Name
	if len(t.TypeParams) > 0 {
		header += "<" + strings.Join(t.TypeParams, ", ") + ">"
	}
	var bases []string
	for _, base := range t.Extends {
		if base == nil || !tr.declared(base.ID) {
			continue
		}
		text, _ := tr.Translate(base, PosNested, t.TargetSpace)
		bases = append(bases, text)
	}
	if len(bases) > 0 {
		header += " extends " + strings.Join(bases, ", ")
	}
	w.open(header + " {")
	for _, m := range t.Members {
		w.line(declareMember(tr, m, t.TargetSpace))
	}
	w.close("}")
}

// declareMember marks nullable members optional and spells only the inner
// type, so "x?: T" stays distinct from a member typed "T | undefined".
func declareMember(tr *Translator, m meta.Member, space string) string {
	name := common.ToCamelCase(m.Name)
	if m.Nullable() {
		text, _ := tr.Translate(m.Type.Elem, PosNested, space)
		return name + "?: " + text + ";"
	}
	text, _ := tr.Translate(m.Type, PosNested, space)
	return name + ": " + text + ";"
}

func declareMethod(tr *Translator, m meta.MethodDescriptor) string {
	args := declareArgs(tr, m)
	ret, _ := tr.Translate(m.Return.Type, PosReturn, m.TargetSpace)
	switch m.Kind {
	case meta.Function:
		return "export let " + m.TargetName + ": (" + args + ") => " + ret + ";"
	case meta.Event:
		return "export const " + m.TargetName + ": Event<[" + args + "]>;"
	default:
		return "export function " + m.TargetName + "(" + args + "): " + ret + ";"
	}
}

func declareArgs(tr *Translator, m meta.MethodDescriptor) string {
	args := make([]string, len(m.Arguments))
	for i, a := range m.Arguments {
		text, _ := tr.Translate(a.Type, PosArgument, m.TargetSpace)
		args[i] = a.Name + ": " + text
	}
	return strings.Join(args, ", ")
}
