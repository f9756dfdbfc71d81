package typescript

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"text/template"

	"github.com/Alia5/interopgen/internal/codegen/common"
	"github.com/Alia5/interopgen/internal/codegen/meta"
	"github.com/Alia5/interopgen/internal/codegen/namespace"
)

const bindingsTemplate = `{{writeFileHeaderTS}}import { exports } from "./exports";
import { Event } from "./event";
function getExports () { if (exports == null) throw Error("Boot the runtime before invoking C# APIs."); return exports; }
function serialize(obj) { return JSON.stringify(obj); }
function deserialize(json) { const result = JSON.parse(json); if (result === null) return undefined; return result; }
export { Event, serialize, deserialize };
{{range .}}
export const {{.}};{{end}}
`

var bindingsTmpl = template.Must(template.New("bindings").Funcs(template.FuncMap{
	"writeFileHeaderTS": writeFileHeaderTS,
}).Parse(bindingsTemplate))

// object is one level of the runtime namespace tree.
type object struct {
	entries  []string
	enums    []string
	children map[string]*object
}

func newObject() *object { return &object{children: make(map[string]*object)} }

func (o *object) child(segments []string) *object {
	if len(segments) == 0 {
		return o
	}
	next, ok := o.children[segments[0]]
	if !ok {
		next = newObject()
		o.children[segments[0]] = next
	}
	return next.child(segments[1:])
}

// GenerateBindings emits the runtime binding artifact. The output is empty
// when no interop methods were found.
func GenerateBindings(in *meta.Inspection) (string, error) {
	if in.Empty() {
		return "", nil
	}
	root := newObject()
	for _, m := range in.Methods() {
		obj := root.child(namespace.Segments(m.TargetSpace))
		switch m.Kind {
		case meta.Invokable:
			obj.entries = append(obj.entries, bindInvokable(m))
		case meta.Function:
			obj.entries = append(obj.entries, bindFunction(m)...)
		case meta.Event:
			obj.entries = append(obj.entries, bindEvent(m)...)
		default:
			return "", fmt.Errorf("unsupported method kind %s for %s", m.Kind, m.TargetName)
		}
	}
	for _, t := range in.Types() {
		if t.Shape == meta.ShapeEnum {
			obj := root.child(namespace.Segments(t.TargetSpace))
			obj.enums = append(obj.enums, bindEnum(t))
		}
	}

	var tops []string
	for _, name := range sortedKeys(root.children) {
		w := &block{}
		w.open(name + " = {")
		writeObject(w, root.children[name])
		w.close("}")
		tops = append(tops, strings.TrimSuffix(w.String(), "\n"))
	}
	var out strings.Builder
	if err := bindingsTmpl.Execute(&out, tops); err != nil {
		return "", err
	}
	return out.String(), nil
}

func writeObject(w *block, o *object) {
	items := len(o.entries) + len(o.enums) + len(o.children)
	n := 0
	sep := func() string {
		n++
		if n < items {
			return ","
		}
		return ""
	}
	for _, e := range o.entries {
		w.line(e + sep())
	}
	for _, e := range o.enums {
		w.line(e + sep())
	}
	for _, name := range sortedKeys(o.children) {
		w.open(name + ": {")
		writeObject(w, o.children[name])
		w.close("}" + sep())
	}
}

func sortedKeys(m map[string]*object) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// accessor names the producing-side export object of an invokable method.
// It is built from the source namespace, so override rules never change it.
func accessor(m meta.MethodDescriptor) string {
	if m.Space == "" {
		return m.Module.Owner
	}
	return namespace.AccessorPrefix(m.Space) + "_" + m.Module.Owner
}

func params(m meta.MethodDescriptor) []string {
	names := make([]string, len(m.Arguments))
	for i, a := range m.Arguments {
		names[i] = common.SafeIdentifier(a.Name)
	}
	return names
}

// wrapArgs applies fn to every parameter whose argument crosses serialized.
func wrapArgs(m meta.MethodDescriptor, fn string) string {
	names := params(m)
	for i, a := range m.Arguments {
		if a.Type.RequiresSerialization() {
			names[i] = fn + "(" + names[i] + ")"
		}
	}
	return strings.Join(names, ", ")
}

func bindInvokable(m meta.MethodDescriptor) string {
	sig := "(" + strings.Join(params(m), ", ") + ")"
	call := "getExports()." + accessor(m) + "." + m.Name + "(" + wrapArgs(m, "serialize") + ")"
	if !m.Return.Type.RequiresSerialization() {
		return m.TargetName + ": " + sig + " => " + call
	}
	if m.Return.Async() {
		return m.TargetName + ": async " + sig + " => deserialize(await " + call + ")"
	}
	return m.TargetName + ": " + sig + " => deserialize(" + call + ")"
}

// bindFunction renders a function as a pair of named slots on its namespace
// object with accessors over them. The slots are addressed by the qualified
// path rather than the receiver, so a detached accessor still sees them.
func bindFunction(m meta.MethodDescriptor) []string {
	name := m.TargetName
	qualified := m.TargetSpace + "." + name
	handler := qualified + "Handler"
	serialized := qualified + "SerializedHandler"
	sig := "(" + strings.Join(params(m), ", ") + ")"
	call := handler + "(" + wrapArgs(m, "deserialize") + ")"
	wire := sig + " => " + call
	if m.Return.Type.RequiresSerialization() {
		if m.Return.Async() {
			wire = "async " + sig + " => serialize(await " + call + ")"
		} else {
			wire = sig + " => serialize(" + call + ")"
		}
	}
	return []string{
		name + "Handler: undefined",
		name + "SerializedHandler: undefined",
		"get " + name + "() { return " + handler + "; }",
		"set " + name + "(handler) { " + handler + " = handler; " + serialized + " = " + wire + "; }",
		"get " + name + "Serialized() { if (typeof " + handler + " !== \"function\") throw Error(\"Failed to invoke '" +
			qualified + "' from C#. Make sure to assign function in JavaScript.\"); return " + serialized + "; }",
	}
}

func bindEvent(m meta.MethodDescriptor) []string {
	name := m.TargetName
	sig := "(" + strings.Join(params(m), ", ") + ")"
	broadcast := m.TargetSpace + "." + name + ".broadcast(" + wrapArgs(m, "deserialize") + ")"
	return []string{
		name + ": new Event()",
		name + "Serialized: " + sig + " => " + broadcast,
	}
}

// bindEnum renders the bidirectional lookup. With duplicate values the last
// name wins the number-to-name direction.
func bindEnum(t meta.CustomTypeDescriptor) string {
	byValue := make(map[int64]string, len(t.Values))
	var order []int64
	for _, v := range t.Values {
		if _, ok := byValue[v.Value]; !ok {
			order = append(order, v.Value)
		}
		byValue[v.Value] = v.Name
	}
	parts := make([]string, 0, len(order)+len(t.Values))
	for _, v := range order {
		parts = append(parts, strconv.Quote(strconv.FormatInt(v, 10))+": "+strconv.Quote(byValue[v]))
	}
	for _, v := range t.Values {
		parts = append(parts, strconv.Quote(v.Name)+": "+strconv.FormatInt(v.Value, 10))
	}
	return t.ID.Name + ": { " + strings.Join(parts, ", ") + " }"
}
