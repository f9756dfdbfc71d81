package scanner

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/Alia5/interopgen/internal/codegen/meta"
)

// ErrSyntax is returned for type expressions that cannot be tokenized or parsed.
var ErrSyntax = errors.New("type expression syntax error")

// Scope is the name-resolution context of a type expression.
type Scope struct {
	Namespace string          // namespace of the declaring type or method
	Params    []string        // generic parameters in scope
	Known     map[string]bool // meta.TypeID keys of every declared custom type
}

type primitiveInfo struct {
	bucket meta.Bucket
	name   string
	array  meta.Bucket // typed-array bucket for T[], BucketAny when none
}

// primitives maps C# keywords and BCL names to buckets. Both 64-bit widths
// are bigint, signed or not: a number loses precision past 2^53.
var primitives = map[string]primitiveInfo{
	"bool":           {meta.BucketBoolean, "System.Boolean", meta.BucketAny},
	"Boolean":        {meta.BucketBoolean, "System.Boolean", meta.BucketAny},
	"byte":           {meta.BucketNumeric, "System.Byte", meta.BucketUint8Array},
	"Byte":           {meta.BucketNumeric, "System.Byte", meta.BucketUint8Array},
	"sbyte":          {meta.BucketNumeric, "System.SByte", meta.BucketInt8Array},
	"SByte":          {meta.BucketNumeric, "System.SByte", meta.BucketInt8Array},
	"short":          {meta.BucketNumeric, "System.Int16", meta.BucketInt16Array},
	"Int16":          {meta.BucketNumeric, "System.Int16", meta.BucketInt16Array},
	"ushort":         {meta.BucketNumeric, "System.UInt16", meta.BucketUint16Array},
	"UInt16":         {meta.BucketNumeric, "System.UInt16", meta.BucketUint16Array},
	"int":            {meta.BucketNumeric, "System.Int32", meta.BucketInt32Array},
	"Int32":          {meta.BucketNumeric, "System.Int32", meta.BucketInt32Array},
	"uint":           {meta.BucketNumeric, "System.UInt32", meta.BucketUint32Array},
	"UInt32":         {meta.BucketNumeric, "System.UInt32", meta.BucketUint32Array},
	"long":           {meta.BucketBigInt, "System.Int64", meta.BucketBigInt64Array},
	"Int64":          {meta.BucketBigInt, "System.Int64", meta.BucketBigInt64Array},
	"ulong":          {meta.BucketBigInt, "System.UInt64", meta.BucketBigUint64Array},
	"UInt64":         {meta.BucketBigInt, "System.UInt64", meta.BucketBigUint64Array},
	"float":          {meta.BucketNumeric, "System.Single", meta.BucketAny},
	"Single":         {meta.BucketNumeric, "System.Single", meta.BucketAny},
	"double":         {meta.BucketNumeric, "System.Double", meta.BucketAny},
	"Double":         {meta.BucketNumeric, "System.Double", meta.BucketAny},
	"decimal":        {meta.BucketNumeric, "System.Decimal", meta.BucketAny},
	"Decimal":        {meta.BucketNumeric, "System.Decimal", meta.BucketAny},
	"char":           {meta.BucketString, "System.Char", meta.BucketAny},
	"Char":           {meta.BucketString, "System.Char", meta.BucketAny},
	"string":         {meta.BucketString, "System.String", meta.BucketAny},
	"String":         {meta.BucketString, "System.String", meta.BucketAny},
	"DateTime":       {meta.BucketDate, "System.DateTime", meta.BucketAny},
	"DateTimeOffset": {meta.BucketDate, "System.DateTimeOffset", meta.BucketAny},
	"void":           {meta.BucketVoid, "System.Void", meta.BucketAny},
	"Void":           {meta.BucketVoid, "System.Void", meta.BucketAny},
}

var lists = map[string]meta.Container{
	"List":                meta.ContainerList,
	"IList":               meta.ContainerIList,
	"IReadOnlyList":       meta.ContainerIReadOnlyList,
	"ICollection":         meta.ContainerICollection,
	"IReadOnlyCollection": meta.ContainerIReadOnlyCollection,
}

var maps = map[string]meta.Container{
	"Dictionary":          meta.ContainerDictionary,
	"IDictionary":         meta.ContainerIDictionary,
	"IReadOnlyDictionary": meta.ContainerIReadOnlyDictionary,
}

var systemPrefixes = []string{
	"global::",
	"System.Collections.Generic.",
	"System.Threading.Tasks.",
	"System.",
}

// ParseTypeExpr parses a producing-side type expression such as
// "IReadOnlyDictionary<string, n.Item?[]>" into a TypeRef.
func ParseTypeExpr(expr string, scope Scope) (*meta.TypeRef, error) {
	toks, err := tokenize(expr)
	if err != nil {
		return nil, err
	}
	p := &exprParser{toks: toks, scope: scope, src: expr}
	ref, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, fmt.Errorf("%w: unexpected %q in %q", ErrSyntax, p.peek(), expr)
	}
	return ref, nil
}

func tokenize(expr string) ([]string, error) {
	var toks []string
	rs := []rune(expr)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '<' || r == '>' || r == ',' || r == '?':
			toks = append(toks, string(r))
			i++
		case r == '[':
			if i+1 >= len(rs) || rs[i+1] != ']' {
				return nil, fmt.Errorf("%w: unclosed '[' in %q", ErrSyntax, expr)
			}
			toks = append(toks, "[]")
			i += 2
		case isNameRune(r):
			start := i
			for i < len(rs) && (isNameRune(rs[i]) || rs[i] == ':') {
				i++
			}
			toks = append(toks, string(rs[start:i]))
		default:
			return nil, fmt.Errorf("%w: unexpected %q in %q", ErrSyntax, r, expr)
		}
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("%w: empty type expression", ErrSyntax)
	}
	return toks, nil
}

func isNameRune(r rune) bool {
	return r == '_' || r == '.' || r == '`' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

type exprParser struct {
	toks  []string
	pos   int
	scope Scope
	src   string
}

func (p *exprParser) done() bool { return p.pos >= len(p.toks) }

func (p *exprParser) peek() string {
	if p.done() {
		return ""
	}
	return p.toks[p.pos]
}

func (p *exprParser) next() string {
	t := p.peek()
	p.pos++
	return t
}

func (p *exprParser) parseType() (*meta.TypeRef, error) {
	name := p.next()
	if name == "" || strings.ContainsAny(name[:1], "<>,?[") {
		return nil, fmt.Errorf("%w: expected type name in %q", ErrSyntax, p.src)
	}
	var args []*meta.TypeRef
	if p.peek() == "<" {
		p.next()
		for {
			arg, err := p.parseType()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if sep := p.next(); sep == ">" {
				break
			} else if sep != "," {
				return nil, fmt.Errorf("%w: expected ',' or '>' in %q", ErrSyntax, p.src)
			}
		}
	}
	ref := p.resolve(name, args)
	for {
		switch p.peek() {
		case "[]":
			p.next()
			ref = arrayOf(ref)
		case "?":
			p.next()
			ref = meta.Nullable(ref)
		default:
			return ref, nil
		}
	}
}

func arrayOf(elem *meta.TypeRef) *meta.TypeRef {
	if elem.Kind == meta.KindPrimitive {
		for _, info := range primitives {
			if info.name == elem.Name && info.array != meta.BucketAny {
				return meta.Primitive(info.array, elem.Name+"[]")
			}
		}
	}
	return meta.ArrayOf(elem)
}

func (p *exprParser) resolve(name string, args []*meta.TypeRef) *meta.TypeRef {
	if len(args) == 0 {
		for _, tp := range p.scope.Params {
			if tp == name {
				return meta.Param(name)
			}
		}
	}

	if ref, ok := builtin(trimSystem(name), args); ok {
		return ref
	}

	if id, ok := p.lookup(strings.TrimPrefix(name, "global::"), len(args)); ok {
		if len(args) > 0 {
			return meta.GenericOf(id, args...)
		}
		return meta.Custom(id)
	}
	return meta.Unknown(name)
}

func trimSystem(name string) string {
	for _, prefix := range systemPrefixes {
		name = strings.TrimPrefix(name, prefix)
	}
	return name
}

func builtin(name string, args []*meta.TypeRef) (*meta.TypeRef, bool) {
	if info, ok := primitives[name]; ok && len(args) == 0 {
		return meta.Primitive(info.bucket, info.name), true
	}
	switch name {
	case "object", "Object", "dynamic":
		return meta.Unknown(name), len(args) == 0
	case "Task", "ValueTask":
		switch len(args) {
		case 0:
			return meta.Async(nil), true
		case 1:
			return meta.Async(args[0]), true
		}
	case "Nullable":
		if len(args) == 1 {
			return meta.Nullable(args[0]), true
		}
	}
	if c, ok := lists[name]; ok && len(args) == 1 {
		return meta.ListOf(c, args[0]), true
	}
	if c, ok := maps[name]; ok && len(args) == 2 {
		return meta.MapOf(c, args[0], args[1]), true
	}
	return nil, false
}

// lookup resolves name against the enclosing namespaces from innermost
// outward, then as a fully qualified name, then in the global namespace.
func (p *exprParser) lookup(name string, arity int) (meta.TypeID, bool) {
	var candidates []meta.TypeID
	ns := p.scope.Namespace
	for ns != "" {
		candidates = append(candidates, splitID(ns+"."+name, arity))
		if i := strings.LastIndexByte(ns, '.'); i >= 0 {
			ns = ns[:i]
		} else {
			ns = ""
		}
	}
	candidates = append(candidates, splitID(name, arity))
	for _, id := range candidates {
		if p.scope.Known[id.Key()] {
			return id, true
		}
	}
	return meta.TypeID{}, false
}

func splitID(full string, arity int) meta.TypeID {
	if i := strings.LastIndexByte(full, '.'); i >= 0 {
		return meta.TypeID{Namespace: full[:i], Name: full[i+1:], Arity: arity}
	}
	return meta.TypeID{Name: full, Arity: arity}
}
