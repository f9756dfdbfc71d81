// Package typescript emits the consuming-side artifacts: type declarations
// and the runtime bindings that adapt calls across the interop boundary.
package typescript

import (
	"strings"

	"github.com/Alia5/interopgen/internal/codegen/meta"
)

// Position is where a type reference appears; it decides how a top-level
// nullable is spelled.
type Position int

const (
	// PosArgument spells a top-level nullable as "| undefined" (argument may be absent).
	PosArgument Position = iota
	// PosReturn spells a top-level nullable as "| null" (explicit null result).
	PosReturn
	// PosNested is anything below the top level; nullables become "| null".
	PosNested
)

// SpaceLookup resolves the target namespace of a custom type. ok is false
// when the type was never crawled.
type SpaceLookup interface {
	LookupSpace(id meta.TypeID) (space string, ok bool)
}

// Translator maps type references to TypeScript type text.
type Translator struct {
	spaces SpaceLookup
}

func NewTranslator(spaces SpaceLookup) *Translator {
	return &Translator{spaces: spaces}
}

// Translate returns the TypeScript text for ref as seen from the context
// namespace, and whether values of ref cross the boundary serialized.
func (tr *Translator) Translate(ref *meta.TypeRef, pos Position, context string) (string, bool) {
	return tr.text(ref, pos, context), ref.RequiresSerialization()
}

func (tr *Translator) text(ref *meta.TypeRef, pos Position, context string) string {
	if ref == nil {
		return "void"
	}
	switch ref.Kind {
	case meta.KindPrimitive:
		return bucketText(ref.Bucket)
	case meta.KindParam:
		return ref.Name
	case meta.KindNullable:
		inner := tr.text(ref.Elem, PosNested, context)
		if pos == PosArgument {
			return inner + " | undefined"
		}
		return inner + " | null"
	case meta.KindArray:
		return "Array<" + tr.text(ref.Elem, PosNested, context) + ">"
	case meta.KindMap:
		return "Map<" + tr.text(ref.Key, PosNested, context) + ", " + tr.text(ref.Elem, PosNested, context) + ">"
	case meta.KindAsync:
		return "Promise<" + tr.text(ref.Elem, PosNested, context) + ">"
	case meta.KindGeneric:
		if !tr.declared(ref.ID) {
			return "any"
		}
		args := make([]string, len(ref.Args))
		for i, a := range ref.Args {
			args[i] = tr.text(a, PosNested, context)
		}
		return tr.Qualify(ref.ID, context) + "<" + strings.Join(args, ", ") + ">"
	case meta.KindCustom:
		if !tr.declared(ref.ID) {
			return "any"
		}
		return tr.Qualify(ref.ID, context)
	default:
		return "any"
	}
}

// declared reports whether a custom type has a declaration to point at.
// Without a lookup every type is assumed declared in the global namespace.
func (tr *Translator) declared(id meta.TypeID) bool {
	if tr.spaces == nil {
		return true
	}
	_, ok := tr.spaces.LookupSpace(id)
	return ok
}

// Qualify names a custom type, omitting the namespace when it matches context.
func (tr *Translator) Qualify(id meta.TypeID, context string) string {
	space := meta.GlobalSpace
	if tr.spaces != nil {
		if s, ok := tr.spaces.LookupSpace(id); ok {
			space = s
		}
	}
	if space == context {
		return id.Name
	}
	return space + "." + id.Name
}

func bucketText(b meta.Bucket) string {
	switch b {
	case meta.BucketVoid:
		return "void"
	case meta.BucketNumeric:
		return "number"
	case meta.BucketBigInt:
		return "bigint"
	case meta.BucketBoolean:
		return "boolean"
	case meta.BucketString:
		return "string"
	case meta.BucketDate:
		return "Date"
	case meta.BucketInt8Array:
		return "Int8Array"
	case meta.BucketUint8Array:
		return "Uint8Array"
	case meta.BucketInt16Array:
		return "Int16Array"
	case meta.BucketUint16Array:
		return "Uint16Array"
	case meta.BucketInt32Array:
		return "Int32Array"
	case meta.BucketUint32Array:
		return "Uint32Array"
	case meta.BucketBigInt64Array:
		return "BigInt64Array"
	case meta.BucketBigUint64Array:
		return "BigUint64Array"
	default:
		return "any"
	}
}
