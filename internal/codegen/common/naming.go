package common

import (
	"unicode"
	"unicode/utf8"
)

// ToCamelCase lower-cases the first rune: "GetFoo" -> "getFoo", "Uint8" -> "uint8".
func ToCamelCase(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}

// reserved lists identifiers that cannot name a parameter in generated scripts.
var reserved = map[string]string{
	"function": "fn",
}

var keywords = map[string]bool{
	"arguments": true, "await": true, "break": true, "case": true, "catch": true,
	"class": true, "const": true, "continue": true, "debugger": true, "default": true,
	"delete": true, "do": true, "else": true, "enum": true, "eval": true,
	"export": true, "extends": true, "false": true, "finally": true, "for": true,
	"function": true, "if": true, "implements": true, "import": true, "in": true,
	"instanceof": true, "interface": true, "let": true, "new": true, "null": true,
	"package": true, "private": true, "protected": true, "public": true, "return": true,
	"static": true, "super": true, "switch": true, "this": true, "throw": true,
	"true": true, "try": true, "typeof": true, "var": true, "void": true,
	"while": true, "with": true, "yield": true,
}

// SafeIdentifier substitutes reserved identifiers; other names pass through.
func SafeIdentifier(name string) string {
	if alt, ok := reserved[name]; ok {
		return alt
	}
	if keywords[name] {
		return "_" + name
	}
	return name
}
