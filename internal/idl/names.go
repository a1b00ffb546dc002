package idl

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SnakeCase lowers every upper-case letter and prefixes it with an
// underscore, except at the start of the string. Already snake-cased input
// is returned unchanged.
func SnakeCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CamelCase drops leading non-letters, sets the case of the first letter,
// and removes each underscore while upper-casing the letter after it. Other
// characters are copied unchanged, so canonical names are fixed points.
func CamelCase(s string, firstUpper bool) string {
	runes := []rune(s)
	start := 0
	for start < len(runes) && !unicode.IsLetter(runes[start]) {
		start++
	}
	if start == len(runes) {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	if firstUpper {
		b.WriteRune(unicode.ToUpper(runes[start]))
	} else {
		b.WriteRune(unicode.ToLower(runes[start]))
	}
	upperNext := false
	for _, r := range runes[start+1:] {
		if r == '_' {
			upperNext = true
			continue
		}
		if upperNext {
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CleanName canonicalizes a document name. Namespaced names (a::b) are
// treated as a_b before re-casing.
func CleanName(s string, firstUpper bool) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "::", "_")
	return CamelCase(s, firstUpper)
}

// TypeName is the canonical name of a type, account, event or variant.
func TypeName(s string) string {
	return CleanName(s, true)
}

// MemberName is the canonical name of a field, argument or account meta.
func MemberName(s string) string {
	return CleanName(s, false)
}

// ConstantName canonicalizes constant names. SCREAMING_SNAKE names are
// lowered first so SEED_PREFIX becomes SeedPrefix.
func ConstantName(s string) string {
	if s == strings.ToUpper(s) {
		s = strings.ToLower(s)
	}
	return TypeName(s)
}

// reserved holds Go keywords, predeclared identifiers and the local names
// used inside generated function bodies.
var reserved = map[string]struct{}{
	"break": {}, "case": {}, "chan": {}, "const": {}, "continue": {},
	"default": {}, "defer": {}, "else": {}, "fallthrough": {}, "for": {},
	"func": {}, "go": {}, "goto": {}, "if": {}, "import": {},
	"interface": {}, "map": {}, "package": {}, "range": {}, "return": {},
	"select": {}, "struct": {}, "switch": {}, "type": {}, "var": {},
	"append": {}, "cap": {}, "copy": {}, "len": {}, "make": {}, "new": {},
	"nil": {}, "true": {}, "false": {}, "string": {}, "error": {}, "any": {},
	"data": {}, "i": {}, "r": {}, "v": {}, "keys": {}, "off": {},
	"n": {}, "program": {}, "invokedProgram": {}, "seeds": {}, "ix": {}, "solana": {}, "borsh": {},
	"bin": {}, "big": {}, "rpc": {}, "fmt": {}, "errors": {},
}

// Identifier returns name, prefixed with an underscore when it would collide
// with a keyword or a generated local.
func Identifier(name string) string {
	if _, ok := reserved[name]; ok {
		return "_" + name
	}
	return name
}

// Exported returns name with its first letter upper-cased.
func Exported(name string) string {
	if name == "" {
		return name
	}
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
