package idl

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// MaxNestingDepth is the deepest array or vector nesting the generator
// supports.
const MaxNestingDepth = 2

// parseType converts a JSON type tag into a Type.
func parseType(raw json.RawMessage, path []string) (Type, error) {
	if isNull(raw) {
		return nil, Malformed(path, "missing type")
	}

	var tag string
	if err := json.Unmarshal(raw, &tag); err == nil {
		kind, ok := ParsePrimitive(tag)
		if !ok {
			return nil, Malformed(path, "unknown type tag %q", tag)
		}
		return &Primitive{Name: kind}, nil
	}

	obj, err := decodeObject(raw, path)
	if err != nil {
		return nil, Malformed(path, "expected type tag string or object, got %s", jsonShape(raw))
	}
	if len(obj.fields) == 0 {
		return nil, Malformed(path, "empty type object")
	}

	switch {
	case obj.has("array"):
		return parseArray(obj)
	case obj.has("vec"):
		return parseVector(obj)
	case obj.has("option"):
		if len(obj.fields) != 1 {
			return nil, Malformed(path, "option type takes no sibling fields")
		}
		elem, err := parseType(obj.raw("option"), obj.at("option"))
		if err != nil {
			return nil, err
		}
		return &Option{Elem: elem}, nil
	case obj.has("coption"):
		return nil, Unsupported(path, "coption types")
	case obj.has("defined"):
		return parseDefined(obj)
	case obj.has("generic"):
		return nil, Unsupported(path, "generic type parameters")
	case obj.has("kind"):
		return parseTypeDef(raw, path)
	}

	return nil, Malformed(path, "unknown type tag object with fields %v", sortedKeys(obj.fields))
}

func parseArray(obj *object) (Type, error) {
	path := obj.at("array")
	if len(obj.fields) != 1 {
		return nil, Malformed(obj.path, "array type takes no sibling fields")
	}
	var pair []json.RawMessage
	if err := json.Unmarshal(obj.raw("array"), &pair); err != nil || len(pair) != 2 {
		return nil, Malformed(path, "array must be [element, count]")
	}
	elem, err := parseType(pair[0], child(path, "0"))
	if err != nil {
		return nil, err
	}
	count, err := parseCount(pair[1], child(path, "1"))
	if err != nil {
		return nil, err
	}
	arr := &Array{Elem: elem, Count: count}
	if arr.Depth() > MaxNestingDepth {
		return nil, Unsupported(path, "array nesting depth %d exceeds %d", arr.Depth(), MaxNestingDepth)
	}
	return arr, nil
}

func parseCount(raw json.RawMessage, path []string) (int, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		if _, ok := asObject(raw); ok {
			return 0, Unsupported(path, "generic array lengths")
		}
		return 0, Malformed(path, "array count must be a number, got %s", jsonShape(raw))
	}
	count, err := strconv.Atoi(n.String())
	if err != nil || count < 0 {
		return 0, Malformed(path, "invalid array count %s", n)
	}
	return count, nil
}

func asObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

func parseVector(obj *object) (Type, error) {
	if len(obj.fields) != 1 {
		return nil, Malformed(obj.path, "vec type takes no sibling fields")
	}
	elem, err := parseType(obj.raw("vec"), obj.at("vec"))
	if err != nil {
		return nil, err
	}
	vec := &Vector{Elem: elem}
	if vec.Depth() > MaxNestingDepth {
		return nil, Unsupported(obj.at("vec"), "vector nesting depth %d exceeds %d", vec.Depth(), MaxNestingDepth)
	}
	return vec, nil
}

// parseDefined accepts both {"defined": "Name"} and
// {"defined": {"name": "Name", "generics": []}}.
func parseDefined(obj *object) (Type, error) {
	path := obj.at("defined")
	var name string
	if err := json.Unmarshal(obj.raw("defined"), &name); err != nil {
		ref, err := decodeObject(obj.raw("defined"), path, "name", "generics")
		if err != nil {
			return nil, err
		}
		if name, err = ref.requiredStr("name"); err != nil {
			return nil, err
		}
		generics, err := ref.list("generics")
		if err != nil {
			return nil, err
		}
		if len(generics) > 0 {
			return nil, Unsupported(path, "generic arguments on %q", name)
		}
	}
	clean := TypeName(name)
	if clean == "" {
		return nil, Malformed(path, "invalid defined type name %q", name)
	}
	return &Defined{Name: clean}, nil
}

// parseTypeDef parses {"kind": "struct"|"enum"|"alias", ...}.
func parseTypeDef(raw json.RawMessage, path []string) (Type, error) {
	obj, err := decodeObject(raw, path, "kind", "fields", "variants", "value")
	if err != nil {
		return nil, err
	}
	kind, err := obj.requiredStr("kind")
	if err != nil {
		return nil, err
	}
	switch kind {
	case "struct":
		fields, err := parseFields(obj, "fields")
		if err != nil {
			return nil, err
		}
		return &Struct{Fields: fields}, nil
	case "enum":
		return parseEnum(obj)
	case "alias", "type":
		return parseType(obj.raw("value"), obj.at("value"))
	default:
		return nil, Malformed(obj.at("kind"), "unknown type kind %q", kind)
	}
}

// parseFields reads named or tuple fields. Duplicate names are suffixed
// with their position.
func parseFields(obj *object, key string) ([]Field, error) {
	items, err := obj.list(key)
	if err != nil {
		return nil, err
	}
	fields := make([]Field, 0, len(items))
	seen := make(map[string]bool, len(items))
	named := -1
	for i, item := range items {
		path := child(obj.path, key, strconv.Itoa(i))
		f, err := parseField(item, path)
		if err != nil {
			return nil, err
		}
		isNamed := f.Name != ""
		if named == -1 {
			named = boolInt(isNamed)
		} else if named != boolInt(isNamed) {
			return nil, Unsupported(path, "mixed named and unnamed fields")
		}
		if isNamed {
			if seen[f.Name] {
				f.Name = fmt.Sprintf("%s%d", f.Name, i)
			}
			seen[f.Name] = true
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// parseField reads {"name", "type", "docs"} or a bare tuple type.
func parseField(raw json.RawMessage, path []string) (Field, error) {
	m, ok := asObject(raw)
	_, hasName := m["name"]
	if !ok || !hasName {
		t, err := parseType(raw, path)
		if err != nil {
			return Field{}, err
		}
		return Field{Type: t}, nil
	}
	obj, err := decodeObject(raw, path, "name", "type", "docs", "index")
	if err != nil {
		return Field{}, err
	}
	name, err := obj.requiredStr("name")
	if err != nil {
		return Field{}, err
	}
	docs, err := obj.strings("docs")
	if err != nil {
		return Field{}, err
	}
	if !obj.has("type") {
		return Field{}, Malformed(path, "missing required field \"type\"")
	}
	t, err := parseType(obj.raw("type"), obj.at("type"))
	if err != nil {
		return Field{}, err
	}
	clean := MemberName(name)
	if clean == "" {
		return Field{}, Malformed(obj.at("name"), "invalid field name %q", name)
	}
	return Field{Name: clean, RawName: name, Docs: docs, Type: t}, nil
}

func parseEnum(obj *object) (Type, error) {
	items, err := obj.list("variants")
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, Malformed(obj.path, "enum has no variants")
	}
	if len(items) > 256 {
		return nil, Unsupported(obj.path, "enum with %d variants exceeds one ordinal byte", len(items))
	}
	variants := make([]Variant, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		path := child(obj.path, "variants", strconv.Itoa(i))
		vo, err := decodeObject(item, path, "name", "fields", "docs")
		if err != nil {
			return nil, err
		}
		name, err := vo.requiredStr("name")
		if err != nil {
			return nil, err
		}
		clean := TypeName(name)
		if clean == "" {
			return nil, Malformed(vo.at("name"), "invalid variant name %q", name)
		}
		if seen[clean] {
			clean = fmt.Sprintf("%s%d", clean, i)
		}
		seen[clean] = true
		docs, err := vo.strings("docs")
		if err != nil {
			return nil, err
		}
		fields, err := parseFields(vo, "fields")
		if err != nil {
			return nil, err
		}
		variants = append(variants, Variant{Name: clean, RawName: name, Docs: docs, Fields: fields})
	}
	return &Enum{Variants: variants}, nil
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
