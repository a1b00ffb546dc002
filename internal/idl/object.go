package idl

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// object is one decoded JSON object whose keys have been checked against an
// allowed set.
type object struct {
	path   []string
	fields map[string]json.RawMessage
}

func decodeObject(raw json.RawMessage, path []string, allowed ...string) (*object, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, Malformed(path, "expected object, got %s", jsonShape(raw))
	}
	if len(allowed) > 0 {
		set := make(map[string]struct{}, len(allowed))
		for _, a := range allowed {
			set[a] = struct{}{}
		}
		var unknown []string
		for k := range fields {
			if _, ok := set[k]; !ok {
				unknown = append(unknown, k)
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return nil, Malformed(path, "unknown field(s) %s", strings.Join(unknown, ", "))
		}
	}
	return &object{path: path, fields: fields}, nil
}

func (o *object) has(key string) bool {
	raw, ok := o.fields[key]
	return ok && !isNull(raw)
}

func (o *object) raw(key string) json.RawMessage {
	return o.fields[key]
}

func (o *object) at(key string) []string {
	return child(o.path, key)
}

func (o *object) str(key string) (string, error) {
	if !o.has(key) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(o.fields[key], &s); err != nil {
		return "", Malformed(o.at(key), "expected string, got %s", jsonShape(o.fields[key]))
	}
	return s, nil
}

func (o *object) requiredStr(key string) (string, error) {
	if !o.has(key) {
		return "", Malformed(o.path, "missing required field %q", key)
	}
	s, err := o.str(key)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", Malformed(o.at(key), "must not be empty")
	}
	return s, nil
}

func (o *object) boolean(key string) (bool, error) {
	if !o.has(key) {
		return false, nil
	}
	var b bool
	if err := json.Unmarshal(o.fields[key], &b); err != nil {
		return false, Malformed(o.at(key), "expected bool, got %s", jsonShape(o.fields[key]))
	}
	return b, nil
}

// flag reads the first present key among names, so legacy and current
// spellings (isMut, writable) are both accepted.
func (o *object) flag(names ...string) (bool, error) {
	for _, n := range names {
		if o.has(n) {
			return o.boolean(n)
		}
	}
	return false, nil
}

func (o *object) strings(key string) ([]string, error) {
	if !o.has(key) {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(o.fields[key], &out); err != nil {
		return nil, Malformed(o.at(key), "expected string list, got %s", jsonShape(o.fields[key]))
	}
	return out, nil
}

func (o *object) list(key string) ([]json.RawMessage, error) {
	if !o.has(key) {
		return nil, nil
	}
	var out []json.RawMessage
	if err := json.Unmarshal(o.fields[key], &out); err != nil {
		return nil, Malformed(o.at(key), "expected list, got %s", jsonShape(o.fields[key]))
	}
	return out, nil
}

// byteList reads a JSON array of integers in [0, 255].
func (o *object) byteList(key string) ([]byte, error) {
	if !o.has(key) {
		return nil, nil
	}
	return decodeByteList(o.fields[key], o.at(key))
}

func decodeByteList(raw json.RawMessage, path []string) ([]byte, error) {
	var ints []int
	if err := json.Unmarshal(raw, &ints); err != nil {
		return nil, Malformed(path, "expected byte list, got %s", jsonShape(raw))
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, Malformed(path, "byte %d out of range: %d", i, v)
		}
		out[i] = byte(v)
	}
	return out, nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// jsonShape names the JSON kind of raw for error messages.
func jsonShape(raw json.RawMessage) string {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 {
		return "nothing"
	}
	switch t[0] {
	case '{':
		return "object"
	case '[':
		return "list"
	case '"':
		return "string"
	case 't', 'f':
		return "bool"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
