package idl

import (
	"errors"
	"fmt"
	"strings"
)

// Kind categorizes a document error.
type Kind string

const (
	// KindMalformed covers unknown fields, unknown type tags, wrong JSON
	// shapes and missing required fields.
	KindMalformed Kind = "malformed"
	// KindUnsupported covers well-formed constructs the generator does not
	// implement (array/vector depth beyond 2, generics, coption, ...).
	KindUnsupported Kind = "unsupported"
	// KindUnresolved covers Defined references absent from the registry.
	KindUnresolved Kind = "unresolved"
)

// Error is the structured error returned by parsing and resolution.
type Error struct {
	Kind   Kind
	Path   []string
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("idl ")
	b.WriteString(string(e.Kind))
	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether err wraps an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Malformed builds a KindMalformed error.
func Malformed(path []string, format string, args ...any) *Error {
	return &Error{Kind: KindMalformed, Path: clonePath(path), Detail: fmt.Sprintf(format, args...)}
}

// Unsupported builds a KindUnsupported error.
func Unsupported(path []string, format string, args ...any) *Error {
	return &Error{Kind: KindUnsupported, Path: clonePath(path), Detail: fmt.Sprintf(format, args...)}
}

// Unresolved builds a KindUnresolved error.
func Unresolved(path []string, name string) *Error {
	return &Error{Kind: KindUnresolved, Path: clonePath(path), Detail: fmt.Sprintf("defined type %q not found", name)}
}

func clonePath(path []string) []string {
	if len(path) == 0 {
		return nil
	}
	out := make([]string, len(path))
	copy(out, path)
	return out
}

func child(path []string, elems ...string) []string {
	out := make([]string, 0, len(path)+len(elems))
	out = append(out, path...)
	return append(out, elems...)
}
