package idl

import "fmt"

// TypeKind identifies a Type variant.
type TypeKind string

const (
	KindPrimitive TypeKind = "primitive"
	KindArray     TypeKind = "array"
	KindVector    TypeKind = "vector"
	KindOption    TypeKind = "option"
	KindDefined   TypeKind = "defined"
	KindStruct    TypeKind = "struct"
	KindEnum      TypeKind = "enum"
)

// Type is the closed set of document types. The unexported method keeps the
// set sealed so every switch over it can be exhaustive.
type Type interface {
	Kind() TypeKind
	String() string
	isType()
}

// Primitive is a leaf type.
type Primitive struct {
	Name PrimitiveKind
}

// Array is a fixed-count sequence. Nested arrays model multi-dimensional data.
type Array struct {
	Elem  Type
	Count int
}

// Vector is a u32-length-prefixed sequence.
type Vector struct {
	Elem Type
}

// Option is a presence byte followed by Elem when present.
type Option struct {
	Elem Type
}

// Defined references a named type in the registry.
type Defined struct {
	Name string
}

// Struct is an ordered field list. Tuple structs have unnamed fields.
type Struct struct {
	Fields []Field
}

// Enum is an ordered variant list. The ordinal of a variant is its index.
type Enum struct {
	Variants []Variant
}

// Field is a struct member or an enum variant payload element.
type Field struct {
	Name    string // canonical lower camel name, empty for tuple members
	RawName string
	Docs    []string
	Type    Type
}

// Variant is one enum alternative.
type Variant struct {
	Name    string
	RawName string
	Docs    []string
	Fields  []Field
}

// HasPayload reports whether the variant carries data.
func (v Variant) HasPayload() bool {
	return len(v.Fields) > 0
}

// Tuple reports whether the variant payload is positional.
func (v Variant) Tuple() bool {
	return len(v.Fields) > 0 && v.Fields[0].Name == ""
}

// HasPayloads reports whether any variant carries data.
func (e *Enum) HasPayloads() bool {
	for _, v := range e.Variants {
		if v.HasPayload() {
			return true
		}
	}
	return false
}

// Depth counts directly nested arrays, starting at 1.
func (a *Array) Depth() int {
	if inner, ok := a.Elem.(*Array); ok {
		return 1 + inner.Depth()
	}
	return 1
}

// Depth counts directly nested vectors, starting at 1.
func (v *Vector) Depth() int {
	if inner, ok := v.Elem.(*Vector); ok {
		return 1 + inner.Depth()
	}
	return 1
}

// Leaf returns the innermost non-array element.
func (a *Array) Leaf() Type {
	if inner, ok := a.Elem.(*Array); ok {
		return inner.Leaf()
	}
	return a.Elem
}

func (*Primitive) Kind() TypeKind { return KindPrimitive }
func (*Array) Kind() TypeKind     { return KindArray }
func (*Vector) Kind() TypeKind    { return KindVector }
func (*Option) Kind() TypeKind    { return KindOption }
func (*Defined) Kind() TypeKind   { return KindDefined }
func (*Struct) Kind() TypeKind    { return KindStruct }
func (*Enum) Kind() TypeKind      { return KindEnum }

func (*Primitive) isType() {}
func (*Array) isType()     {}
func (*Vector) isType()    {}
func (*Option) isType()    {}
func (*Defined) isType()   {}
func (*Struct) isType()    {}
func (*Enum) isType()      {}

func (t *Primitive) String() string { return string(t.Name) }
func (t *Array) String() string     { return fmt.Sprintf("[%s; %d]", t.Elem, t.Count) }
func (t *Vector) String() string    { return fmt.Sprintf("vec<%s>", t.Elem) }
func (t *Option) String() string    { return fmt.Sprintf("option<%s>", t.Elem) }
func (t *Defined) String() string   { return t.Name }
func (t *Struct) String() string    { return fmt.Sprintf("struct(%d fields)", len(t.Fields)) }
func (t *Enum) String() string      { return fmt.Sprintf("enum(%d variants)", len(t.Variants)) }

// Unreachable describes a Type outside the sealed set. Switch defaults use it
// as panic(idl.Unreachable(t)).
func Unreachable(t Type) string {
	return fmt.Sprintf("idl: unreachable type variant %T", t)
}
