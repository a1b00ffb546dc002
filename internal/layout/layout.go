// Package layout computes the serialized byte layout of document types:
// whether a type has a static width, that width, the statically known
// prefix of dynamic types, and per-field offsets for account structs.
package layout

import (
	"github.com/zhairuihao/anchor-src-gen/internal/idl"
)

// MaxMemcmpLength is the widest field the RPC memcmp filter accepts.
const MaxMemcmpLength = 128

// DiscriminatorLength is the leading tag width of account and instruction
// payload types.
const DiscriminatorLength = 8

// lengthPrefix is the u32 count in front of strings, bytes and vectors.
const lengthPrefix = 4

// Measure describes the encoded size of a type.
type Measure struct {
	// Fixed is true when every value of the type encodes to Len bytes.
	Fixed bool
	// Len is the encoded width. Zero unless Fixed.
	Len int
	// Prefix is the number of bytes whose position and width are known
	// statically. It equals Len for fixed types.
	Prefix int
}

func fixed(n int) Measure   { return Measure{Fixed: true, Len: n, Prefix: n} }
func dynamic(p int) Measure { return Measure{Prefix: p} }

// Calculator measures types against one registry. Results are memoised, so a
// Calculator must not be shared between goroutines.
type Calculator struct {
	reg      *idl.Registry
	cache    map[idl.Type]Measure
	visiting map[string]bool
}

// New creates a calculator resolving Defined references through reg.
func New(reg *idl.Registry) *Calculator {
	return &Calculator{
		reg:      reg,
		cache:    make(map[idl.Type]Measure),
		visiting: make(map[string]bool),
	}
}

// Measure computes the size of t.
func (c *Calculator) Measure(t idl.Type) (Measure, error) {
	if m, ok := c.cache[t]; ok {
		return m, nil
	}
	m, err := c.measure(t)
	if err != nil {
		return Measure{}, err
	}
	c.cache[t] = m
	return m, nil
}

// IsFixed reports whether t has a static width.
func (c *Calculator) IsFixed(t idl.Type) (bool, error) {
	m, err := c.Measure(t)
	return m.Fixed, err
}

// Len returns the static width of t. ok is false for dynamic types.
func (c *Calculator) Len(t idl.Type) (n int, ok bool, err error) {
	m, err := c.Measure(t)
	if err != nil {
		return 0, false, err
	}
	return m.Len, m.Fixed, nil
}

// FixedPrefix returns the statically known bytes before the first dynamic
// part of t.
func (c *Calculator) FixedPrefix(t idl.Type) (int, error) {
	m, err := c.Measure(t)
	return m.Prefix, err
}

func (c *Calculator) measure(t idl.Type) (Measure, error) {
	switch tt := t.(type) {
	case *idl.Primitive:
		if w := tt.Name.Width(); w > 0 {
			return fixed(w), nil
		}
		return dynamic(lengthPrefix), nil

	case *idl.Array:
		elem, err := c.Measure(tt.Elem)
		if err != nil {
			return Measure{}, err
		}
		if !elem.Fixed {
			if tt.Count == 0 {
				return fixed(0), nil
			}
			return dynamic(elem.Prefix), nil
		}
		return fixed(tt.Count * elem.Len), nil

	case *idl.Vector:
		if _, err := c.Measure(tt.Elem); err != nil {
			return Measure{}, err
		}
		return dynamic(lengthPrefix), nil

	case *idl.Option:
		elem, err := c.Measure(tt.Elem)
		if err != nil {
			return Measure{}, err
		}
		if elem.Fixed {
			return fixed(1 + elem.Len), nil
		}
		return dynamic(1), nil

	case *idl.Defined:
		nt, ok := c.reg.Lookup(tt.Name)
		if !ok {
			return Measure{}, idl.Unresolved(nil, tt.Name)
		}
		if c.visiting[tt.Name] {
			return Measure{}, idl.Unsupported([]string{tt.Name}, "recursive type reference")
		}
		c.visiting[tt.Name] = true
		defer delete(c.visiting, tt.Name)
		m, err := c.Measure(nt.Type)
		if err != nil || !c.reg.IsAccount(tt.Name) {
			return m, err
		}
		if m.Fixed {
			return fixed(DiscriminatorLength + m.Len), nil
		}
		return dynamic(DiscriminatorLength + m.Prefix), nil

	case *idl.Struct:
		return c.fields(tt.Fields)

	case *idl.Enum:
		if !tt.HasPayloads() {
			return fixed(1), nil
		}
		for _, v := range tt.Variants {
			if _, err := c.fields(v.Fields); err != nil {
				return Measure{}, err
			}
		}
		return dynamic(1), nil

	default:
		panic(idl.Unreachable(t))
	}
}

// fields measures an ordered field list.
func (c *Calculator) fields(fields []idl.Field) (Measure, error) {
	total := 0
	for i, f := range fields {
		m, err := c.Measure(f.Type)
		if err != nil {
			return Measure{}, err
		}
		if !m.Fixed {
			// Later fields must still be measurable.
			for _, rest := range fields[i+1:] {
				if _, err := c.Measure(rest.Type); err != nil {
					return Measure{}, err
				}
			}
			return dynamic(total + m.Prefix), nil
		}
		total += m.Len
	}
	return fixed(total), nil
}
