package layout

import (
	"github.com/zhairuihao/anchor-src-gen/internal/idl"
)

// FieldLayout places one struct field.
type FieldLayout struct {
	Field idl.Field
	Measure
	// HasOffset is true when the field and every field before it are fixed.
	HasOffset bool
	Offset    int
	// Filterable is true when a memcmp filter can match the whole field.
	Filterable bool
}

// StructLayout is the placement of every field of a struct.
type StructLayout struct {
	Fields []FieldLayout
	// Discriminator is true when the struct is preceded by an 8-byte tag.
	Discriminator bool
	// Fixed and Len cover the whole encoding, tag included.
	Fixed bool
	Len   int
	// Prefix is the static part of the encoding, tag included.
	Prefix int
}

// Struct lays out fields, optionally after an 8-byte discriminator. Offsets
// stop at the first dynamic field: neither it nor anything after it has a
// static position.
func (c *Calculator) Struct(fields []idl.Field, discriminator bool) (*StructLayout, error) {
	out := &StructLayout{Discriminator: discriminator, Fields: make([]FieldLayout, 0, len(fields))}
	off := 0
	if discriminator {
		off = DiscriminatorLength
	}
	dynamicSeen := false
	prefix := off
	for _, f := range fields {
		m, err := c.Measure(f.Type)
		if err != nil {
			return nil, err
		}
		fl := FieldLayout{Field: f, Measure: m}
		if !dynamicSeen {
			if m.Fixed {
				fl.HasOffset = true
				fl.Offset = off
				fl.Filterable = m.Len <= MaxMemcmpLength
				off += m.Len
				prefix = off
			} else {
				dynamicSeen = true
				prefix = off + m.Prefix
			}
		}
		out.Fields = append(out.Fields, fl)
	}
	out.Fixed = !dynamicSeen
	out.Prefix = prefix
	if out.Fixed {
		out.Len = off
	}
	return out, nil
}
