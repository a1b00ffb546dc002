package codegen

import (
	"strings"

	"github.com/zhairuihao/anchor-src-gen/internal/idl"
	"github.com/zhairuihao/anchor-src-gen/internal/layout"
)

// emitSimpleEnum writes a payload-free enum as a uint8 type with one
// constant per variant.
func (c *Context) emitSimpleEnum(u *Unit, nt *idl.NamedType) {
	en := nt.Type.(*idl.Enum)
	names := c.variants[nt.Name]
	u.Import(c.runtime)
	u.Import(importFmt)

	u.Docs(nt.Docs)
	u.P("type %s uint8", nt.Name)
	u.P("")
	u.P("const (")
	for i, v := range en.Variants {
		u.Docs(v.Docs)
		if i == 0 {
			u.P("%s %s = iota", names[i], nt.Name)
			continue
		}
		u.P("%s", names[i])
	}
	u.P(")")
	u.P("")

	quoted := make([]string, len(en.Variants))
	for i, v := range en.Variants {
		quoted[i] = `"` + v.Name + `"`
	}
	table := c.claim(idl.MemberName(nt.Name)+"Names", "_")
	u.P("var %s = [...]string{%s}", table, strings.Join(quoted, ", "))
	u.P("")
	u.P("func (v %s) String() string {", nt.Name)
	u.P("if int(v) < len(%s) {", table)
	u.P("return %s[v]", table)
	u.P("}")
	u.P("return fmt.Sprintf(\"%s(%%d)\", uint8(v))", nt.Name)
	u.P("}")
	u.P("")

	u.P("// Read%s decodes a %s ordinal. Ordinals past the last variant fail r.", nt.Name, nt.Name)
	u.P("func Read%s(r *borsh.Reader) %s {", nt.Name, nt.Name)
	u.P("ord := r.U8()")
	u.P("if r.Err() == nil && int(ord) >= %d {", len(en.Variants))
	u.P("r.Fail(borsh.UnexpectedOrdinal(ord, %q))", nt.Name)
	u.P("return 0")
	u.P("}")
	u.P("return %s(ord)", nt.Name)
	u.P("}")
	u.P("")
	u.P("func (v *%s) Read(r *borsh.Reader) {", nt.Name)
	u.P("*v = Read%s(r)", nt.Name)
	u.P("}")
	u.P("")
	u.P("func (v %s) Write(data []byte, off int) int {", nt.Name)
	u.P("return borsh.PutU8(data, off, uint8(v))")
	u.P("}")
	u.P("")
	u.P("func (v %s) Len() int {", nt.Name)
	u.P("return 1")
	u.P("}")
	u.P("")
	c.emitDecodeEnum(u, nt.Name)
}

// emitPayloadEnum writes a sealed interface with one struct per variant.
func (c *Context) emitPayloadEnum(u *Unit, nt *idl.NamedType, variants []*layout.StructLayout) {
	en := nt.Type.(*idl.Enum)
	names := c.variants[nt.Name]
	marker := c.claim("is"+nt.Name, "_")
	u.Import(c.runtime)

	u.Docs(nt.Docs)
	u.P("type %s interface {", nt.Name)
	u.P("%s()", marker)
	u.P("// Ordinal is the variant tag.")
	u.P("Ordinal() uint8")
	u.P("Write(data []byte, off int) int")
	u.P("Len() int")
	u.P("}")
	u.P("")

	for i, v := range en.Variants {
		ord := i
		c.emitRecord(u, &record{
			name:    names[i],
			docs:    v.Docs,
			fields:  v.Fields,
			layout:  variants[i],
			ordinal: &ord,
		})
		u.P("func (%s) %s() {}", names[i], marker)
		u.P("")
		u.P("func (%s) Ordinal() uint8 {", names[i])
		u.P("return %d", i)
		u.P("}")
		u.P("")
	}

	u.P("// Read%s decodes a %s variant. Ordinals past the last variant fail r", nt.Name, nt.Name)
	u.P("// and decode to nil.")
	u.P("func Read%s(r *borsh.Reader) %s {", nt.Name, nt.Name)
	u.P("ord := r.U8()")
	u.P("if r.Err() != nil {")
	u.P("return nil")
	u.P("}")
	u.P("switch ord {")
	for i, v := range en.Variants {
		u.P("case %d:", i)
		if !v.HasPayload() {
			u.P("return %s{}", names[i])
			continue
		}
		u.P("var v %s", names[i])
		u.P("v.Read(r)")
		u.P("return v")
	}
	u.P("default:")
	u.P("r.Fail(borsh.UnexpectedOrdinal(ord, %q))", nt.Name)
	u.P("return nil")
	u.P("}")
	u.P("}")
	u.P("")
	c.emitDecodeEnum(u, nt.Name)
}

// emitDecodeEnum writes Decode<T> for an enum. Unlike struct decoders it
// returns the value itself.
func (c *Context) emitDecodeEnum(u *Unit, name string) {
	u.P("// Decode%s decodes a %s at offset.", name, name)
	u.P("func Decode%s(data []byte, offset int) (%s, error) {", name, name)
	u.P("r := borsh.NewReader(data, offset)")
	u.P("v := Read%s(r)", name)
	u.P("if err := r.Err(); err != nil {")
	u.P("var zero %s", name)
	u.P("return zero, err")
	u.P("}")
	u.P("return v, nil")
	u.P("}")
	u.P("")
}
