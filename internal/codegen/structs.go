package codegen

import (
	"fmt"
	"strings"

	"github.com/zhairuihao/anchor-src-gen/borsh"
	"github.com/zhairuihao/anchor-src-gen/internal/idl"
	"github.com/zhairuihao/anchor-src-gen/internal/layout"
)

// methodNames are the identifiers generated types define themselves.
// Fields with these names get a trailing underscore.
var methodNames = map[string]bool{
	"Read": true, "Write": true, "Len": true, "Ordinal": true,
	"Address": true, "Discriminator": true, "String": true,
}

// fieldName is the Go name of the i-th field.
func fieldName(f idl.Field, i int) string {
	if f.Name == "" {
		return fmt.Sprintf("Field%d", i)
	}
	name := idl.Exported(f.Name)
	if methodNames[name] {
		name += "_"
	}
	return name
}

// record is one struct-shaped Go type to emit: a named struct, an enum
// variant or an instruction payload.
type record struct {
	name   string
	docs   []string
	fields []idl.Field
	layout *layout.StructLayout
	// tag names the discriminator written before the fields when hasTag
	// is set.
	tag    string
	hasTag bool
	// sizeConst is set when a <name>Bytes constant is emitted for a fixed
	// record.
	sizeConst bool
	// ordinal is written before the fields of an enum variant.
	ordinal *int
	// account adds the Address field.
	account bool
}

func discriminatorLiteral(d borsh.Discriminator) string {
	parts := make([]string, len(d))
	for i, b := range d {
		parts[i] = fmt.Sprint(b)
	}
	return "borsh.Discriminator{" + strings.Join(parts, ", ") + "}"
}

// emitRecord writes the struct declaration and its Read, Write and Len
// methods.
func (c *Context) emitRecord(u *Unit, rec *record) {
	u.Import(c.runtime)
	if len(rec.docs) > 0 {
		u.Docs(rec.docs)
	}
	if len(rec.fields) == 0 && !rec.account && !rec.hasTag {
		u.P("type %s struct{}", rec.name)
	} else {
		u.P("type %s struct {", rec.name)
		if rec.account {
			u.Import(importSolana)
			u.P("// Address is where the account was loaded from. It is not encoded.")
			u.P("Address solana.PublicKey")
		}
		if rec.hasTag {
			u.P("Discriminator borsh.Discriminator")
		}
		for i, f := range rec.fields {
			u.Docs(f.Docs)
			u.P("%s %s", fieldName(f, i), c.goType(u, f.Type))
		}
		u.P("}")
	}
	u.P("")

	// Read
	if len(rec.fields) == 0 && !rec.hasTag {
		u.P("func (*%s) Read(*borsh.Reader) {}", rec.name)
	} else {
		u.P("func (v *%s) Read(r *borsh.Reader) {", rec.name)
		if rec.hasTag {
			u.P("borsh.CheckDiscriminator(r, %s)", rec.tag)
			u.P("v.Discriminator = %s", rec.tag)
		}
		for i, f := range rec.fields {
			u.P("v.%s = %s", fieldName(f, i), c.readExpr(u, f.Type))
		}
		u.P("}")
	}
	u.P("")

	// Write
	u.P("func (v %s) Write(data []byte, off int) int {", rec.name)
	u.P("i := off")
	if rec.ordinal != nil {
		u.P("i += borsh.PutU8(data, i, %d)", *rec.ordinal)
	}
	if rec.hasTag {
		u.P("i += borsh.PutDiscriminator(data, i, %s)", rec.tag)
	}
	for i, f := range rec.fields {
		u.P("i += %s", c.writeExpr(u, f.Type, "v."+fieldName(f, i), "i"))
	}
	u.P("return i - off")
	u.P("}")
	u.P("")

	// Len
	u.P("func (v %s) Len() int {", rec.name)
	u.P("return %s", c.recordLen(u, rec))
	u.P("}")
	u.P("")
}

// recordLen renders the Len body: the Bytes constant of a constant-width
// record, or the static part plus one term per variable-width field.
func (c *Context) recordLen(u *Unit, rec *record) string {
	if rec.layout.Fixed && rec.sizeConst && c.constantFields(rec.fields) {
		return rec.name + "Bytes"
	}
	static := 0
	if rec.ordinal != nil {
		static++
	}
	if rec.hasTag {
		static += borsh.DiscriminatorLength
	}
	var terms []string
	for i, fl := range rec.layout.Fields {
		if c.constant(fl.Field.Type) {
			static += fl.Len
			continue
		}
		terms = append(terms, c.lenExpr(u, fl.Field.Type, "v."+fieldName(fl.Field, i)))
	}
	return strings.Join(append([]string{fmt.Sprint(static)}, terms...), " + ")
}

// emitDecoders writes Read<T> and Decode<T>.
func (c *Context) emitDecoders(u *Unit, name string) {
	u.P("// Read%s decodes a %s from r.", name, name)
	u.P("func Read%s(r *borsh.Reader) %s {", name, name)
	u.P("var v %s", name)
	u.P("v.Read(r)")
	u.P("return v")
	u.P("}")
	u.P("")
	u.P("// Decode%s decodes a %s at offset. Empty data decodes to nil.", name, name)
	u.P("func Decode%s(data []byte, offset int) (*%s, error) {", name, name)
	u.P("if len(data) == 0 {")
	u.P("return nil, nil")
	u.P("}")
	u.P("r := borsh.NewReader(data, offset)")
	u.P("v := Read%s(r)", name)
	u.P("if err := r.Err(); err != nil {")
	u.P("return nil, err")
	u.P("}")
	u.P("return &v, nil")
	u.P("}")
	u.P("")
}

// emitStruct writes a named struct type. Accounts also get their tag,
// size, offset and filter declarations.
func (c *Context) emitStruct(u *Unit, p *typePlan) {
	nt := p.nt
	st := nt.Type.(*idl.Struct)
	rec := &record{name: nt.Name, docs: nt.Docs, fields: st.Fields, layout: p.layout, sizeConst: p.layout.Fixed}
	if p.account != nil {
		rec.account = true
		rec.hasTag = true
		rec.tag = nt.Name + "Discriminator"
	}

	if p.account != nil {
		u.P("// %s tags %s account data.", rec.tag, nt.Name)
		u.P("var %s = %s", rec.tag, discriminatorLiteral(*p.account))
		u.P("")
		u.P("// %sFilter matches %s accounts.", rec.tag, nt.Name)
		u.P("var %sFilter = borsh.MemcmpFilter(0, %s.Bytes())", rec.tag, rec.tag)
		u.P("")
	}
	if p.layout.Fixed {
		u.P("// %sBytes is the encoded size of %s.", nt.Name, nt.Name)
		u.P("const %sBytes = %d", nt.Name, p.layout.Len)
		u.P("")
		if p.account != nil {
			u.P("// %sSizeFilter matches accounts of exactly %sBytes.", nt.Name, nt.Name)
			u.P("var %sSizeFilter = borsh.DataSizeFilter(%sBytes)", nt.Name, nt.Name)
			u.P("")
		}
	}
	if p.account != nil {
		c.emitOffsets(u, nt.Name, p.layout)
	}

	c.emitRecord(u, rec)
	c.emitDecoders(u, nt.Name)

	if p.account != nil {
		u.Import(importSolana)
		u.P("// Decode%sAccount decodes the data of the %s account at address.", nt.Name, nt.Name)
		u.P("func Decode%sAccount(address solana.PublicKey, data []byte) (*%s, error) {", nt.Name, nt.Name)
		u.P("v, err := Decode%s(data, 0)", nt.Name)
		u.P("if v != nil {")
		u.P("v.Address = address")
		u.P("}")
		u.P("return v, err")
		u.P("}")
		u.P("")
	}
}

// emitOffsets writes the offset constant of every statically placed field
// and a memcmp filter helper for those narrow enough to compare.
func (c *Context) emitOffsets(u *Unit, typeName string, sl *layout.StructLayout) {
	var placed []layout.FieldLayout
	for _, fl := range sl.Fields {
		if fl.HasOffset && fl.Field.Name != "" {
			placed = append(placed, fl)
		}
	}
	if len(placed) == 0 {
		return
	}
	u.P("// Byte offsets of the statically placed %s fields.", typeName)
	u.P("const (")
	for _, fl := range placed {
		u.P("%s%sOffset = %d", typeName, idl.Exported(fl.Field.Name), fl.Offset)
	}
	u.P(")")
	u.P("")

	for _, fl := range placed {
		if !fl.Filterable {
			continue
		}
		u.Import(importRPC)
		field := idl.Exported(fl.Field.Name)
		u.P("// %s%sFilter matches %s accounts whose %s equals v.", typeName, field, typeName, fl.Field.RawName)
		u.P("func %s%sFilter(v %s) rpc.RPCFilter {", typeName, field, c.goType(u, fl.Field.Type))
		u.P("data := make([]byte, %d)", fl.Len)
		u.P("n := %s", c.writeExpr(u, fl.Field.Type, "v", "0"))
		u.P("return borsh.MemcmpFilter(%s%sOffset, data[:n])", typeName, field)
		u.P("}")
		u.P("")
	}
}

// emitEvent writes the event tag and decoder of an event type.
func (c *Context) emitEvent(u *Unit, p *typePlan) {
	name := p.nt.Name
	u.P("// %sEventDiscriminator tags %s event data.", name, name)
	u.P("var %sEventDiscriminator = %s", name, discriminatorLiteral(*p.event))
	u.P("")
	u.P("// Decode%sEvent decodes event data carrying the %s tag.", name, name)
	u.P("func Decode%sEvent(data []byte) (*%s, error) {", name, name)
	u.P("r := borsh.NewReader(data, 0)")
	u.P("borsh.CheckDiscriminator(r, %sEventDiscriminator)", name)
	u.P("v := Read%s(r)", name)
	u.P("if err := r.Err(); err != nil {")
	u.P("return nil, err")
	u.P("}")
	u.P("return &v, nil")
	u.P("}")
	u.P("")
}
