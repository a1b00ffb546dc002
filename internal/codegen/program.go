package codegen

import (
	"fmt"
	"strings"

	"github.com/zhairuihao/anchor-src-gen/borsh"
	"github.com/zhairuihao/anchor-src-gen/internal/discriminator"
	"github.com/zhairuihao/anchor-src-gen/internal/idl"
)

// param is one generated function parameter.
type param struct {
	name   string
	goType string
}

// ixPlan is one instruction ready for emission.
type ixPlan struct {
	ix      *idl.Instruction
	name    string // exported instruction name, e.g. DepositSol
	tag     borsh.Discriminator
	data    *record
	keys    []keyMeta
	params  []param
	argVars []string
}

// keyMeta is one entry of the instruction account list.
type keyMeta struct {
	meta *idl.AccountMeta
	// expr is the key expression: a parameter or a fixed address.
	expr  string
	param bool
}

// emitProgram writes the program id and, per instruction, its tag, data
// record, factory and return decoder.
func (c *Context) emitProgram(u *Unit) (*Unit, error) {
	if c.Doc.Address != "" {
		u.Import(importSolana)
		id := c.claim("ProgramID", "_")
		u.P("// %s is the address of the %s program.", id, c.Doc.Name)
		u.P("var %s = solana.MustPublicKeyFromBase58(%q)", id, c.Doc.Address)
		u.P("")
	}

	for i := range c.Doc.Instructions {
		p, err := c.planInstruction(&c.Doc.Instructions[i])
		if err != nil {
			return nil, err
		}
		c.emitInstruction(u, p)
		if err := c.stages.Advance(p.data.name, StageEmitted); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// dataName picks the instruction record name: <Ix>IxData, then
// <Ix>IxRecord, then <Ix>IxData2 and up.
func (c *Context) dataName(ix string) string {
	candidates := []string{ix + "IxData", ix + "IxRecord"}
	for _, n := range candidates {
		if !c.taken[n] {
			c.taken[n] = true
			return n
		}
	}
	for i := 2; ; i++ {
		n := fmt.Sprintf("%sIxData%d", ix, i)
		if !c.taken[n] {
			c.taken[n] = true
			return n
		}
	}
}

func (c *Context) planInstruction(ix *idl.Instruction) (*ixPlan, error) {
	path := []string{"instructions", ix.Name}
	p := &ixPlan{ix: ix, name: idl.Exported(ix.Name)}

	for i, f := range ix.Args {
		if err := c.validate(f.Type, append(path, "args", fieldLabel(f, i))); err != nil {
			return nil, err
		}
	}
	if ix.Returns != nil {
		if err := c.validate(ix.Returns, append(path, "returns")); err != nil {
			return nil, err
		}
	}

	name := c.dataName(p.name)
	if err := c.stages.Track(name); err != nil {
		return nil, err
	}
	sl, err := c.calc.Struct(ix.Args, true)
	if err != nil {
		return nil, err
	}
	if err := c.stages.Advance(name, StageLayoutComputed); err != nil {
		return nil, err
	}
	d, err := discriminator.Instruction(*ix)
	if err != nil {
		return nil, idl.Malformed(path, "%v", err)
	}
	tag := c.claim(p.name+"IxDiscriminator", "_")
	if err := c.stages.Advance(name, StageDiscriminatorResolved); err != nil {
		return nil, err
	}
	p.data = &record{
		name:      name,
		fields:    ix.Args,
		layout:    sl,
		tag:       tag,
		hasTag:    true,
		sizeConst: sl.Fixed,
	}
	p.data.docs = []string{fmt.Sprintf("%s is the data of the %s instruction.", name, ix.RawName)}
	p.keys, p.params = c.instructionKeys(ix)

	used := make(map[string]bool, len(p.params))
	for _, prm := range p.params {
		used[prm.name] = true
	}
	for i, f := range ix.Args {
		v := idl.Identifier(fieldLabel(f, i))
		for used[v] {
			v += "Arg"
		}
		used[v] = true
		p.argVars = append(p.argVars, v)
	}
	p.tag = d
	return p, nil
}

// instructionKeys resolves the account list. Accounts with a fixed address
// are referenced directly, through the known table where possible; every
// other account becomes a parameter.
func (c *Context) instructionKeys(ix *idl.Instruction) ([]keyMeta, []param) {
	var keys []keyMeta
	var params []param
	used := map[string]bool{"invokedProgram": true}
	for i := range ix.Accounts {
		m := &ix.Accounts[i]
		if m.Address != "" {
			if e, ok := c.known.Lookup(m.Address); ok {
				keys = append(keys, keyMeta{meta: m, expr: e.Expr})
			} else {
				keys = append(keys, keyMeta{meta: m, expr: fmt.Sprintf("solana.MustPublicKeyFromBase58(%q)", m.Address)})
			}
			continue
		}
		name := m.Name
		if !strings.HasSuffix(name, "Key") && !strings.HasSuffix(name, "key") {
			name += "Key"
		}
		name = idl.Identifier(name)
		for used[name] {
			name += "_"
		}
		used[name] = true
		keys = append(keys, keyMeta{meta: m, expr: name, param: true})
		params = append(params, param{name: name, goType: "solana.PublicKey"})
	}
	return keys, params
}

func (c *Context) emitInstruction(u *Unit, p *ixPlan) {
	u.Import(importSolana)
	ix := p.ix
	tag := p.data.tag

	u.P("// %s tags %s instruction data.", tag, ix.RawName)
	u.P("var %s = %s", tag, discriminatorLiteral(p.tag))
	u.P("")
	if p.data.layout.Fixed {
		u.P("// %sBytes is the encoded size of %s.", p.data.name, p.data.name)
		u.P("const %sBytes = %d", p.data.name, p.data.layout.Len)
		u.P("")
	}
	c.emitRecord(u, p.data)
	c.emitDecoders(u, p.data.name)

	fn := "New" + p.name + "Instruction"
	u.P("// %s builds a %s instruction.", fn, ix.RawName)
	if len(ix.Docs) > 0 {
		u.P("//")
		u.Docs(ix.Docs)
	}
	u.P("func %s(", fn)
	u.P("invokedProgram solana.PublicKey,")
	for _, prm := range p.params {
		u.P("%s %s,", prm.name, prm.goType)
	}
	for i, f := range ix.Args {
		u.P("%s %s,", p.argVars[i], c.goType(u, f.Type))
	}
	u.P(") *solana.GenericInstruction {")
	for _, k := range p.keys {
		if k.param && k.meta.Optional {
			u.P("if %s.IsZero() {", k.expr)
			u.P("%s = invokedProgram", k.expr)
			u.P("}")
		}
	}
	u.P("keys := solana.AccountMetaSlice{")
	for _, k := range p.keys {
		var b strings.Builder
		fmt.Fprintf(&b, "solana.Meta(%s)", k.expr)
		if k.meta.Writable {
			b.WriteString(".WRITE()")
		}
		if k.meta.Signer {
			b.WriteString(".SIGNER()")
		}
		u.P("%s,", b.String())
	}
	u.P("}")
	u.P("ix := %s{", p.data.name)
	u.P("Discriminator: %s,", tag)
	for i, f := range ix.Args {
		u.P("%s: %s,", fieldName(f, i), p.argVars[i])
	}
	u.P("}")
	u.P("data := make([]byte, ix.Len())")
	u.P("n := ix.Write(data, 0)")
	u.P("return solana.NewInstruction(invokedProgram, keys, data[:n])")
	u.P("}")
	u.P("")

	if ix.Returns != nil {
		rt := c.goType(u, ix.Returns)
		u.P("// Decode%sReturn decodes the return data of %s.", p.name, ix.RawName)
		u.P("func Decode%sReturn(data []byte) (%s, error) {", p.name, rt)
		u.P("r := borsh.NewReader(data, 0)")
		u.P("v := %s", c.readExpr(u, ix.Returns))
		u.P("if err := r.Err(); err != nil {")
		u.P("var zero %s", rt)
		u.P("return zero, err")
		u.P("}")
		u.P("return v, nil")
		u.P("}")
		u.P("")
	}
}
