package codegen

import (
	"fmt"
	"strings"

	"github.com/zhairuihao/anchor-src-gen/internal/pda"
)

// emitPDAs writes one derivation helper per distinct PDA rule.
func (c *Context) emitPDAs(u *Unit) (*Unit, error) {
	fns, err := pda.Collect(c.Doc, c.known)
	if err != nil {
		return nil, err
	}
	for _, fn := range fns {
		c.emitPDA(u, fn)
	}
	return u, nil
}

func (c *Context) emitPDA(u *Unit, fn *pda.Function) {
	u.Import(importSolana)
	name := c.claim(fn.Name, "_")

	described := make([]string, len(fn.Seeds))
	for i, s := range fn.Seeds {
		switch s.Kind {
		case pda.SeedText:
			described[i] = fmt.Sprintf("%q", s.Text)
		case pda.SeedParam:
			described[i] = s.Param.Path
		case pda.SeedKnown:
			described[i] = s.Known.Name
		default:
			described[i] = fmt.Sprintf("%d constant bytes", len(s.Bytes))
		}
	}
	u.P("// %s derives the %s address from the seeds %s.", name, fn.Account, strings.Join(described, ", "))

	var params []string
	if fn.Program == nil {
		params = append(params, "program solana.PublicKey")
	}
	for _, p := range fn.Params {
		switch p.Kind {
		case pda.ParamPublicKey:
			params = append(params, p.Name+" solana.PublicKey")
		default:
			params = append(params, p.Name+" []byte")
		}
	}
	u.P("func %s(%s) (solana.PublicKey, uint8, error) {", name, strings.Join(params, ", "))
	u.P("seeds := [][]byte{")
	for _, s := range fn.Seeds {
		u.P("%s,", seedExpr(s))
	}
	u.P("}")
	program := "program"
	if fn.Program != nil {
		program = fn.Program.Expr()
	}
	u.P("return solana.FindProgramAddress(seeds, %s)", program)
	u.P("}")
	u.P("")
}

func seedExpr(s pda.Seed) string {
	switch s.Kind {
	case pda.SeedText:
		return fmt.Sprintf("[]byte(%q)", s.Text)
	case pda.SeedKnown:
		return s.Known.Expr + ".Bytes()"
	case pda.SeedParam:
		if s.Param.Kind == pda.ParamPublicKey {
			return s.Param.Name + ".Bytes()"
		}
		return s.Param.Name
	default:
		parts := make([]string, len(s.Bytes))
		for i, b := range s.Bytes {
			parts[i] = fmt.Sprintf("0x%02x", b)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
}
