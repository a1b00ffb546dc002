package codegen

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/zhairuihao/anchor-src-gen/internal/idl"
)

// emitConstants writes program constants. Scalars become typed Go
// constants; bytes, big integers and public keys become package variables.
func (c *Context) emitConstants(u *Unit) (*Unit, error) {
	type decl struct {
		docs []string
		line string
	}
	var consts, vars []decl

	for i, k := range c.Doc.Constants {
		path := []string{"constants", strconv.Itoa(i)}
		name := c.claim(k.Name, "Value")
		switch k.Kind {
		case idl.ConstString:
			consts = append(consts, decl{k.Docs, fmt.Sprintf("%s = %s", name, strconv.Quote(k.Str))})
		case idl.ConstBool:
			consts = append(consts, decl{k.Docs, fmt.Sprintf("%s = %t", name, k.Bool)})
		case idl.ConstInteger:
			consts = append(consts, decl{k.Docs, fmt.Sprintf("%s %s = %s", name, primitives[k.Type].goType, k.Int.String())})
		case idl.ConstFloat:
			if math.IsInf(k.Float, 0) || math.IsNaN(k.Float) {
				return nil, idl.Unsupported(path, "non-finite float constant %q", k.Raw)
			}
			consts = append(consts, decl{k.Docs, fmt.Sprintf("%s %s = %s", name, primitives[k.Type].goType, strconv.FormatFloat(k.Float, 'g', -1, 64))})
		case idl.ConstBigInt:
			u.Import(importBig)
			vars = append(vars, decl{k.Docs, fmt.Sprintf("%s = func() *big.Int { v, _ := new(big.Int).SetString(%q, 10); return v }()", name, k.Int.String())})
		case idl.ConstBytes:
			parts := make([]string, len(k.Bytes))
			for j, b := range k.Bytes {
				parts[j] = strconv.Itoa(int(b))
			}
			vars = append(vars, decl{k.Docs, fmt.Sprintf("%s = []byte{%s}", name, strings.Join(parts, ", "))})
		case idl.ConstPublicKey:
			u.Import(importSolana)
			vars = append(vars, decl{k.Docs, fmt.Sprintf("%s = solana.MustPublicKeyFromBase58(%q)", name, k.Str)})
		default:
			return nil, idl.Unsupported(path, "constant kind %s", k.Kind)
		}
	}

	for _, group := range []struct {
		keyword string
		decls   []decl
	}{
		{"const", consts},
		{"var", vars},
	} {
		if len(group.decls) == 0 {
			continue
		}
		u.P("%s (", group.keyword)
		for _, d := range group.decls {
			u.Docs(d.docs)
			u.P("%s", d.line)
		}
		u.P(")")
		u.P("")
	}
	return u, nil
}
