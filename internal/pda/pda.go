// Package pda compiles program derived address rules into derivation
// function descriptions and deduplicates them across instructions.
package pda

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/zhairuihao/anchor-src-gen/internal/idl"
	"github.com/zhairuihao/anchor-src-gen/internal/known"
)

// ParamKind is the Go type of a derivation parameter.
type ParamKind int

const (
	// ParamPublicKey is a solana.PublicKey, encoded with Bytes().
	ParamPublicKey ParamKind = iota
	// ParamBytes is a caller-encoded []byte.
	ParamBytes
)

// Param is one unresolved seed the caller supplies.
type Param struct {
	Name string
	Kind ParamKind
	Path string
}

// SeedKind selects how a compiled seed is produced.
type SeedKind int

const (
	// SeedText is a printable ASCII constant.
	SeedText SeedKind = iota
	// SeedBytes is a binary constant.
	SeedBytes
	// SeedKnown is a constant equal to a well-known address.
	SeedKnown
	// SeedParam reads a parameter.
	SeedParam
)

// Seed is one compiled seed in derivation order.
type Seed struct {
	Kind  SeedKind
	Text  string
	Bytes []byte
	Known known.Entry
	Param *Param
}

// Function describes a generated derivation helper.
type Function struct {
	// Name is the helper name, e.g. EscrowPDA.
	Name string
	// Account is the member name of the derived account.
	Account string
	Params  []Param
	Seeds   []Seed
	// Program is set when the rule fixes the owning program. Helpers without
	// it take the program id as their first parameter.
	Program *ProgramRef
	Rule    *idl.PDA
}

// ProgramRef is a fixed owning program.
type ProgramRef struct {
	Known   *known.Entry
	Address solana.PublicKey
}

// Expr returns the Go expression of the program key.
func (p *ProgramRef) Expr() string {
	if p.Known != nil {
		return p.Known.Expr
	}
	return fmt.Sprintf("solana.MustPublicKeyFromBase58(%q)", p.Address.String())
}

// Compile turns rule into a Function named after the derived account.
func Compile(account string, rule *idl.PDA, table *known.Table) (*Function, error) {
	fn := &Function{
		Name:    idl.Exported(account) + "PDA",
		Account: account,
		Rule:    rule,
	}
	params := make(map[string]*Param)
	for i, s := range rule.Seeds {
		switch s.Kind {
		case idl.SeedConst:
			fn.Seeds = append(fn.Seeds, constSeed(s.Value, table))
		case idl.SeedAccount, idl.SeedArg:
			p := paramFor(s)
			if p.Name == "" {
				return nil, idl.Malformed([]string{account, "pda", "seeds", fmt.Sprint(i)}, "invalid seed path %q", s.Path)
			}
			if prev, ok := params[p.Name]; ok {
				fn.Seeds = append(fn.Seeds, Seed{Kind: SeedParam, Param: prev})
				continue
			}
			params[p.Name] = &p
			fn.Params = append(fn.Params, p)
			fn.Seeds = append(fn.Seeds, Seed{Kind: SeedParam, Param: params[p.Name]})
		default:
			return nil, idl.Malformed([]string{account, "pda", "seeds", fmt.Sprint(i)}, "unknown seed kind %q", s.Kind)
		}
	}
	if rule.Program != nil && rule.Program.Kind == idl.SeedConst {
		if len(rule.Program.Value) != solana.PublicKeyLength {
			return nil, idl.Malformed([]string{account, "pda", "program"}, "program must be %d bytes, got %d", solana.PublicKeyLength, len(rule.Program.Value))
		}
		ref := &ProgramRef{Address: solana.PublicKeyFromBytes(rule.Program.Value)}
		if e, ok := table.LookupBytes(rule.Program.Value); ok {
			ref.Known = &e
		}
		fn.Program = ref
	}
	return fn, nil
}

func paramFor(s idl.Seed) Param {
	path := strings.ReplaceAll(s.Path, ".", "_")
	name := idl.MemberName(path)
	if name == "" {
		return Param{}
	}
	if s.Kind == idl.SeedAccount {
		return Param{Name: idl.Identifier(name + "Account"), Kind: ParamPublicKey, Path: s.Path}
	}
	return Param{Name: idl.Identifier(name), Kind: ParamBytes, Path: s.Path}
}

func constSeed(value []byte, table *known.Table) Seed {
	if e, ok := table.LookupBytes(value); ok {
		return Seed{Kind: SeedKnown, Known: e, Bytes: value}
	}
	if printable(value) {
		return Seed{Kind: SeedText, Text: string(value), Bytes: value}
	}
	return Seed{Kind: SeedBytes, Bytes: value}
}

// printable reports whether every byte is printable ASCII.
func printable(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < 0x20 || c >= 0x7F {
			return false
		}
	}
	return true
}

// Collect compiles every PDA rule of doc. Rules shared by several
// instructions are emitted once. A different rule for an already used
// account name gets the first free numeric suffix. The result is sorted by
// helper name.
func Collect(doc *idl.Document, table *known.Table) ([]*Function, error) {
	type entry struct {
		name string
		rule *idl.PDA
	}
	byAccount := make(map[string][]entry)
	taken := make(map[string]bool)
	var out []*Function

	for _, ix := range doc.Instructions {
		for _, meta := range ix.Accounts {
			if meta.PDA == nil {
				continue
			}
			existing := byAccount[meta.Name]
			duplicate := false
			for _, e := range existing {
				if reflect.DeepEqual(e.rule, meta.PDA) {
					duplicate = true
					break
				}
			}
			if duplicate {
				continue
			}
			name := meta.Name
			for n := 1; taken[name]; n++ {
				name = fmt.Sprintf("%s%d", meta.Name, n)
			}
			taken[name] = true
			byAccount[meta.Name] = append(existing, entry{name: name, rule: meta.PDA})

			fn, err := Compile(name, meta.PDA, table)
			if err != nil {
				return nil, fmt.Errorf("instruction %s: %w", ix.Name, err)
			}
			out = append(out, fn)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
