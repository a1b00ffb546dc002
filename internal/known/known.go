// Package known maps well-known program and sysvar addresses to the
// solana-go identifiers generated code references instead of taking them as
// parameters.
package known

import (
	"sort"

	"github.com/gagliardetto/solana-go"
)

// Entry is one well-known address.
type Entry struct {
	// Name is the canonical member name, e.g. systemProgram.
	Name string
	// Expr is the Go expression generated code uses, e.g. solana.SystemProgramID.
	Expr    string
	Address solana.PublicKey
}

// Table indexes entries by address.
type Table struct {
	byAddress map[solana.PublicKey]Entry
}

// Default returns the table of programs and sysvars exported by solana-go.
func Default() *Table {
	return NewTable([]Entry{
		{"systemProgram", "solana.SystemProgramID", solana.SystemProgramID},
		{"tokenProgram", "solana.TokenProgramID", solana.TokenProgramID},
		{"token2022Program", "solana.Token2022ProgramID", solana.Token2022ProgramID},
		{"associatedTokenProgram", "solana.SPLAssociatedTokenAccountProgramID", solana.SPLAssociatedTokenAccountProgramID},
		{"memoProgram", "solana.MemoProgramID", solana.MemoProgramID},
		{"computeBudgetProgram", "solana.ComputeBudget", solana.ComputeBudget},
		{"tokenMetadataProgram", "solana.TokenMetadataProgramID", solana.TokenMetadataProgramID},
		{"bpfLoaderUpgradeableProgram", "solana.BPFLoaderUpgradeableProgramID", solana.BPFLoaderUpgradeableProgramID},
		{"nativeMint", "solana.WrappedSol", solana.WrappedSol},
		{"rent", "solana.SysVarRentPubkey", solana.SysVarRentPubkey},
		{"clock", "solana.SysVarClockPubkey", solana.SysVarClockPubkey},
		{"instructions", "solana.SysVarInstructionsPubkey", solana.SysVarInstructionsPubkey},
		{"slotHashes", "solana.SysVarSlotHashesPubkey", solana.SysVarSlotHashesPubkey},
	})
}

// NewTable builds a table from entries. Later entries replace earlier ones
// with the same address.
func NewTable(entries []Entry) *Table {
	t := &Table{byAddress: make(map[solana.PublicKey]Entry, len(entries))}
	for _, e := range entries {
		t.byAddress[e.Address] = e
	}
	return t
}

// Lookup finds a base58 address. Invalid addresses are simply unknown.
func (t *Table) Lookup(address string) (Entry, bool) {
	pk, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return Entry{}, false
	}
	e, ok := t.byAddress[pk]
	return e, ok
}

// LookupBytes finds a raw 32-byte address.
func (t *Table) LookupBytes(b []byte) (Entry, bool) {
	if len(b) != solana.PublicKeyLength {
		return Entry{}, false
	}
	e, ok := t.byAddress[solana.PublicKeyFromBytes(b)]
	return e, ok
}

// Entries returns every entry sorted by name.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.byAddress))
	for _, e := range t.byAddress {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
