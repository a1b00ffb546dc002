package known

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Lookup(t *testing.T) {
	table := Default()

	tests := []struct {
		address string
		expr    string
	}{
		{"11111111111111111111111111111111", "solana.SystemProgramID"},
		{"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA", "solana.TokenProgramID"},
		{"ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL", "solana.SPLAssociatedTokenAccountProgramID"},
		{"SysvarRent111111111111111111111111111111111", "solana.SysVarRentPubkey"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			e, ok := table.Lookup(tt.address)
			require.True(t, ok)
			assert.Equal(t, tt.expr, e.Expr)
		})
	}

	_, ok := table.Lookup("Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS")
	assert.False(t, ok)
	_, ok = table.Lookup("not base58 !!")
	assert.False(t, ok)
}

func TestLookupBytes(t *testing.T) {
	table := Default()

	e, ok := table.LookupBytes(solana.TokenProgramID.Bytes())
	require.True(t, ok)
	assert.Equal(t, "tokenProgram", e.Name)

	_, ok = table.LookupBytes([]byte("escrow"))
	assert.False(t, ok)
}

func TestEntries_Sorted(t *testing.T) {
	entries := NewTable([]Entry{
		{Name: "b", Address: solana.TokenProgramID},
		{Name: "a", Address: solana.SystemProgramID},
	}).Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Name)
	assert.Equal(t, "b", entries[1].Name)
}
