package pda

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhairuihao/anchor-src-gen/internal/idl"
	"github.com/zhairuihao/anchor-src-gen/internal/known"
	"github.com/zhairuihao/anchor-src-gen/internal/testutil"
)

func TestCollect_Escrow(t *testing.T) {
	doc, err := idl.Parse(testutil.EscrowIDL())
	require.NoError(t, err)

	fns, err := Collect(doc, known.Default())
	require.NoError(t, err)
	require.Len(t, fns, 1, "identical rules across instructions collapse")

	fn := fns[0]
	assert.Equal(t, "EscrowPDA", fn.Name)
	assert.Nil(t, fn.Program)
	require.Len(t, fn.Params, 1)
	assert.Equal(t, Param{Name: "authorityAccount", Kind: ParamPublicKey, Path: "authority"}, fn.Params[0])

	require.Len(t, fn.Seeds, 2)
	assert.Equal(t, SeedText, fn.Seeds[0].Kind)
	assert.Equal(t, "escrow", fn.Seeds[0].Text)
	assert.Equal(t, SeedParam, fn.Seeds[1].Kind)
	assert.Equal(t, "authorityAccount", fn.Seeds[1].Param.Name)
}

func TestCompile_Seeds(t *testing.T) {
	table := known.Default()

	tests := []struct {
		name string
		seed idl.Seed
		kind SeedKind
	}{
		{"ascii", idl.Seed{Kind: idl.SeedConst, Value: []byte("vault")}, SeedText},
		{"binary", idl.Seed{Kind: idl.SeedConst, Value: []byte{0, 1, 255}}, SeedBytes},
		{"newline is binary", idl.Seed{Kind: idl.SeedConst, Value: []byte("a\nb")}, SeedBytes},
		{"known address", idl.Seed{Kind: idl.SeedConst, Value: solana.TokenProgramID.Bytes()}, SeedKnown},
		{"account", idl.Seed{Kind: idl.SeedAccount, Path: "mint"}, SeedParam},
		{"arg", idl.Seed{Kind: idl.SeedArg, Path: "index"}, SeedParam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := Compile("vault", &idl.PDA{Seeds: []idl.Seed{tt.seed}}, table)
			require.NoError(t, err)
			require.Len(t, fn.Seeds, 1)
			assert.Equal(t, tt.kind, fn.Seeds[0].Kind)
		})
	}
}

func TestCompile_Params(t *testing.T) {
	rule := &idl.PDA{Seeds: []idl.Seed{
		{Kind: idl.SeedAccount, Path: "pool.mint"},
		{Kind: idl.SeedArg, Path: "args.index"},
		{Kind: idl.SeedAccount, Path: "pool.mint"},
		{Kind: idl.SeedArg, Path: "type"},
	}}
	fn, err := Compile("position", rule, known.Default())
	require.NoError(t, err)

	require.Len(t, fn.Params, 3, "repeated seed paths share one parameter")
	assert.Equal(t, "poolMintAccount", fn.Params[0].Name)
	assert.Equal(t, "argsIndex", fn.Params[1].Name)
	assert.Equal(t, ParamBytes, fn.Params[1].Kind)
	assert.Equal(t, "_type", fn.Params[2].Name, "reserved words are prefixed")
	assert.Same(t, fn.Seeds[0].Param, fn.Seeds[2].Param)
}

func TestCompile_Program(t *testing.T) {
	t.Run("known const program", func(t *testing.T) {
		rule := &idl.PDA{
			Seeds:   []idl.Seed{{Kind: idl.SeedConst, Value: []byte("ata")}},
			Program: &idl.Seed{Kind: idl.SeedConst, Value: solana.SPLAssociatedTokenAccountProgramID.Bytes()},
		}
		fn, err := Compile("ata", rule, known.Default())
		require.NoError(t, err)
		require.NotNil(t, fn.Program)
		assert.Equal(t, "solana.SPLAssociatedTokenAccountProgramID", fn.Program.Expr())
	})

	t.Run("unknown const program", func(t *testing.T) {
		addr := solana.MustPublicKeyFromBase58("Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS")
		rule := &idl.PDA{Program: &idl.Seed{Kind: idl.SeedConst, Value: addr.Bytes()}}
		fn, err := Compile("other", rule, known.Default())
		require.NoError(t, err)
		assert.Equal(t, `solana.MustPublicKeyFromBase58("Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS")`, fn.Program.Expr())
	})

	t.Run("account program stays a parameter", func(t *testing.T) {
		rule := &idl.PDA{Program: &idl.Seed{Kind: idl.SeedAccount, Path: "program"}}
		fn, err := Compile("other", rule, known.Default())
		require.NoError(t, err)
		assert.Nil(t, fn.Program)
	})

	t.Run("short const program", func(t *testing.T) {
		rule := &idl.PDA{Program: &idl.Seed{Kind: idl.SeedConst, Value: []byte{1, 2}}}
		_, err := Compile("other", rule, known.Default())
		require.Error(t, err)
		assert.True(t, idl.IsKind(err, idl.KindMalformed))
	})
}

func TestCollect_Suffixes(t *testing.T) {
	ruleA := &idl.PDA{Seeds: []idl.Seed{{Kind: idl.SeedConst, Value: []byte("a")}}}
	ruleB := &idl.PDA{Seeds: []idl.Seed{{Kind: idl.SeedConst, Value: []byte("b")}}}
	ruleC := &idl.PDA{Seeds: []idl.Seed{{Kind: idl.SeedConst, Value: []byte("c")}}}
	doc := &idl.Document{Instructions: []idl.Instruction{
		{Name: "one", Accounts: []idl.AccountMeta{{Name: "state", PDA: ruleA}}},
		{Name: "two", Accounts: []idl.AccountMeta{{Name: "state", PDA: ruleB}}},
		{Name: "three", Accounts: []idl.AccountMeta{{Name: "state", PDA: ruleA}, {Name: "state1", PDA: ruleC}}},
	}}

	fns, err := Collect(doc, known.Default())
	require.NoError(t, err)

	var names []string
	for _, fn := range fns {
		names = append(names, fn.Name)
	}
	assert.Equal(t, []string{"State11PDA", "State1PDA", "StatePDA"}, names)
}
