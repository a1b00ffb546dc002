package idl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhairuihao/anchor-src-gen/internal/testutil"
)

func TestParse_Escrow(t *testing.T) {
	doc, err := Parse(testutil.EscrowIDL())
	require.NoError(t, err)

	assert.Equal(t, "escrow", doc.Name)
	assert.Equal(t, "0.1.0", doc.Version, "version falls back to metadata")
	assert.Equal(t, "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS", doc.Address)
	assert.Equal(t, []Dependency{{Name: "anchor-lang", Version: "0.30.1"}}, doc.Metadata.Dependencies)
	assert.Equal(t, "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS", doc.Metadata.Deployments.Devnet)
	assert.NotEmpty(t, doc.Raw)

	require.Len(t, doc.Instructions, 2)
	initIx := doc.Instructions[0]
	assert.Equal(t, "initialize", initIx.Name)
	assert.Equal(t, []byte{175, 175, 109, 31, 13, 152, 155, 237}, initIx.Discriminator)
	require.Len(t, initIx.Accounts, 3)
	assert.True(t, initIx.Accounts[0].Writable)
	assert.True(t, initIx.Accounts[0].Signer)
	assert.Equal(t, "systemProgram", initIx.Accounts[2].Name)
	assert.Equal(t, "11111111111111111111111111111111", initIx.Accounts[2].Address)

	pda := initIx.Accounts[1].PDA
	require.NotNil(t, pda)
	require.Len(t, pda.Seeds, 2)
	assert.Equal(t, SeedConst, pda.Seeds[0].Kind)
	assert.Equal(t, []byte("escrow"), pda.Seeds[0].Value)
	assert.Equal(t, SeedAccount, pda.Seeds[1].Kind)
	assert.Equal(t, "authority", pda.Seeds[1].Path)

	settle := doc.Instructions[1]
	assert.Nil(t, settle.Discriminator)
	assert.Equal(t, []string{"escrow"}, settle.Accounts[0].Relations)
	require.Len(t, settle.Args, 2)
	assert.Equal(t, &Defined{Name: "Side"}, settle.Args[0].Type)
	assert.Equal(t, &Option{Elem: &Defined{Name: "Outcome"}}, settle.Args[1].Type)

	require.Len(t, doc.Accounts, 1)
	acct := doc.Accounts[0]
	assert.Equal(t, "Escrow", acct.Name)
	require.NotNil(t, acct.Type, "account definition attached from types")
	assert.Len(t, acct.Type.(*Struct).Fields, 6)

	require.Len(t, doc.Events, 1)
	assert.IsType(t, &Struct{}, doc.Events[0].Type)

	require.Len(t, doc.Errors, 2)
	assert.Equal(t, ErrorCode{Code: 6000, Name: "AmountTooSmall", RawName: "AmountTooSmall", Msg: "Amount too small"}, doc.Errors[0])

	require.Len(t, doc.Constants, 3)
	assert.Equal(t, "EscrowSeed", doc.Constants[0].Name)
	assert.Equal(t, []byte("escrow"), doc.Constants[0].Bytes)
	assert.Equal(t, "MaxAmount", doc.Constants[1].Name)
	assert.Equal(t, int64(1_000_000), doc.Constants[1].Int.Int64())
	assert.Equal(t, "escrow", doc.Constants[2].Str)

	outcome := doc.Types[2].Type.(*Enum)
	require.Len(t, outcome.Variants, 2)
	assert.True(t, outcome.Variants[0].Tuple())
	assert.False(t, outcome.Variants[1].HasPayload())
	assert.True(t, outcome.HasPayloads())
}

func TestParse_Legacy(t *testing.T) {
	doc, err := Parse(testutil.LegacyIDL())
	require.NoError(t, err)

	assert.Equal(t, "vault", doc.Name)
	require.Len(t, doc.Instructions, 1)
	ix := doc.Instructions[0]
	assert.Equal(t, "depositSol", ix.Name)
	assert.Equal(t, "depositSol", ix.RawName)

	names := make([]string, len(ix.Accounts))
	for i, m := range ix.Accounts {
		names[i] = m.Name
	}
	assert.Equal(t, []string{"user", "vault", "poolState", "poolAuthorityKey", "rent"}, names)
	assert.Equal(t, []string{"Vault state"}, ix.Accounts[1].Docs, "desc becomes docs")
	assert.True(t, ix.Accounts[0].Writable)
	assert.True(t, ix.Accounts[0].Signer)
	assert.False(t, ix.Accounts[1].Signer)

	grid := ix.Args[3].Type.(*Array)
	assert.Equal(t, 2, grid.Depth())
	assert.Equal(t, 3, grid.Count)
	assert.Equal(t, &Primitive{Name: U8}, grid.Leaf())

	vault := doc.Accounts[0].Type.(*Struct)
	assert.Equal(t, &Primitive{Name: PublicKey}, vault.Fields[0].Type, "publicKey alias")
	assert.Equal(t, &Option{Elem: &Primitive{Name: PublicKey}}, vault.Fields[3].Type)

	require.Len(t, doc.Events, 1)
	ev := doc.Events[0].Type.(*Struct)
	assert.Len(t, ev.Fields, 2)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		json string
		kind Kind
		msg  string
	}{
		{
			name: "unknown top-level field",
			json: `{"name":"p","bogus":1}`,
			kind: KindMalformed,
			msg:  "unknown field(s) bogus",
		},
		{
			name: "missing name",
			json: `{"instructions":[]}`,
			kind: KindMalformed,
			msg:  "missing program name",
		},
		{
			name: "unknown type tag",
			json: `{"name":"p","types":[{"name":"A","type":{"kind":"struct","fields":[{"name":"x","type":"u63"}]}}]}`,
			kind: KindMalformed,
			msg:  `unknown type tag "u63"`,
		},
		{
			name: "wrong field shape",
			json: `{"name":"p","instructions":{"name":"x"}}`,
			kind: KindMalformed,
			msg:  "expected list",
		},
		{
			name: "array depth three",
			json: `{"name":"p","types":[{"name":"A","type":{"kind":"struct","fields":[{"name":"x","type":{"array":[{"array":[{"array":["u8",2]},2]},2]}}]}}]}`,
			kind: KindUnsupported,
			msg:  "array nesting depth 3 exceeds 2",
		},
		{
			name: "vector depth three",
			json: `{"name":"p","types":[{"name":"A","type":{"kind":"struct","fields":[{"name":"x","type":{"vec":{"vec":{"vec":"u8"}}}}]}}]}`,
			kind: KindUnsupported,
			msg:  "vector nesting depth 3 exceeds 2",
		},
		{
			name: "short discriminator",
			json: `{"name":"p","instructions":[{"name":"a","discriminator":[1,2,3],"accounts":[],"args":[]}]}`,
			kind: KindMalformed,
			msg:  "discriminator must be 8 bytes, got 3",
		},
		{
			name: "account without definition",
			json: `{"name":"p","accounts":[{"name":"Missing","discriminator":[1,2,3,4,5,6,7,8]}]}`,
			kind: KindUnresolved,
			msg:  `"Missing" not found`,
		},
		{
			name: "account and type collision",
			json: `{"name":"p","accounts":[{"name":"A","type":{"kind":"struct","fields":[]}}],"types":[{"name":"A","type":{"kind":"struct","fields":[]}}]}`,
			kind: KindMalformed,
			msg:  "defined account type name collision",
		},
		{
			name: "duplicate instruction",
			json: `{"name":"p","instructions":[{"name":"a","accounts":[],"args":[]},{"name":"a","accounts":[],"args":[]}]}`,
			kind: KindMalformed,
			msg:  `duplicate instruction name "a"`,
		},
		{
			name: "mixed variant fields",
			json: `{"name":"p","types":[{"name":"E","type":{"kind":"enum","variants":[{"name":"V","fields":["u8",{"name":"x","type":"u8"}]}]}}]}`,
			kind: KindUnsupported,
			msg:  "mixed named and unnamed fields",
		},
		{
			name: "unknown seed kind",
			json: `{"name":"p","instructions":[{"name":"a","accounts":[{"name":"x","pda":{"seeds":[{"kind":"magic"}]}}],"args":[]}]}`,
			kind: KindMalformed,
			msg:  `unknown seed kind "magic"`,
		},
		{
			name: "constant overflow",
			json: `{"name":"p","constants":[{"name":"X","type":"u8","value":"300"}]}`,
			kind: KindMalformed,
			msg:  "overflows u8",
		},
		{
			name: "generic type",
			json: `{"name":"p","types":[{"name":"A","generics":[{"kind":"type","name":"T"}],"type":{"kind":"struct","fields":[]}}]}`,
			kind: KindUnsupported,
			msg:  "generic type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.json))
			require.Error(t, err)
			assert.True(t, IsKind(err, tt.kind), "kind of %v", err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParse_DuplicateFieldNamesAreSuffixed(t *testing.T) {
	doc, err := Parse([]byte(`{"name":"p","types":[{"name":"A","type":{"kind":"struct","fields":[
		{"name":"x","type":"u8"},{"name":"x","type":"u16"},{"name":"y","type":"u8"}]}}]}`))
	require.NoError(t, err)

	fields := doc.Types[0].Type.(*Struct).Fields
	assert.Equal(t, "x", fields[0].Name)
	assert.Equal(t, "x1", fields[1].Name)
	assert.Equal(t, "y", fields[2].Name)
}

func TestParse_TypeTags(t *testing.T) {
	tests := []struct {
		json string
		want Type
	}{
		{`"u64"`, &Primitive{Name: U64}},
		{`"publicKey"`, &Primitive{Name: PublicKey}},
		{`{"vec":"u8"}`, &Vector{Elem: &Primitive{Name: U8}}},
		{`{"array":["u32",4]}`, &Array{Elem: &Primitive{Name: U32}, Count: 4}},
		{`{"option":"bool"}`, &Option{Elem: &Primitive{Name: Bool}}},
		{`{"defined":"my_type"}`, &Defined{Name: "MyType"}},
		{`{"defined":{"name":"a::b"}}`, &Defined{Name: "AB"}},
		{`{"kind":"alias","value":"i128"}`, &Primitive{Name: I128}},
	}
	for _, tt := range tests {
		t.Run(tt.json, func(t *testing.T) {
			got, err := parseType([]byte(tt.json), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
