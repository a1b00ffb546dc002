package discriminator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhairuihao/anchor-src-gen/borsh"
	"github.com/zhairuihao/anchor-src-gen/internal/idl"
	"github.com/zhairuihao/anchor-src-gen/internal/testutil"
)

func TestForInstruction_Oracle(t *testing.T) {
	want := borsh.Discriminator{26, 2, 139, 159, 239, 195, 193, 9}
	assert.Equal(t, want, ForInstruction("wsolWrap"))
	assert.Equal(t, want, ForInstruction("wsol_wrap"), "snake and camel spellings agree")
}

func TestDerive_KnownValues(t *testing.T) {
	tests := []struct {
		name string
		got  borsh.Discriminator
		want borsh.Discriminator
	}{
		{"initialize", ForInstruction("initialize"), borsh.Discriminator{175, 175, 109, 31, 13, 152, 155, 237}},
		{"settle", ForInstruction("settle"), borsh.Discriminator{175, 42, 185, 87, 144, 131, 102, 212}},
		{"depositSol", ForInstruction("depositSol"), borsh.Discriminator{108, 81, 78, 117, 125, 155, 56, 200}},
		{"account Escrow", ForAccount("Escrow"), borsh.Discriminator{31, 213, 123, 187, 186, 22, 218, 155}},
		{"account Vault", ForAccount("Vault"), borsh.Discriminator{211, 8, 232, 43, 2, 152, 117, 119}},
		{"event Settled", ForEvent("Settled"), borsh.Discriminator{232, 210, 40, 17, 142, 124, 145, 238}},
		{"event Deposited", ForEvent("Deposited"), borsh.Discriminator{111, 141, 26, 45, 161, 35, 100, 57}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestDerive_Deterministic(t *testing.T) {
	assert.Equal(t, Namespaced("custom", "doThing"), Namespaced("custom", "doThing"))
	assert.Equal(t, Derive("custom:do_thing"), Namespaced("custom", "doThing"))
	assert.NotEqual(t, Namespaced("custom", "doThing"), ForInstruction("doThing"))
}

func TestResolve(t *testing.T) {
	derived := func() borsh.Discriminator { return borsh.Discriminator{9, 9, 9, 9, 9, 9, 9, 9} }

	t.Run("explicit wins", func(t *testing.T) {
		d, err := Resolve([]byte{1, 2, 3, 4, 5, 6, 7, 8}, derived)
		require.NoError(t, err)
		assert.Equal(t, borsh.Discriminator{1, 2, 3, 4, 5, 6, 7, 8}, d)
	})

	t.Run("derived when absent", func(t *testing.T) {
		d, err := Resolve(nil, derived)
		require.NoError(t, err)
		assert.Equal(t, derived(), d)
	})

	t.Run("wrong width", func(t *testing.T) {
		_, err := Resolve([]byte{1, 2}, derived)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be 8 bytes, got 2")
	})
}

func TestDocumentTags(t *testing.T) {
	doc, err := idl.Parse(testutil.EscrowIDL())
	require.NoError(t, err)

	settle, err := Instruction(doc.Instructions[1])
	require.NoError(t, err)
	assert.Equal(t, ForInstruction("settle"), settle)

	acct, err := Account(doc.Accounts[0])
	require.NoError(t, err)
	assert.Equal(t, ForAccount("Escrow"), acct, "explicit tag matches the derived one")

	ev, err := Event(doc.Events[0])
	require.NoError(t, err)
	assert.Equal(t, ForEvent("Settled"), ev)
}
