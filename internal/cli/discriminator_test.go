package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscriminator_JSON(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		preimage string
		hex      string
		bytes    []int
	}{
		{"instruction", []string{"initialize"}, "global:initialize", "afaf6d1f0d989bed", []int{175, 175, 109, 31, 13, 152, 155, 237}},
		{"instruction snake cased", []string{"depositSol"}, "global:deposit_sol", "6c514e757d9b38c8", []int{108, 81, 78, 117, 125, 155, 56, 200}},
		{"account keeps casing", []string{"Escrow", "--kind", "account"}, "account:Escrow", "1fd57bbbba16da9b", []int{31, 213, 123, 187, 186, 22, 218, 155}},
		{"event", []string{"Settled", "--kind", "event"}, "event:Settled", "e8d228118e7c91ee", []int{232, 210, 40, 17, 142, 124, 145, 238}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--format", "json", "discriminator"}, tt.args...)
			stdout, _, err := execute(t, args...)
			require.NoError(t, err)

			var res DiscriminatorResult
			resp := decode(t, stdout, &res)
			assert.Equal(t, "ok", resp.Status)
			assert.Equal(t, tt.preimage, res.Preimage)
			assert.Equal(t, tt.hex, res.Hex)
			assert.Equal(t, tt.bytes, res.Bytes)
		})
	}
}

func TestDiscriminator_Text(t *testing.T) {
	stdout, _, err := execute(t, "discriminator", "initialize")
	require.NoError(t, err)
	assert.Contains(t, stdout, "global:initialize")
	assert.Contains(t, stdout, "afaf6d1f0d989bed")
	assert.Contains(t, stdout, "[175 175 109 31 13 152 155 237]")
}

func TestDiscriminator_InvalidKind(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "discriminator", "initialize", "--kind", "type")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decode(t, stdout, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidArgument, resp.Error.Code)
}
