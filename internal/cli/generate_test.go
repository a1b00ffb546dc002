package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhairuihao/anchor-src-gen/internal/testutil"
)

func TestGenerate_JSON(t *testing.T) {
	dir := t.TempDir()
	idlPath := writeFile(t, dir, "escrow.json", testutil.EscrowIDL())
	out := filepath.Join(dir, "out")

	stdout, _, err := execute(t, "--format", "json", "generate", idlPath, "-o", out)
	require.NoError(t, err)

	var res GenerateResult
	resp := decode(t, stdout, &res)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "escrow", res.Program)
	assert.Equal(t, "escrow", res.Package)
	assert.Equal(t, filepath.Join(out, "escrow"), res.Dir)
	assert.Len(t, res.Files, 9)
	assert.Contains(t, res.Files, "escrow/escrow_program.go")
	assert.Len(t, res.Digest, 64)
	assert.Empty(t, res.RunID)

	raw, err := os.ReadFile(filepath.Join(out, "escrow", "idl.json"))
	require.NoError(t, err)
	assert.Equal(t, testutil.EscrowIDL(), raw)
}

func TestGenerate_Text(t *testing.T) {
	dir := t.TempDir()
	idlPath := writeFile(t, dir, "vault.json", testutil.LegacyIDL())

	stdout, _, err := execute(t, "generate", idlPath, "-o", filepath.Join(dir, "out"), "--package", "legacyvault")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ Generated package legacyvault")
	assert.Contains(t, stdout, "(5 files)")
	assert.DirExists(t, filepath.Join(dir, "out", "legacyvault"))
}

func TestGenerate_RuntimeImport(t *testing.T) {
	dir := t.TempDir()
	idlPath := writeFile(t, dir, "escrow.json", testutil.EscrowIDL())
	out := filepath.Join(dir, "out")

	_, _, err := execute(t, "generate", idlPath, "-o", out, "--runtime", "example.com/fork/borsh")
	require.NoError(t, err)

	src, err := os.ReadFile(filepath.Join(out, "escrow", "escrow.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), `"example.com/fork/borsh"`)
}

func TestGenerate_RecordsRun(t *testing.T) {
	dir := t.TempDir()
	idlPath := writeFile(t, dir, "escrow.json", testutil.EscrowIDL())
	db := filepath.Join(dir, "history.db")

	stdout, _, err := execute(t, "--format", "json", "generate", idlPath, "-o", filepath.Join(dir, "out"), "--store", db)
	require.NoError(t, err)
	var res GenerateResult
	decode(t, stdout, &res)
	require.NotEmpty(t, res.RunID)

	stdout, _, err = execute(t, "--format", "json", "history", "--store", db)
	require.NoError(t, err)
	var runs []HistoryEntry
	decode(t, stdout, &runs)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].ID)
	assert.Equal(t, "ok", runs[0].Status)
	assert.Equal(t, "file "+idlPath, runs[0].Source)
	assert.Equal(t, res.Digest, runs[0].OutputDigest)
	assert.Equal(t, res.IDLDigest, runs[0].IDLDigest)
	assert.Equal(t, res.Files, runs[0].Files)
}

func TestGenerate_Errors(t *testing.T) {
	dir := t.TempDir()
	unsupported := []byte(`{
		"address": "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS",
		"metadata": {"name": "bad", "version": "0.1.0"},
		"instructions": [],
		"accounts": [{"name": "Mode", "discriminator": [1, 2, 3, 4, 5, 6, 7, 8]}],
		"types": [{"name": "Mode", "type": {"kind": "enum", "variants": [{"name": "A"}]}}]
	}`)

	tests := []struct {
		name string
		path string
		code string
	}{
		{"malformed", writeFile(t, dir, "broken.json", []byte("{")), CodeMalformed},
		{"unsupported", writeFile(t, dir, "bad.json", unsupported), CodeUnsupported},
		{"missing", filepath.Join(dir, "absent.json"), CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, "--format", "json", "generate", tt.path, "-o", filepath.Join(dir, "out"))
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			resp := decode(t, stdout, nil)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestGenerate_FailedRunRecorded(t *testing.T) {
	dir := t.TempDir()
	idlPath := writeFile(t, dir, "broken.json", []byte(`{"instructions": []}`))
	db := filepath.Join(dir, "history.db")

	_, _, err := execute(t, "generate", idlPath, "-o", filepath.Join(dir, "out"), "--store", db)
	require.Error(t, err)

	stdout, _, err := execute(t, "--format", "json", "history", "--store", db)
	require.NoError(t, err)
	var runs []HistoryEntry
	decode(t, stdout, &runs)
	require.Len(t, runs, 1)
	assert.Equal(t, "failed", runs[0].Status)
	assert.Contains(t, runs[0].Error, "missing program name")
}

func TestParseSource(t *testing.T) {
	dir := t.TempDir()
	existing := writeFile(t, dir, "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS", []byte("{}"))
	exists := func(p string) bool { return p == existing }

	tests := []struct {
		name         string
		arg          string
		allowProgram bool
		wantPath     string
		wantURL      string
		wantProgram  string
	}{
		{"https", "https://example.com/idl.json", true, "", "https://example.com/idl.json", ""},
		{"http", "http://localhost/idl.json", false, "", "http://localhost/idl.json", ""},
		{"path", "idl/escrow.json", true, "idl/escrow.json", "", ""},
		{"program", "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS", true, "", "", "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS"},
		{"program not allowed", "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS", false, "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS", "", ""},
		{"existing file wins", existing, true, existing, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := parseSource(tt.arg, tt.allowProgram, exists)
			assert.Equal(t, tt.wantPath, src.Path)
			assert.Equal(t, tt.wantURL, src.URL)
			assert.Equal(t, tt.wantProgram, src.Program)
		})
	}
}
