package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhairuihao/anchor-src-gen/internal/store"
	"github.com/zhairuihao/anchor-src-gen/internal/testutil"
)

// seedHistory records three runs: escrow ok, vault skipped, escrow failed.
func seedHistory(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "history.db")
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	st, err := store.Open(db,
		store.WithIDGenerator(testutil.NewFixedIDGenerator("run")),
		store.WithNow(func() time.Time { return now }))
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	for _, r := range []store.Run{
		{Program: "escrow", Package: "escrow", Source: "file escrow.json", Status: store.StatusOK, Files: []string{"escrow/escrow.go", "escrow/idl.json"}},
		{Program: "vault", Package: "vault", Source: "program Vault111", Status: store.StatusSkipped, Error: "no idl"},
		{Program: "escrow", Package: "escrow", Source: "file escrow.json", Status: store.StatusFailed, Error: "idl malformed"},
	} {
		_, err := st.RecordRun(ctx, r)
		require.NoError(t, err)
	}
	return db
}

func TestHistory_List(t *testing.T) {
	db := seedHistory(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"all newest first", nil, []string{"run-0003", "run-0002", "run-0001"}},
		{"by program", []string{"--program", "escrow"}, []string{"run-0003", "run-0001"}},
		{"limited", []string{"--limit", "1"}, []string{"run-0003"}},
		{"unlimited", []string{"--limit", "0"}, []string{"run-0003", "run-0002", "run-0001"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--format", "json", "history", "--store", db}, tt.args...)
			stdout, _, err := execute(t, args...)
			require.NoError(t, err)

			var runs []HistoryEntry
			decode(t, stdout, &runs)
			ids := make([]string, len(runs))
			for i, r := range runs {
				ids[i] = r.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestHistory_Get(t *testing.T) {
	db := seedHistory(t)

	stdout, _, err := execute(t, "--format", "json", "history", "run-0001", "--store", db)
	require.NoError(t, err)
	var runs []HistoryEntry
	decode(t, stdout, &runs)
	require.Len(t, runs, 1)
	assert.Equal(t, int64(1), runs[0].Seq)
	assert.Equal(t, []string{"escrow/escrow.go", "escrow/idl.json"}, runs[0].Files)
	assert.Equal(t, "2024-01-01T12:00:00Z", runs[0].CreatedAt)

	stdout, _, err = execute(t, "--format", "json", "history", "run-0009", "--store", db)
	require.Error(t, err)
	resp := decode(t, stdout, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeNotFound, resp.Error.Code)
}

func TestHistory_Text(t *testing.T) {
	db := seedHistory(t)

	stdout, _, err := execute(t, "history", "--store", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✗ #3 2024-01-01T12:00:00Z escrow (file escrow.json) run-0003: idl malformed")
	assert.Contains(t, stdout, "! #2 2024-01-01T12:00:00Z vault (program Vault111) run-0002: skipped: no idl")
	assert.Contains(t, stdout, "✓ #1 2024-01-01T12:00:00Z escrow (file escrow.json) run-0001: 2 files")
}

func TestHistory_Errors(t *testing.T) {
	t.Run("missing store", func(t *testing.T) {
		stdout, _, err := execute(t, "--format", "json", "history", "--store", filepath.Join(t.TempDir(), "none.db"))
		require.Error(t, err)
		resp := decode(t, stdout, nil)
		require.NotNil(t, resp.Error)
		assert.Equal(t, CodeReadFailed, resp.Error.Code)
	})

	t.Run("negative limit", func(t *testing.T) {
		db := seedHistory(t)
		stdout, _, err := execute(t, "--format", "json", "history", "--store", db, "--limit", "-1")
		require.Error(t, err)
		resp := decode(t, stdout, nil)
		require.NotNil(t, resp.Error)
		assert.Equal(t, CodeInvalidArgument, resp.Error.Code)
	})

	t.Run("empty", func(t *testing.T) {
		db := filepath.Join(t.TempDir(), "empty.db")
		st, err := store.Open(db)
		require.NoError(t, err)
		require.NoError(t, st.Close())

		stdout, _, err := execute(t, "history", "--store", db)
		require.NoError(t, err)
		assert.Equal(t, "No runs recorded\n", stdout)
	})
}

func TestClassifyLoad(t *testing.T) {
	le := classifyLoad(&LoadError{Code: CodeStoreFailed, Message: "x"}, CodeReadFailed)
	assert.Equal(t, CodeStoreFailed, le.Code)
	assert.Equal(t, "E008: x", le.Error())
}
