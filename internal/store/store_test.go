package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhairuihao/anchor-src-gen/internal/testutil"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// createTestStore opens a store with deterministic ids and time.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithIDGenerator(testutil.NewFixedIDGenerator("run")),
		WithNow(func() time.Time { return epoch }),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		require.NoError(t, s.Close())
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	for _, table := range []string{"runs", "idl_cache"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		assert.NoError(t, err, "table %q not found after idempotent opens", table)
	}

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
}

func TestRecordRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.RecordRun(ctx, Run{
		Program:      "escrow",
		Package:      "escrow",
		Source:       "file escrow.json",
		IDLDigest:    "abc",
		OutputDigest: "def",
		Files:        []string{"escrow/escrow.go", "escrow/idl.json"},
	})
	require.NoError(t, err)
	assert.Equal(t, "run-0001", first.ID)
	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, StatusOK, first.Status)
	assert.Equal(t, epoch, first.CreatedAt)

	second, err := s.RecordRun(ctx, Run{Program: "vault", Package: "vault", Source: "program X", Status: StatusSkipped, Error: "idl not found"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Seq)

	got, err := s.GetRun(ctx, "run-0001")
	require.NoError(t, err)
	assert.Equal(t, first, got)

	got, err = s.GetRun(ctx, "run-0002")
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.Files, "nil files round-trip as empty")
	assert.Equal(t, "idl not found", got.Error)

	_, err = s.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordRun_DuplicateID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.RecordRun(ctx, Run{ID: "fixed", Program: "a", Package: "a", Source: "x"})
	require.NoError(t, err)
	_, err = s.RecordRun(ctx, Run{ID: "fixed", Program: "a", Package: "a", Source: "x"})
	assert.Error(t, err)
}

func TestRecordRun_InvalidStatus(t *testing.T) {
	s := createTestStore(t)
	_, err := s.RecordRun(context.Background(), Run{Program: "a", Package: "a", Source: "x", Status: "weird"})
	assert.Error(t, err)
}

func TestListRuns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, p := range []string{"escrow", "vault", "escrow"} {
		_, err := s.RecordRun(ctx, Run{Program: p, Package: p, Source: "file"})
		require.NoError(t, err)
	}

	tests := []struct {
		name   string
		filter RunFilter
		want   []string
	}{
		{"all newest first", RunFilter{}, []string{"run-0003", "run-0002", "run-0001"}},
		{"by program", RunFilter{Program: "escrow"}, []string{"run-0003", "run-0001"}},
		{"limit", RunFilter{Limit: 1}, []string{"run-0003"}},
		{"no match", RunFilter{Program: "none"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := s.ListRuns(ctx, tt.filter)
			require.NoError(t, err)
			ids := make([]string, len(runs))
			for i, r := range runs {
				ids[i] = r.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	latest, err := s.LatestRun(ctx, "vault")
	require.NoError(t, err)
	assert.Equal(t, "run-0002", latest.ID)

	_, err = s.LatestRun(ctx, "none")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCacheIDL(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.GetCachedIDL(ctx, "program X")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.CacheIDL(ctx, "program X", "d1", []byte(`{"v":1}`)))
	require.NoError(t, s.CacheIDL(ctx, "program X", "d2", []byte(`{"v":2}`)))

	c, err := s.GetCachedIDL(ctx, "program X")
	require.NoError(t, err)
	assert.Equal(t, "d2", c.Digest, "later fetches replace the entry")
	assert.Equal(t, []byte(`{"v":2}`), c.Document)
	assert.Equal(t, epoch, c.FetchedAt)
}

func TestMarshalFiles(t *testing.T) {
	s, err := marshalFiles([]string{"a/<b>.go"})
	require.NoError(t, err)
	assert.Equal(t, `["a/<b>.go"]`, s)

	s, err = marshalFiles(nil)
	require.NoError(t, err)
	assert.Equal(t, `[]`, s)

	_, err = unmarshalFiles("{")
	assert.Error(t, err)
}
