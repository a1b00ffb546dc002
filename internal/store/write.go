package store

import (
	"context"
	"fmt"
	"time"
)

// Run statuses.
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Run is one generation attempt for one program.
type Run struct {
	ID      string
	Seq     int64
	Program string
	Package string
	// Source describes where the document came from.
	Source       string
	Status       string
	IDLDigest    string
	OutputDigest string
	Files        []string
	Error        string
	CreatedAt    time.Time
}

// RecordRun appends run and returns it with ID, Seq and CreatedAt set.
// A preset ID is kept.
func (s *Store) RecordRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = s.ids.NewID()
	}
	if run.Status == "" {
		run.Status = StatusOK
	}
	run.CreatedAt = s.now().UTC().Truncate(time.Millisecond)

	files, err := marshalFiles(run.Files)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO runs
		(id, seq, program, package, source, status, idl_digest, output_digest, files, error, created_at)
		SELECT ?, COALESCE(MAX(seq), 0) + 1, ?, ?, ?, ?, ?, ?, ?, ?, ? FROM runs
		RETURNING seq
	`,
		run.ID,
		run.Program,
		run.Package,
		run.Source,
		run.Status,
		run.IDLDigest,
		run.OutputDigest,
		files,
		run.Error,
		run.CreatedAt.UnixMilli(),
	).Scan(&run.Seq)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	return run, nil
}

// CacheIDL stores doc as the latest document of source, replacing any
// earlier entry.
func (s *Store) CacheIDL(ctx context.Context, source, digest string, doc []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO idl_cache (source, digest, document, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			digest = excluded.digest,
			document = excluded.document,
			fetched_at = excluded.fetched_at
	`, source, digest, doc, s.now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("cache idl: %w", err)
	}
	return nil
}
