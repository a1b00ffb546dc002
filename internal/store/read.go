package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// RunFilter narrows ListRuns.
type RunFilter struct {
	// Program restricts to one program name. Empty matches all.
	Program string
	// Limit caps the number of rows. Zero means no limit.
	Limit int
}

// ListRuns returns runs newest first: ORDER BY seq DESC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if no runs match.
func (s *Store) ListRuns(ctx context.Context, f RunFilter) ([]Run, error) {
	query := `
		SELECT id, seq, program, package, source, status, idl_digest, output_digest, files, error, created_at
		FROM runs
		WHERE (? = '' OR program = ?)
		ORDER BY seq DESC, id COLLATE BINARY ASC`
	args := []any{f.Program, f.Program}
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LatestRun returns the newest run of program, or ErrNotFound.
func (s *Store) LatestRun(ctx context.Context, program string) (Run, error) {
	runs, err := s.ListRuns(ctx, RunFilter{Program: program, Limit: 1})
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, fmt.Errorf("%w: no runs for %s", ErrNotFound, program)
	}
	return runs[0], nil
}

// GetRun returns the run with id, or ErrNotFound.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, program, package, source, status, idl_digest, output_digest, files, error, created_at
		FROM runs
		WHERE id = ?
	`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: run %s", ErrNotFound, id)
	}
	return r, err
}

// CachedIDL is one idl_cache row.
type CachedIDL struct {
	Source    string
	Digest    string
	Document  []byte
	FetchedAt time.Time
}

// GetCachedIDL returns the cached document of source, or ErrNotFound.
func (s *Store) GetCachedIDL(ctx context.Context, source string) (CachedIDL, error) {
	var c CachedIDL
	var fetched int64
	err := s.db.QueryRowContext(ctx, `
		SELECT source, digest, document, fetched_at FROM idl_cache WHERE source = ?
	`, source).Scan(&c.Source, &c.Digest, &c.Document, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return CachedIDL{}, fmt.Errorf("%w: idl for %s", ErrNotFound, source)
	}
	if err != nil {
		return CachedIDL{}, fmt.Errorf("query idl cache: %w", err)
	}
	c.FetchedAt = time.UnixMilli(fetched).UTC()
	return c, nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var files string
	var created int64
	err := sc.Scan(&r.ID, &r.Seq, &r.Program, &r.Package, &r.Source, &r.Status,
		&r.IDLDigest, &r.OutputDigest, &files, &r.Error, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if r.Files, err = unmarshalFiles(files); err != nil {
		return Run{}, err
	}
	r.CreatedAt = time.UnixMilli(created).UTC()
	return r, nil
}
