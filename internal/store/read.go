package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Lookup returns the cached optimization for a source hash. found is false
// when the source has never been cached.
func (s *Store) Lookup(ctx context.Context, sourceHash string) (o Optimization, found bool, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT source_hash, source_len, output, output_len, seq
		FROM optimizations
		WHERE source_hash = ?
	`, sourceHash).Scan(&o.SourceHash, &o.SourceLen, &o.Output, &o.OutputLen, &o.Seq)

	if errors.Is(err, sql.ErrNoRows) {
		return Optimization{}, false, nil
	}
	if err != nil {
		return Optimization{}, false, fmt.Errorf("lookup optimization: %w", err)
	}
	return o, true, nil
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_hash, label, report, seq
		FROM runs
		ORDER BY seq DESC, id COLLATE BINARY ASC
		LIMIT ?
	`, limit)
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

// GetRun returns the run with the given ID. found is false if no such run
// exists.
func (s *Store) GetRun(ctx context.Context, id string) (r Run, found bool, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source_hash, label, report, seq
		FROM runs
		WHERE id = ?
	`, id)

	r, err = scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, err
	}
	return r, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	var reportJSON string
	if err := row.Scan(&r.ID, &r.SourceHash, &r.Label, &reportJSON, &r.Seq); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	report, err := unmarshalReport(reportJSON)
	if err != nil {
		return Run{}, err
	}
	r.Report = report
	return r, nil
}
