package store

import (
	"context"
	"fmt"
)

// PutOptimization caches an optimizer output. Uses ON CONFLICT DO NOTHING:
// a source already cached keeps its original entry and seq.
func (s *Store) PutOptimization(ctx context.Context, o Optimization) error {
	if o.SourceHash == "" {
		return fmt.Errorf("put optimization: source hash is required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO optimizations
		(source_hash, source_len, output, output_len, seq)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM optimizations))
		ON CONFLICT(source_hash) DO NOTHING
	`,
		o.SourceHash,
		o.SourceLen,
		o.Output,
		o.OutputLen,
	)
	if err != nil {
		return fmt.Errorf("put optimization: %w", err)
	}

	return nil
}

// RecordRun appends a run and returns it with its assigned ID and seq. The
// run's source must already be cached (foreign key constraint). A run with
// an empty ID gets one from the store's generator.
func (s *Store) RecordRun(ctx context.Context, r Run) (Run, error) {
	if r.ID == "" {
		r.ID = s.ids.Generate()
	}

	reportJSON, err := marshalReport(r.Report)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("record run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&r.Seq); err != nil {
		return Run{}, fmt.Errorf("record run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, source_hash, label, report, seq)
		VALUES (?, ?, ?, ?, ?)
	`,
		r.ID,
		r.SourceHash,
		r.Label,
		reportJSON,
		r.Seq,
	)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("record run: commit: %w", err)
	}
	return r, nil
}
