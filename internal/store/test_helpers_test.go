package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/basm/internal/optimizer"
	"github.com/roach88/basm/internal/testutil"
)

// createTestStore creates a new file-backed store with sequential run IDs.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewSequentialIDGenerator()))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// cacheProgram optimizes src, caches it and returns the optimizer result.
func cacheProgram(t *testing.T, s *Store, src string) optimizer.Result {
	t.Helper()
	res := optimizer.New().Run(src)
	if err := s.PutOptimization(context.Background(), NewOptimization(src, res.Output)); err != nil {
		t.Fatalf("PutOptimization() failed: %v", err)
	}
	return res
}
