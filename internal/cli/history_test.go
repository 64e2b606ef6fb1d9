package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/basm/internal/store"
	"github.com/roach88/basm/internal/testutil"
)

// seedHistory records one optimize run per program and returns the db path.
func seedHistory(t *testing.T, programs ...string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "basm.db")
	ids := testutil.NewSequentialIDGenerator()

	for i, src := range programs {
		cmd := newOptimizeCommand(&OptimizeOptions{
			RootOptions: &RootOptions{Format: "text"},
			IDGenerator: ids,
		})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		args := []string{writeProgram(t, src), "--db", dbPath}
		if i == 0 {
			args = append(args, "--label", "first")
		}
		cmd.SetArgs(args)
		require.NoError(t, cmd.Execute())
	}
	return dbPath
}

func executeHistory(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestHistoryCommandRequiresDB(t *testing.T) {
	_, err := executeHistory(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestHistoryCommandMissingDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing.db")

	out, err := executeHistory(t, "text", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "database not found")
	assert.NoFileExists(t, dbPath)
}

func TestHistoryCommandText(t *testing.T) {
	dbPath := seedHistory(t, "+++++[-]", "+>>-<+")

	out, err := executeHistory(t, "text", "--db", dbPath)
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace([]byte(out)), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "00000000-0000-7000-8000-000000000002")
	assert.Contains(t, string(lines[0]), store.SourceHash("+>>-<+")[:12])
	assert.Contains(t, string(lines[1]), "first")
	assert.Contains(t, string(lines[1]), "3 -> 2 ops")
}

func TestHistoryCommandLimitJSON(t *testing.T) {
	dbPath := seedHistory(t, "+", "-", ">+")

	out, err := executeHistory(t, "json", "--db", dbPath, "--limit", "2")
	require.NoError(t, err)

	var envelope struct {
		Status string      `json:"status"`
		Data   []store.Run `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &envelope))
	assert.Equal(t, "ok", envelope.Status)
	require.Len(t, envelope.Data, 2)
	assert.Equal(t, int64(3), envelope.Data[0].Seq)
	assert.Equal(t, int64(2), envelope.Data[1].Seq)
}

func TestHistoryCommandEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "basm.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := executeHistory(t, "text", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")
}

func TestShortHash(t *testing.T) {
	full := store.SourceHash("+")
	assert.Equal(t, full[:12], shortHash(full))
	assert.Equal(t, "abc", shortHash("abc"))
	assert.Equal(t, "", shortHash(""))
}
