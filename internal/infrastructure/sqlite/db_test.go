package sqlite

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "bloom.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewDB_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "bloom.db")

	db, err := NewDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	info, err := os.Stat(filepath.Dir(dbPath))
	require.NoError(t, err)
	require.True(t, info.IsDir())
	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), info.Mode().Perm())
	}
	require.Equal(t, dbPath, db.Path())
}

func TestNewDB_RunsMigrations(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{
		"oasis_elements", "oasis_sessions", "users", "breathing_sessions",
		"coin_transactions", "mood_entries", "user_achievements", "course_completions",
	} {
		var name string
		err := db.conn.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
}

func TestNewDB_BacksUpExistingFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bloom.db")

	db1, err := NewDB(dbPath)
	require.NoError(t, err)
	_, err = db1.conn.Exec(`INSERT INTO oasis_sessions
		(intention, pattern_name, cycles_completed, duration_seconds, started_at, completed_at)
		VALUES ('just-breathe', 'Coherence Breathing', 10, 110, 0, 0)`)
	require.NoError(t, err)
	require.NoError(t, db1.Close())

	_, err = os.Stat(dbPath + ".bak")
	require.True(t, os.IsNotExist(err), "first open has nothing to back up")

	db2, err := NewDB(dbPath)
	require.NoError(t, err)
	defer db2.Close()

	info, err := os.Stat(dbPath + ".bak")
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestNewDB_Pragmas(t *testing.T) {
	db := openTestDB(t)

	var journalMode string
	require.NoError(t, db.conn.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	require.Equal(t, "wal", journalMode)

	var foreignKeys int
	require.NoError(t, db.conn.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys))
	require.Equal(t, 1, foreignKeys)

	var busyTimeout int
	require.NoError(t, db.conn.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
	require.Equal(t, 5000, busyTimeout)
}

func TestNewDB_ReopenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bloom.db")

	db1, err := NewDB(dbPath)
	require.NoError(t, err)
	defer db1.Close()

	db2, err := NewDB(dbPath)
	require.NoError(t, err)
	defer db2.Close()

	require.NoError(t, db2.Connection().Ping())
}

func TestDB_Close(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "bloom.db"))
	require.NoError(t, err)

	require.NoError(t, db.Close())
	require.Error(t, db.conn.Ping())
}

func TestNewDB_InvalidPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := NewDB(filepath.Join(blocker, "bloom.db"))
	require.Error(t, err)
}
