package db

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN_Write(t *testing.T) {
	dsn := buildDSN("/tmp/test.sqlite", "write")

	assert.Contains(t, dsn, "_journal_mode=WAL")
	assert.Contains(t, dsn, "_busy_timeout=5000")
	assert.Contains(t, dsn, "_synchronous=NORMAL")
	assert.Contains(t, dsn, "_foreign_keys=on")
	assert.Contains(t, dsn, "_txlock=immediate")
	assert.True(t, strings.HasPrefix(dsn, "/tmp/test.sqlite?"))
}

func TestBuildDSN_Read(t *testing.T) {
	dsn := buildDSN("/tmp/test.sqlite", "read")

	assert.Contains(t, dsn, "_journal_mode=WAL")
	assert.NotContains(t, dsn, "_txlock")
}

func TestOpenSQLite_InvalidMode(t *testing.T) {
	_, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"), "invalid", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid SQLite mode")
}

func TestOpenSQLitePair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	writeDB, readDB, err := OpenSQLitePair(path, 4)
	require.NoError(t, err)
	t.Cleanup(func() {
		writeDB.Close()
		readDB.Close()
	})

	assert.Equal(t, 1, writeDB.Stats().MaxOpenConnections)
	assert.Equal(t, 4, readDB.Stats().MaxOpenConnections)

	// Write through the write pool, read through the read pool.
	_, err = writeDB.Exec("CREATE TABLE test (id INTEGER PRIMARY KEY, val TEXT)")
	require.NoError(t, err)
	_, err = writeDB.Exec("INSERT INTO test (val) VALUES ('hello')")
	require.NoError(t, err)

	var val string
	err = readDB.QueryRow("SELECT val FROM test WHERE id = 1").Scan(&val)
	require.NoError(t, err)
	assert.Equal(t, "hello", val)
}

func TestOpenSQLite_ForeignKeysEnabled(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"), "write", 0)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var fk int
	err = db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	require.NoError(t, err)
	assert.Equal(t, 1, fk)
}

func TestRunMigrations(t *testing.T) {
	writeDB, readDB := OpenTestSQLite(t)
	_ = writeDB

	for _, table := range []string{"users", "manager_links"} {
		var name string
		err := readDB.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s missing", table)
	}
}

func TestManagerLinks_SchemaInvariants(t *testing.T) {
	writeDB, _ := OpenTestSQLite(t)

	res, err := writeDB.Exec("INSERT INTO users (username, email) VALUES ('u', 'u@example.com')")
	require.NoError(t, err)
	uid, err := res.LastInsertId()
	require.NoError(t, err)

	// Both manager fields unset is rejected.
	_, err = writeDB.Exec("INSERT INTO manager_links (user_id) VALUES (?)", uid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHECK")

	// Both manager fields set is rejected.
	res, err = writeDB.Exec("INSERT INTO users (username, email) VALUES ('m', 'm@example.com')")
	require.NoError(t, err)
	mid, err := res.LastInsertId()
	require.NoError(t, err)

	_, err = writeDB.Exec(
		"INSERT INTO manager_links (user_id, manager_user_id, unregistered_manager_email) VALUES (?, ?, 'x@example.com')",
		uid, mid)
	require.Error(t, err)

	// Self-management is rejected.
	_, err = writeDB.Exec("INSERT INTO manager_links (user_id, manager_user_id) VALUES (?, ?)", uid, uid)
	require.Error(t, err)

	// A valid link, then its duplicate.
	_, err = writeDB.Exec("INSERT INTO manager_links (user_id, manager_user_id) VALUES (?, ?)", uid, mid)
	require.NoError(t, err)
	_, err = writeDB.Exec("INSERT INTO manager_links (user_id, manager_user_id) VALUES (?, ?)", uid, mid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE")
}

func TestOpenSQLitePair_ConcurrentAccess(t *testing.T) {
	writeDB, readDB := OpenTestSQLite(t)

	_, err := writeDB.Exec("INSERT INTO users (username, email) VALUES ('u', 'u@example.com')")
	require.NoError(t, err)

	var wg sync.WaitGroup
	readErrs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			var count int
			readErrs[idx] = readDB.QueryRow("SELECT count(*) FROM users").Scan(&count)
		}(i)
	}
	wg.Wait()

	for i, e := range readErrs {
		assert.NoError(t, e, "reader %d failed", i)
	}
}
