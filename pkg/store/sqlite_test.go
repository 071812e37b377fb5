package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLiteKV(t *testing.T) *SQLiteKV {
	t.Helper()

	kv, err := NewSQLiteKV(filepath.Join(t.TempDir(), "profile.db"))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	return kv
}

func TestSQLiteKV(t *testing.T) {
	kv := setupSQLiteKV(t)
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "a_1", "one"))
	require.NoError(t, kv.Set(ctx, "a_1", "uno"))
	require.NoError(t, kv.Set(ctx, "a_2", "two"))
	require.NoError(t, kv.Set(ctx, "b_1", "other"))

	value, ok, err := kv.Get(ctx, "a_1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "uno", value)

	keys, err := kv.Keys(ctx, "a_")
	require.NoError(t, err)
	assert.Equal(t, []string{"a_1", "a_2"}, keys)

	require.NoError(t, kv.Delete(ctx, "a_1"))
	_, ok, err = kv.Get(ctx, "a_1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteKVSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.db")
	ctx := context.Background()

	kv, err := NewSQLiteKV(path)
	require.NoError(t, err)
	id := New(kv).VisitorID(ctx)
	require.NoError(t, kv.Close())

	reopened, err := NewSQLiteKV(path)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, id, New(reopened).VisitorID(ctx))
}

func TestSQLiteKVKeepsCallerQuery(t *testing.T) {
	dir := t.TempDir()

	kv, err := NewSQLiteKV(filepath.Join(dir, "profile.db") + "?_txlock=immediate")
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	require.NoError(t, kv.Set(context.Background(), "k", "v"))

	var mode string
	require.NoError(t, kv.db.Get(&mode, "PRAGMA journal_mode"))
	assert.Equal(t, "wal", mode)

	_, err = os.Stat(filepath.Join(dir, "profile.db"))
	assert.NoError(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "a.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", sqliteDSN("a.db"))
	assert.Equal(t, "a.db?mode=ro&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", sqliteDSN("a.db?mode=ro"))
}
