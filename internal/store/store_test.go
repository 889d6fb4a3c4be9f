package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ashasphere/internal/ports"
)

func exerciseKeyValue(t *testing.T, kv ports.KeyValueStore) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "asha-journal")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "asha-journal", []byte(`[{"id":"1"}]`)))
	require.NoError(t, kv.Set(ctx, "asha-settings", []byte(`{"userName":"Asha"}`)))
	require.NoError(t, kv.Set(ctx, "asha-journal", []byte(`[{"id":"1"},{"id":"2"}]`)))

	value, ok, err := kv.Get(ctx, "asha-journal")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"1"},{"id":"2"}]`, string(value))

	value, ok, err = kv.Get(ctx, "asha-settings")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"userName":"Asha"}`, string(value))
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	exerciseKeyValue(t, NewMemoryStore())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	t.Parallel()

	kv := NewMemoryStore()
	ctx := context.Background()
	value := []byte(`"a"`)
	require.NoError(t, kv.Set(ctx, "k", value))
	value[1] = 'b'

	got, _, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `"a"`, string(got))
}

func TestJSONStoreRoundTripAcrossReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "journal.json")
	kv, err := NewJSONStore(path)
	require.NoError(t, err)
	exerciseKeyValue(t, kv)

	reopened, err := NewJSONStore(path)
	require.NoError(t, err)
	value, ok, err := reopened.Get(context.Background(), "asha-settings")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"userName":"Asha"}`, string(value))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, errors.Is(err, os.ErrNotExist), "temp file should be renamed away")
}

func TestJSONStoreRejectsInvalidJSON(t *testing.T) {
	t.Parallel()

	kv, err := NewJSONStore(filepath.Join(t.TempDir(), "journal.json"))
	require.NoError(t, err)

	err = kv.Set(context.Background(), "k", []byte("{not json"))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestJSONStoreCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "journal.json")
	require.NoError(t, os.WriteFile(path, []byte("[1,2"), 0o600))

	_, err := NewJSONStore(path)
	assert.Error(t, err)
}

func TestSQLiteStoreInMemory(t *testing.T) {
	kv, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	exerciseKeyValue(t, kv)
}

func TestSQLiteStorePersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "journal.db")

	kv, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(context.Background(), "asha-mood-history", []byte(`[]`)))
	require.NoError(t, kv.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	value, ok, err := reopened.Get(context.Background(), "asha-mood-history")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", string(value))
}

func TestSQLiteStoreMigrationFailure(t *testing.T) {
	original := gooseUp
	gooseUp = func(context.Context, *sql.DB) error { return errors.New("boom") }
	t.Cleanup(func() { gooseUp = original })

	_, err := NewSQLiteStore(":memory:")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate sqlite store")
}

func TestNewByEngine(t *testing.T) {
	dir := t.TempDir()

	kv, err := NewByEngine("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, kv)

	kv, err = NewByEngine(" JSON ", filepath.Join(dir, "j.json"))
	require.NoError(t, err)
	assert.IsType(t, &JSONStore{}, kv)

	kv, err = NewByEngine("", filepath.Join(dir, "j.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, kv)
	require.NoError(t, kv.(*SQLiteStore).Close())

	_, err = NewByEngine("postgres", "")
	assert.ErrorIs(t, err, ErrUnsupportedEngine)
}
