package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Set("lk_auth_token", "tok_abc"))

	got, err := s.Get("lk_auth_token")
	require.NoError(t, err)
	assert.Equal(t, "tok_abc", got)
}

func TestStoreOverwrite(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Set("key", "first"))
	require.NoError(t, s.Set("key", "second"))

	got, err := s.Get("key")
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestStoreMissingKey(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get("missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreDelete(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Set("key", "value"))
	require.NoError(t, s.Delete("key"))

	_, err := s.Get("key")
	require.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing key is not an error.
	require.NoError(t, s.Delete("key"))
}

func TestStorePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("key", "value"))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Get("key")
	require.NoError(t, err)
	assert.Equal(t, "value", got)
}

func TestStoreCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("key", "value"))
}
