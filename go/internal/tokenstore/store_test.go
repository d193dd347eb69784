package tokenstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoad(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("tok-abc"))

	token, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)
}

func TestLoadWithoutTokenReturnsErrNoToken(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestClearRemovesToken(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save("tok-abc"))
	require.NoError(t, store.Clear())

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = os.Stat(filepath.Join(dir, TokenKey))
	assert.True(t, os.IsNotExist(err))
}

func TestClearIsIdempotent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
}

func TestSaveOverwritesPreviousToken(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("tok-old"))
	require.NoError(t, store.Save("tok-new"))

	token, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-new", token)
}
