package storage

import (
	"context"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "upload/ab/one.txt", strings.NewReader("hello")))

	rc, err := store.Get(ctx, "upload/ab/one.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Delete(ctx, "upload/ab/one.txt"))
	_, err = store.Get(ctx, "upload/ab/one.txt")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, "upload/ab/one.txt"))
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, p := range []string{"../secret", "upload/../../x", ""} {
		assert.ErrorIs(t, store.Save(ctx, p, strings.NewReader("x")), ErrInvalidPath, p)
	}
}

func TestLocalStorageHonoursCancelledContext(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.Save(ctx, "a.txt", strings.NewReader("x")), context.Canceled)
}
