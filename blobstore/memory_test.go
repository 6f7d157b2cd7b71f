package blobstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Commit(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Commit(ctx, "CURRENT", 1, []byte("a")))
	require.NoError(t, store.Commit(ctx, "CURRENT", 3, []byte("c")))

	err := store.Commit(ctx, "CURRENT", 3, []byte("stale"))
	assert.ErrorIs(t, err, ErrConflict)
	err = store.Commit(ctx, "CURRENT", 2, []byte("older"))
	assert.ErrorIs(t, err, ErrConflict)

	got, err := ReadAll(ctx, store, "CURRENT")
	require.NoError(t, err)
	assert.Equal(t, "c", string(got))

	// Versions are tracked per name.
	require.NoError(t, store.Commit(ctx, "OTHER", 1, []byte("x")))
}

func TestMemoryStore_ConcurrentCommits(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const writers = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		winners  int
		unexpect error
	)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Commit(ctx, "CURRENT", 1, []byte("doc"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners++
			case !errors.Is(err, ErrConflict):
				unexpect = err
			}
		}()
	}
	wg.Wait()

	require.NoError(t, unexpect)
	assert.Equal(t, 1, winners)
}
