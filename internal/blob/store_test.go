package blob

import (
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestAcquireWritesBlob(t *testing.T) {
	store := newTestStore(t)

	h, err := store.AcquireBytes("s1/clip.mp4", []byte("video-bytes"))
	require.NoError(t, err)

	data, err := os.ReadFile(h.Path())
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(data))
	assert.Equal(t, 1, store.Live())
}

func TestReleaseExactlyOnce(t *testing.T) {
	store := newTestStore(t)

	h, err := store.AcquireBytes("s1/clip.mp4", []byte("x"))
	require.NoError(t, err)

	require.NoError(t, h.Release())
	assert.Equal(t, 0, store.Live())

	_, statErr := os.Stat(h.Path())
	assert.True(t, os.IsNotExist(statErr), "blob file must be deleted on release")

	// Second release must fail, never double-delete silently.
	assert.ErrorIs(t, h.Release(), ErrAlreadyReleased)
}

func TestAcquireRejectsLiveKey(t *testing.T) {
	store := newTestStore(t)

	h, err := store.AcquireBytes("same", []byte("a"))
	require.NoError(t, err)

	_, err = store.AcquireBytes("same", []byte("b"))
	assert.ErrorIs(t, err, ErrKeyInUse)

	// Released keys can be reused, e.g. a superseding export result.
	require.NoError(t, h.Release())
	h2, err := store.AcquireBytes("same", []byte("b"))
	require.NoError(t, err)

	data, err := os.ReadFile(h2.Path())
	require.NoError(t, err)
	assert.Equal(t, "b", string(data))
}

func TestAcquireConcurrentSameKeyAdmitsOne(t *testing.T) {
	store := newTestStore(t)

	const attempts = 8
	var wg sync.WaitGroup
	var wins, busy atomic.Int32

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.AcquireBytes("contested", []byte("x"))
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, ErrKeyInUse):
				busy.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load(), "exactly one acquire may win the key")
	assert.Equal(t, int32(attempts-1), busy.Load())
	assert.Equal(t, 1, store.Live())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("read exploded")
}

func TestAcquireFailedWriteFreesKey(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Acquire("flaky", failingReader{})
	require.Error(t, err)
	assert.Equal(t, 0, store.Live(), "failed acquire must not hold the key")

	h, err := store.AcquireBytes("flaky", []byte("retry"))
	require.NoError(t, err)

	data, err := os.ReadFile(h.Path())
	require.NoError(t, err)
	assert.Equal(t, "retry", string(data))
}

func TestAcquireRejectsTraversalKeys(t *testing.T) {
	store := newTestStore(t)

	for _, key := range []string{"", "  ", "../escape", "a/../../b", "a//b"} {
		_, err := store.AcquireBytes(key, []byte("x"))
		assert.Error(t, err, "key %q must be rejected", key)
	}
}

func TestReleaseAll(t *testing.T) {
	store := newTestStore(t)

	for _, key := range []string{"a", "b", "c"} {
		_, err := store.AcquireBytes(key, []byte(key))
		require.NoError(t, err)
	}
	require.Equal(t, 3, store.Live())

	require.NoError(t, store.ReleaseAll())
	assert.Equal(t, 0, store.Live())
}
