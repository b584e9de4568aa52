package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestStore(t *testing.T, clock *fakeClock) *Store {
	t.Helper()
	return New(NewMemoryBackend(), Options{
		TTL:                time.Hour,
		PagesEnabled:       true,
		ExtractionsEnabled: true,
		Clock:              clock,
	}, zap.NewNop())
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	store := newTestStore(t, clock)
	ctx := context.Background()

	_, ok := store.Get(ctx, NamespacePages, "k")
	assert.False(t, ok)

	store.Set(ctx, NamespacePages, "k", []byte("payload"))
	got, ok := store.Get(ctx, NamespacePages, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), got)
}

func TestStoreNamespacesAreIndependent(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	store := newTestStore(t, clock)
	ctx := context.Background()

	store.Set(ctx, NamespacePages, "k", []byte("page"))
	_, ok := store.Get(ctx, NamespaceExtractions, "k")
	assert.False(t, ok, "same key must not leak across namespaces")

	stats := store.Stats(ctx)
	assert.Equal(t, 1, stats.PageEntries)
	assert.Equal(t, 0, stats.ExtractionEntries)
}

func TestStoreTTLExpiry(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	store := newTestStore(t, clock)
	ctx := context.Background()

	store.Set(ctx, NamespaceExtractions, "k", []byte("v"))

	clock.advance(59 * time.Minute)
	_, ok := store.Get(ctx, NamespaceExtractions, "k")
	assert.True(t, ok, "entry inside TTL window")

	clock.advance(2 * time.Minute)
	_, ok = store.Get(ctx, NamespaceExtractions, "k")
	assert.False(t, ok, "entry past TTL reads as a miss")
}

func TestStoreSetRefreshesEntry(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	store := newTestStore(t, clock)
	ctx := context.Background()

	store.Set(ctx, NamespacePages, "k", []byte("v1"))
	clock.advance(50 * time.Minute)
	store.Set(ctx, NamespacePages, "k", []byte("v2"))
	clock.advance(30 * time.Minute)

	got, ok := store.Get(ctx, NamespacePages, "k")
	require.True(t, ok, "refresh restarts the TTL window")
	assert.Equal(t, []byte("v2"), got)
}

func TestStoreDisabledNamespace(t *testing.T) {
	t.Parallel()

	store := New(NewMemoryBackend(), Options{
		TTL:                time.Hour,
		PagesEnabled:       false,
		ExtractionsEnabled: true,
		Clock:              &fakeClock{now: time.Unix(1700000000, 0)},
	}, zap.NewNop())
	ctx := context.Background()

	store.Set(ctx, NamespacePages, "k", []byte("v"))
	_, ok := store.Get(ctx, NamespacePages, "k")
	assert.False(t, ok)

	store.Set(ctx, NamespaceExtractions, "k", []byte("v"))
	_, ok = store.Get(ctx, NamespaceExtractions, "k")
	assert.True(t, ok)
}

type failingBackend struct {
	err error
}

func (f *failingBackend) Get(context.Context, string) (Entry, bool, error) { return Entry{}, false, f.err }
func (f *failingBackend) Set(context.Context, string, Entry) error        { return f.err }
func (f *failingBackend) Count(context.Context, string) (int, error)      { return 0, f.err }
func (f *failingBackend) Close() error                                    { return nil }

// A backend failure mid-run disables the cache instead of failing the
// pipeline: every later read misses and every write is a no-op.
func TestStoreDegradesOnBackendFailure(t *testing.T) {
	t.Parallel()

	store := New(&failingBackend{err: errors.New("disk gone")}, Options{
		TTL:          time.Hour,
		PagesEnabled: true,
		Clock:        &fakeClock{now: time.Unix(1700000000, 0)},
	}, zap.NewNop())
	ctx := context.Background()

	_, ok := store.Get(ctx, NamespacePages, "k")
	assert.False(t, ok)
	assert.True(t, store.Stats(ctx).Degraded)

	// No panic and still a miss once degraded.
	store.Set(ctx, NamespacePages, "k", []byte("v"))
	_, ok = store.Get(ctx, NamespacePages, "k")
	assert.False(t, ok)
}

func TestKeyDerivation(t *testing.T) {
	t.Parallel()

	assert.Equal(t, URLKey("https://example.com/docs"), URLKey("https://example.com/docs"))
	assert.NotEqual(t, URLKey("https://example.com/docs"), URLKey("https://example.com/api"))

	// Content keys ignore where the text came from.
	text := "GET /users returns the user list."
	assert.Equal(t, ContentKey(text), ContentKey(text))
	assert.NotEqual(t, ContentKey(text), ContentKey(text+" "))
	assert.Len(t, ContentKey(text), 64)
}

func TestMemoryBackendCopiesPayload(t *testing.T) {
	t.Parallel()

	backend := NewMemoryBackend()
	ctx := context.Background()

	payload := []byte("original")
	require.NoError(t, backend.Set(ctx, "k", Entry{Payload: payload, CreatedAt: time.Now(), TTL: time.Hour}))
	payload[0] = 'X'

	entry, ok, err := backend.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("original"), entry.Payload)
}
