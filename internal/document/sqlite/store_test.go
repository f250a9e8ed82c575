package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/artpar/crumb/internal/cookie"
	"github.com/artpar/crumb/internal/document"
	"github.com/artpar/crumb/internal/duration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// find lists every cookie and returns the one with the given key.
func find(t *testing.T, store *Store, domain, path, name string) *document.StoredCookie {
	t.Helper()
	all, err := store.List(context.Background(), document.QueryOptions{Domain: domain, IncludeExpired: true})
	require.NoError(t, err)
	for _, c := range all {
		if c.Path == path && c.Name == name {
			return c
		}
	}
	return nil
}

func TestStore_Set(t *testing.T) {
	t.Run("keeps every attribute", func(t *testing.T) {
		store := newStore(t)
		c := &document.StoredCookie{
			Domain:   "app.example.com",
			HostOnly: true,
			Path:     "/",
			Name:     "session",
			Value:    "abc%3B123",
			Secure:   true,
			SameSite: "strict",
			Expires:  time.Now().Add(24 * time.Hour),
		}

		require.NoError(t, store.Set(context.Background(), c))
		assert.NotEmpty(t, c.ID)
		assert.False(t, c.CreatedAt.IsZero())

		got := find(t, store, "app.example.com", "/", "session")
		require.NotNil(t, got)
		assert.Equal(t, c.ID, got.ID)
		assert.Equal(t, "abc%3B123", got.Value)
		assert.True(t, got.HostOnly)
		assert.True(t, got.Secure)
		assert.Equal(t, "strict", got.SameSite)
		assert.WithinDuration(t, c.Expires, got.Expires, time.Millisecond)
	})

	t.Run("session cookie has no expiry", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set(context.Background(), &document.StoredCookie{Domain: "a.com", Path: "/", Name: "s"}))

		got := find(t, store, "a.com", "/", "s")
		require.NotNil(t, got)
		assert.True(t, got.IsSession())
	})

	t.Run("replaces the same key and keeps its id", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		first := &document.StoredCookie{Domain: "example.com", Path: "/", Name: "test", Value: "initial"}
		require.NoError(t, store.Set(ctx, first))

		second := &document.StoredCookie{Domain: "example.com", Path: "/", Name: "test", Value: "updated"}
		require.NoError(t, store.Set(ctx, second))
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.CreatedAt, second.CreatedAt)

		got := find(t, store, "example.com", "/", "test")
		require.NotNil(t, got)
		assert.Equal(t, "updated", got.Value)

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestStore_List(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, &document.StoredCookie{Domain: "b.com", Path: "/", Name: "c1", Value: "v3"}))
	require.NoError(t, store.Set(ctx, &document.StoredCookie{Domain: "a.com", Path: "/api", Name: "c2", Value: "v2"}))
	require.NoError(t, store.Set(ctx, &document.StoredCookie{Domain: "a.com", Path: "/", Name: "c1", Value: "v1"}))
	require.NoError(t, store.Set(ctx, &document.StoredCookie{
		Domain: "b.com", Path: "/", Name: "old", Value: "v4",
		Expires: time.Now().Add(-time.Hour),
	}))

	t.Run("orders by domain, path and name", func(t *testing.T) {
		all, err := store.List(ctx, document.QueryOptions{IncludeExpired: true})
		require.NoError(t, err)
		require.Len(t, all, 4)

		var keys []string
		for _, c := range all {
			keys = append(keys, c.Domain+c.Path+c.Name)
		}
		assert.Equal(t, []string{"a.com/c1", "a.com/apic2", "b.com/c1", "b.com/old"}, keys)
	})

	t.Run("excludes expired by default", func(t *testing.T) {
		live, err := store.List(ctx, document.QueryOptions{})
		require.NoError(t, err)
		assert.Len(t, live, 3)
	})

	t.Run("by domain", func(t *testing.T) {
		got, err := store.List(ctx, document.QueryOptions{Domain: "a.com"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}

func TestStore_Deletes(t *testing.T) {
	ctx := context.Background()
	seed := func(t *testing.T) *Store {
		store := newStore(t)
		require.NoError(t, store.Set(ctx, &document.StoredCookie{Domain: "a.com", Path: "/", Name: "session", Value: "s"}))
		require.NoError(t, store.Set(ctx, &document.StoredCookie{
			Domain: "a.com", Path: "/", Name: "timed", Value: "t",
			Expires: time.Now().Add(time.Hour),
		}))
		require.NoError(t, store.Set(ctx, &document.StoredCookie{
			Domain: "b.com", Path: "/", Name: "expired", Value: "e",
			Expires: time.Now().Add(-time.Hour),
		}))
		return store
	}

	t.Run("delete one", func(t *testing.T) {
		store := seed(t)
		require.NoError(t, store.Delete(ctx, "a.com", "/", "session"))
		assert.Nil(t, find(t, store, "a.com", "/", "session"))

		// missing is fine
		require.NoError(t, store.Delete(ctx, "a.com", "/", "session"))
	})

	t.Run("delete by domain", func(t *testing.T) {
		store := seed(t)
		n, err := store.DeleteByDomain(ctx, "a.com")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("delete expired", func(t *testing.T) {
		store := seed(t)
		n, err := store.DeleteExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("delete session", func(t *testing.T) {
		store := seed(t)
		n, err := store.DeleteSession(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		assert.NotNil(t, find(t, store, "a.com", "/", "timed"))
	})

	t.Run("clear", func(t *testing.T) {
		store := seed(t)
		require.NoError(t, store.Clear(ctx))

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestStore_ClosedStore(t *testing.T) {
	store, err := NewInMemory()
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	ctx := context.Background()

	err = store.Set(ctx, &document.StoredCookie{Domain: "test.com", Path: "/", Name: "test"})
	assert.ErrorIs(t, err, document.ErrStoreClosed)

	_, err = store.List(ctx, document.QueryOptions{})
	assert.ErrorIs(t, err, document.ErrStoreClosed)

	assert.ErrorIs(t, store.Delete(ctx, "test.com", "/", "test"), document.ErrStoreClosed)
	assert.ErrorIs(t, store.Clear(ctx), document.ErrStoreClosed)

	_, err = store.DeleteByDomain(ctx, "test.com")
	assert.ErrorIs(t, err, document.ErrStoreClosed)

	_, err = store.DeleteExpired(ctx)
	assert.ErrorIs(t, err, document.ErrStoreClosed)

	_, err = store.DeleteSession(ctx)
	assert.ErrorIs(t, err, document.ErrStoreClosed)

	_, err = store.Count(ctx)
	assert.ErrorIs(t, err, document.ErrStoreClosed)
}

func TestMillis(t *testing.T) {
	assert.False(t, millis(time.Time{}).Valid)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n := millis(at)
	assert.True(t, n.Valid)
	assert.Equal(t, at.UnixMilli(), n.Int64)
}

func TestStore_DocumentSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cookies.db")
	const page = "https://app.example.com/"

	store, err := New(dbPath)
	require.NoError(t, err)
	doc, err := document.Open(page, document.WithStore(store))
	require.NoError(t, err)

	jar := cookie.NewJar(doc)
	jar.Store(cookie.Options{Name: "sid", Value: "a;b"})
	jar.Store(cookie.Options{Name: "pref", Value: "dark", Duration: cookie.Lifetime(duration.Spec{Days: 7})})
	jar.Store(cookie.Options{Name: "gone", Value: "x", Duration: cookie.Lifetime(duration.Spec{Days: 7})})
	jar.Delete("gone")
	require.NoError(t, doc.Close())

	store2, err := New(dbPath)
	require.NoError(t, err)
	doc2, err := document.Open(page, document.WithStore(store2))
	require.NoError(t, err)
	defer doc2.Close()

	jar2 := cookie.NewJar(doc2)
	got, ok := jar2.Load("sid")
	require.True(t, ok)
	assert.Equal(t, "a;b", got)
	assert.True(t, jar2.Exists("pref"))
	assert.False(t, jar2.Exists("gone"))

	n, err := doc2.EndSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.False(t, jar2.Exists("sid"))
	assert.True(t, jar2.Exists("pref"))
}
