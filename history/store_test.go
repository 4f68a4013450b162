package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/elnk/elnk"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := Open(context.Background(), dsn, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestDriverName(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"history.db", "sqlite"},
		{"file:history.db?cache=shared", "sqlite"},
		{":memory:", "sqlite"},
		{"libsql://elnk-history.turso.io?authToken=abc", "libsql"},
		{"wss://elnk-history.turso.io", "libsql"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, driverName(tt.dsn), tt.dsn)
	}
}

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Record(ctx, &elnk.ShortLink{
		ID:          "1",
		OriginalURL: "https://example.com/first",
		ShortURL:    "https://elnk.pro/abc123",
		CreatedAt:   created,
	}))
	require.NoError(t, store.Record(ctx, &elnk.ShortLink{
		ID:          "2",
		OriginalURL: "https://example.com/second",
		ShortURL:    "https://elnk.pro/promo",
		CustomAlias: "promo",
		CreatedAt:   created.Add(time.Hour),
	}))

	entries, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, elnk.ID("2"), entries[0].LinkID)
	assert.Equal(t, "promo", entries[0].Alias)
	assert.Equal(t, elnk.ID("1"), entries[1].LinkID)
	assert.Equal(t, "abc123", entries[1].Alias)
	assert.True(t, created.Equal(entries[1].CreatedAt))
	assert.False(t, entries[1].RecordedAt.IsZero())

	limited, err := store.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecordReplacesExisting(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	short := &elnk.ShortLink{ID: "7", OriginalURL: "https://example.com", ShortURL: "https://elnk.pro/old"}
	require.NoError(t, store.Record(ctx, short))

	short.ShortURL = "https://elnk.pro/new"
	require.NoError(t, store.Record(ctx, short))

	entries, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "https://elnk.pro/new", entries[0].ShortURL)
	assert.Equal(t, "new", entries[0].Alias)
}

func TestRecordWithoutID(t *testing.T) {
	store := openTestStore(t)
	assert.Error(t, store.Record(context.Background(), &elnk.ShortLink{OriginalURL: "https://example.com"}))
	assert.Error(t, store.Record(context.Background(), nil))
}

func TestGetAndRemove(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, &elnk.ShortLink{ID: "9", OriginalURL: "https://example.com/x"}))

	entry, err := store.Get(ctx, "9")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/x", entry.OriginalURL)

	link := entry.Link()
	assert.Equal(t, elnk.ID("9"), link.ID)
	assert.Equal(t, "https://example.com/x", link.Target())

	removed, err := store.Remove(ctx, "9")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Remove(ctx, "9")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = store.Get(ctx, "9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenInMemory(t *testing.T) {
	store, err := Open(context.Background(), ":memory:", zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Record(context.Background(), &elnk.ShortLink{ID: "1", OriginalURL: "https://example.com"}))
	entries, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
