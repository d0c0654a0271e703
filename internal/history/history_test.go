package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/checkcard/internal/model"
	"github.com/verte-zerg/checkcard/internal/store"
)

func openKV(t *testing.T) store.KV {
	t.Helper()
	kv, err := store.OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func stepClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func TestLoadEmpty(t *testing.T) {
	l := New(openKV(t))
	require.NoError(t, l.Load(context.Background()))
	require.Empty(t, l.Entries())
	_, ok := l.Latest()
	require.False(t, ok)
}

func TestRecordCapsAtFifty(t *testing.T) {
	ctx := context.Background()
	l := New(openKV(t), WithClock(stepClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local))))
	var recorded []model.HistoryEntry
	for i := 0; i < 60; i++ {
		entry, err := l.Record(ctx, 1, 1)
		require.NoError(t, err)
		recorded = append(recorded, entry)
	}

	entries := l.Entries()
	require.Len(t, entries, MaxEntries)
	require.Equal(t, recorded[59], entries[0])
	require.Equal(t, recorded[10], entries[MaxEntries-1])
	for i := 0; i < 10; i++ {
		for _, e := range entries {
			require.NotEqual(t, recorded[i].ID, e.ID)
		}
	}
}

func TestRecordUsesLocalizedDate(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)
	l := New(openKV(t), WithClock(func() time.Time { return at }))
	entry, err := l.Record(context.Background(), 3, 4)
	require.NoError(t, err)
	require.Equal(t, "09/03/2024, 14:05:07", entry.Date)
	require.Equal(t, 3, entry.Score)
	require.Equal(t, 4, entry.Total)
	require.NotEmpty(t, entry.ID)
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := openKV(t)
	l := New(kv, WithClock(stepClock(time.Now())))
	for i := 0; i < 5; i++ {
		_, err := l.Record(ctx, i, 5)
		require.NoError(t, err)
	}

	reloaded := New(kv)
	require.NoError(t, reloaded.Load(ctx))
	require.Equal(t, l.Entries(), reloaded.Entries())
	latest, ok := reloaded.Latest()
	require.True(t, ok)
	require.Equal(t, 4, latest.Score)
}

func TestLoadCorruptDataYieldsEmpty(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []string{"{not json", `{"id":"x"}`, `"text"`} {
		kv := openKV(t)
		require.NoError(t, kv.Put(ctx, store.KeyHistory, raw))
		l := New(kv)
		require.NoError(t, l.Load(ctx), "raw %q", raw)
		require.Empty(t, l.Entries(), "raw %q", raw)

		_, err := l.Record(ctx, 1, 2)
		require.NoError(t, err)
		require.Equal(t, 1, l.Len())
	}
}

func TestLoadTruncatesOversizedList(t *testing.T) {
	ctx := context.Background()
	kv := openKV(t)
	entries := make([]model.HistoryEntry, 70)
	for i := range entries {
		entries[i] = model.HistoryEntry{ID: string(rune('a' + i%26)), Score: i, Total: 70}
	}
	require.NoError(t, store.PutJSON(ctx, kv, store.KeyHistory, entries))

	l := New(kv)
	require.NoError(t, l.Load(ctx))
	require.Len(t, l.Entries(), MaxEntries)
	require.Equal(t, 0, l.Entries()[0].Score)
}

func TestClearRemovesKey(t *testing.T) {
	ctx := context.Background()
	kv := openKV(t)
	l := New(kv)
	_, err := l.Record(ctx, 1, 1)
	require.NoError(t, err)

	require.NoError(t, l.Clear(ctx))
	require.Empty(t, l.Entries())
	_, ok, err := kv.Get(ctx, store.KeyHistory)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEntriesIsCopy(t *testing.T) {
	l := New(openKV(t))
	_, err := l.Record(context.Background(), 1, 1)
	require.NoError(t, err)
	got := l.Entries()
	got[0].Score = 99
	require.Equal(t, 1, l.Entries()[0].Score)
}

type failingKV struct {
	store.KV
	failPut    bool
	failDelete bool
}

func (f *failingKV) Put(ctx context.Context, key, value string) error {
	if f.failPut {
		return errors.New("disk full")
	}
	return f.KV.Put(ctx, key, value)
}

func (f *failingKV) Delete(ctx context.Context, key string) error {
	if f.failDelete {
		return errors.New("read-only store")
	}
	return f.KV.Delete(ctx, key)
}

func TestFailedWriteKeepsLedger(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{KV: openKV(t)}
	l := New(kv)
	_, err := l.Record(ctx, 1, 2)
	require.NoError(t, err)

	kv.failPut = true
	_, err = l.Record(ctx, 2, 2)
	require.ErrorContains(t, err, "disk full")
	require.Equal(t, 1, l.Len())
	latest, ok := l.Latest()
	require.True(t, ok)
	require.Equal(t, 1, latest.Score)

	kv.failDelete = true
	require.ErrorContains(t, l.Clear(ctx), "read-only store")
	require.Equal(t, 1, l.Len())
}
