// Package history keeps the capped, most-recent-first log of finished
// study sessions.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/checkcard/internal/logging"
	"github.com/verte-zerg/checkcard/internal/model"
	"github.com/verte-zerg/checkcard/internal/store"
)

// MaxEntries is the number of sessions kept.
const MaxEntries = 50

// DateLayout renders timestamps the way the pt-BR locale does.
const DateLayout = "02/01/2006, 15:04:05"

// Ledger is the in-memory history backed by a KV store.
type Ledger struct {
	kv      store.KV
	logger  *slog.Logger
	now     func() time.Time
	entries []model.HistoryEntry
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLogger sets the logger used for storage warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New returns an empty Ledger. Call Load to read persisted entries.
func New(kv store.KV, opts ...Option) *Ledger {
	l := &Ledger{kv: kv, logger: logging.Discard(), now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load replaces the in-memory list with the persisted one. Missing or
// unreadable data yields an empty history; only store I/O errors are returned.
func (l *Ledger) Load(ctx context.Context) error {
	l.entries = nil
	raw, ok, err := l.kv.Get(ctx, store.KeyHistory)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if !ok {
		return nil
	}
	var entries []model.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		l.logger.Warn("ignoring unreadable history", "error", err)
		return nil
	}
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	l.entries = entries
	return nil
}

// Record prepends a new entry, truncates to MaxEntries and persists the list.
func (l *Ledger) Record(ctx context.Context, score, total int) (model.HistoryEntry, error) {
	entry := model.HistoryEntry{
		ID:    uuid.NewString(),
		Date:  l.now().Local().Format(DateLayout),
		Score: score,
		Total: total,
	}
	next := make([]model.HistoryEntry, 0, len(l.entries)+1)
	next = append(next, entry)
	next = append(next, l.entries...)
	if len(next) > MaxEntries {
		next = next[:MaxEntries]
	}
	if err := store.PutJSON(ctx, l.kv, store.KeyHistory, next); err != nil {
		return entry, err
	}
	l.entries = next
	l.logger.Debug("session recorded", "score", score, "total", total, "entries", len(next))
	return entry, nil
}

// Clear empties the history and removes the persisted record.
func (l *Ledger) Clear(ctx context.Context) error {
	if err := l.kv.Delete(ctx, store.KeyHistory); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	l.entries = nil
	return nil
}

// Entries returns a copy of the history, most recent first.
func (l *Ledger) Entries() []model.HistoryEntry {
	out := make([]model.HistoryEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Latest returns the most recent entry.
func (l *Ledger) Latest() (model.HistoryEntry, bool) {
	if len(l.entries) == 0 {
		return model.HistoryEntry{}, false
	}
	return l.entries[0], true
}

// Len returns the number of entries.
func (l *Ledger) Len() int { return len(l.entries) }
