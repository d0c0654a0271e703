// Package store handles durable key-value persistence.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/verte-zerg/checkcard/internal/model"
)

// Keys used by the application.
const (
	KeyHistory = "history"
	KeyDeck    = "custom-deck"
)

// KV is a string-valued key-value store that survives restarts.
type KV interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open opens the backend selected by cfg.Driver.
func Open(cfg model.StoreConfig, logger *slog.Logger) (KV, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return OpenSQLite(cfg.Path)
	case "badger":
		return OpenBadger(BadgerConfig{Path: cfg.Path, SyncWrites: true, Logger: logger})
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// PutJSON encodes v and stores it under key.
func PutJSON(ctx context.Context, kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := kv.Put(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}
