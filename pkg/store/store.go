// Package store is a best-effort JSON persistence adapter over a string-keyed
// byte store. Reads fall back to a default value and writes report success as
// a bool; no failure is ever surfaced to the caller.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
)

// ErrNotFound is returned by KV backends when a key holds no value.
var ErrNotFound = errors.New("store: key not found")

// KV defines the interface for key/value backends.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Read decodes the value stored under key into a T.
// It returns fallback when the key is missing, the backend fails or the
// stored document does not decode. Failures are reported through logger.
func Read[T any](ctx context.Context, logger *slog.Logger, kv KV, key string, fallback T) T {
	logger = orDefault(logger)
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		logger.Debug("Store miss", "key", key)
		return fallback
	}
	if err != nil {
		logger.Warn("Store read failed", "key", key, "error", err)
		return fallback
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		logger.Warn("Store value is not valid JSON", "key", key, "error", err)
		return fallback
	}
	return out
}

// Write encodes value as JSON and stores it under key.
// The result reports whether the value was persisted.
func Write(ctx context.Context, logger *slog.Logger, kv KV, key string, value any) bool {
	logger = orDefault(logger)
	raw, err := json.Marshal(value)
	if err != nil {
		logger.Warn("Store encode failed", "key", key, "error", err)
		return false
	}
	if err := kv.Set(ctx, key, raw); err != nil {
		logger.Warn("Store write failed", "key", key, "error", err)
		return false
	}
	logger.Debug("Store write", "key", key, "bytes", len(raw))
	return true
}

// Prepend inserts value at the front of the list stored under key.
// A missing or unreadable list is treated as empty. Read and write are not
// atomic, so concurrent writers to the same key may lose entries.
func Prepend[T any](ctx context.Context, logger *slog.Logger, kv KV, key string, value T) bool {
	list := Read(ctx, logger, kv, key, []T{})
	list = append([]T{value}, list...)
	return Write(ctx, logger, kv, key, list)
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
