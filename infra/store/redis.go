package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amirasaad/currency-converter/pkg/domain"
	"github.com/amirasaad/currency-converter/pkg/store"
	"github.com/redis/go-redis/v9"
)

// Redis stores each key as a plain redis string under a configurable prefix.
type Redis struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedis connects to the server at url (redis://...).
func NewRedis(url, prefix string, logger *slog.Logger) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewRedisWithOptions(opt, prefix, logger), nil
}

// NewRedisWithOptions creates a Redis backend from redis.Options.
func NewRedisWithOptions(opt *redis.Options, prefix string, logger *slog.Logger) *Redis {
	return &Redis{client: redis.NewClient(opt), prefix: prefix, logger: logger}
}

func (r *Redis) key(key string) string {
	return r.prefix + key
}

// Get implements store.KV.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("Redis store miss", "key", key)
		return nil, store.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Redis store get error", "key", key, "error", err)
		return nil, &domain.PersistenceError{Op: "get", Key: key, Err: err}
	}
	return val, nil
}

// Set implements store.KV.
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		r.logger.Error("Redis store set error", "key", key, "error", err)
		return &domain.PersistenceError{Op: "set", Key: key, Err: err}
	}
	r.logger.Debug("Redis store set", "key", key, "bytes", len(value))
	return nil
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

var _ store.KV = (*Redis)(nil)
