package store

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/amirasaad/currency-converter/pkg/config"
	"github.com/amirasaad/currency-converter/pkg/store"
)

// Backend is a store.KV that holds resources until closed.
type Backend interface {
	store.KV
	io.Closer
}

// New builds the backend selected by cfg.Driver: file, memory, redis or sql.
func New(cfg *config.Store, appEnv string, logger *slog.Logger) (Backend, error) {
	logger = logger.With("store", cfg.Driver)
	switch cfg.Driver {
	case "", "file":
		return NewFile(cfg.Path, logger), nil
	case "memory":
		return NewMemory(), nil
	case "redis":
		r, err := NewRedis(cfg.RedisURL, cfg.KeyPrefix, logger)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "sql":
		s, err := OpenSQL(cfg.Dialect, cfg.DSN, appEnv, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

var (
	_ Backend = (*File)(nil)
	_ Backend = (*Memory)(nil)
	_ Backend = (*Redis)(nil)
	_ Backend = (*SQL)(nil)
)
