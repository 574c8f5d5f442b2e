package history

import (
	"context"
	"log/slog"
	"sync"

	"github.com/amirasaad/currency-converter/pkg/domain"
	"github.com/amirasaad/currency-converter/pkg/store"
)

// Service is a read-side view of the stored conversion history.
// The cached list is only as fresh as the last Refresh.
type Service struct {
	kv     store.KV
	logger *slog.Logger

	mu      sync.Mutex
	loaded  bool
	entries domain.ConversionHistory
}

// New creates a history view reading from kv.
func New(kv store.KV, logger *slog.Logger) *Service {
	return &Service{kv: kv, logger: logger}
}

// Entries returns the history, newest first, loading it on first use.
func (s *Service) Entries(ctx context.Context) domain.ConversionHistory {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if !loaded {
		return s.Refresh(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.entries)
}

// Refresh re-reads the history from the store.
func (s *Service) Refresh(ctx context.Context) domain.ConversionHistory {
	entries := store.Read(ctx, s.logger, s.kv, domain.HistoryKey, domain.ConversionHistory{})
	s.logger.Debug("History refreshed", "count", len(entries))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	s.loaded = true
	return clone(entries)
}

// Limit returns at most n entries from the front of h. n <= 0 means all.
func Limit(h domain.ConversionHistory, n int) domain.ConversionHistory {
	if n <= 0 || n >= len(h) {
		return h
	}
	return h[:n]
}

func clone(h domain.ConversionHistory) domain.ConversionHistory {
	out := make(domain.ConversionHistory, len(h))
	copy(out, h)
	return out
}
