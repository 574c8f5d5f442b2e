package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/amirasaad/currency-converter/pkg/domain"
	"github.com/amirasaad/currency-converter/pkg/store"
)

// File keeps every key in a single JSON document on disk.
// Values must themselves be JSON documents.
type File struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFile creates a file backend rooted at path.
// The file is created on first write.
func NewFile(path string, logger *slog.Logger) *File {
	return &File{path: path, logger: logger}
}

// Get implements store.KV.
func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return nil, &domain.PersistenceError{Op: "get", Key: key, Err: err}
	}
	raw, ok := doc[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return []byte(raw), nil
}

// Set implements store.KV.
func (f *File) Set(ctx context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return &domain.PersistenceError{Op: "set", Key: key, Err: errors.New("value is not a JSON document")}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		f.logger.Warn("Discarding unreadable store file", "path", f.path, "error", err)
		doc = map[string]json.RawMessage{}
	}
	doc[key] = json.RawMessage(append([]byte(nil), value...))

	if err := f.save(doc); err != nil {
		return &domain.PersistenceError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (f *File) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	doc := map[string]json.RawMessage{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal data: %w", err)
	}
	return doc, nil
}

// save replaces the store file atomically via a temp file in the same directory.
func (f *File) save(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}
	f.logger.Debug("Store file written", "path", f.path, "keys", len(doc))
	return nil
}

var _ store.KV = (*File)(nil)

// Close implements Backend.
func (f *File) Close() error {
	return nil
}
