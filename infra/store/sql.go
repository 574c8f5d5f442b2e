package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/currency-converter/pkg/domain"
	"github.com/amirasaad/currency-converter/pkg/store"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite" // Sqlite driver based on CGO
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// KVEntry is one row of the kv_entries table.
type KVEntry struct {
	Key       string `gorm:"primaryKey;size:255"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (KVEntry) TableName() string {
	return "kv_entries"
}

// SQL stores keys in a relational table through gorm.
type SQL struct {
	db     *gorm.DB
	logger *slog.Logger
}

// OpenSQL opens dsn with the sqlite or postgres dialect and migrates the table.
func OpenSQL(dialect, dsn, appEnv string, logger *slog.Logger) (*SQL, error) {
	var dialector gorm.Dialector
	switch dialect {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}

	logMode := gormlogger.Silent
	if appEnv == "development" {
		logMode = gormlogger.Warn
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", dialect, err)
	}
	return NewSQL(db, logger)
}

// NewSQL wraps an open connection and ensures the table exists.
func NewSQL(db *gorm.DB, logger *slog.Logger) (*SQL, error) {
	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_entries: %w", err)
	}
	return &SQL{db: db, logger: logger}, nil
}

// Get implements store.KV.
func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var entry KVEntry
	err := s.db.WithContext(ctx).Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: key}).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		s.logger.Error("SQL store get error", "key", key, "error", err)
		return nil, &domain.PersistenceError{Op: "get", Key: key, Err: err}
	}
	return []byte(entry.Value), nil
}

// Set implements store.KV as an upsert.
func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	entry := KVEntry{Key: key, Value: string(value), UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		s.logger.Error("SQL store set error", "key", key, "error", err)
		return &domain.PersistenceError{Op: "set", Key: key, Err: err}
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ store.KV = (*SQL)(nil)
