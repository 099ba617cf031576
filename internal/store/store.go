package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"my-discord-bot/internal/config"
)

// CorruptError means the persisted record exists but cannot be read. It
// is fatal for the run: delivering against a half-trusted record would
// re-send everything.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("sent-entries record at %s is unreadable: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

func IsCorrupt(err error) bool {
	var corruptErr *CorruptError
	return errors.As(err, &corruptErr)
}

// Store owns the persisted sent-entries record.
type Store interface {
	// Load reads the full record. Absent or empty storage yields an
	// empty record (first-run bootstrap).
	Load(ctx context.Context) (*Record, error)
	// Commit durably writes the record's additions in one transaction.
	Commit(ctx context.Context, record *Record) error
	// DeleteOlderThan prunes entries delivered more than age ago and
	// reports how many rows went away.
	DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error)
	Close() error
}

var factoryFuncs = map[string]func(string) (Store, error){}

func RegisterFactory(storageType string, fn func(string) (Store, error)) {
	factoryFuncs[storageType] = fn
}

func New(cfg config.StorageConfig) (Store, error) {
	storageType := cfg.Type
	if storageType == "" {
		storageType = "sqlite"
	}

	fn, exists := factoryFuncs[storageType]
	if !exists {
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}

	return fn(cfg.Path)
}
