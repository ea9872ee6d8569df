package storage

import "context"

// KVStore defines the interface for durable key-value persistence.
// The register state lives under exactly one key.
type KVStore interface {
	// GetItem returns the value stored under key. The boolean reports
	// whether the key was present.
	GetItem(ctx context.Context, key string) (string, bool, error)

	// SetItem atomically overwrites the value stored under key. A
	// reader never observes a half-written value.
	SetItem(ctx context.Context, key string, value string) error
}

// Config holds storage configuration
type Config struct {
	DBPath      string // Path to SQLite database
	ContentPath string // Path to filesystem storage for register snapshots
}
