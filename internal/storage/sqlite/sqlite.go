package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clipboard-registers/internal/storage"
)

// KVModel is one durable key-value row.
type KVModel struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName keeps the table name stable regardless of model renames.
func (KVModel) TableName() string {
	return "kv_items"
}

// SQLiteStore implements storage.KVStore on a local SQLite database.
type SQLiteStore struct {
	db *gorm.DB
}

// New creates a new SQLite key-value store instance
func New(config storage.Config) (*SQLiteStore, error) {
	if dir := filepath.Dir(config.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(config.DBPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Auto-migrate the schema
	if err := db.AutoMigrate(&KVModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// GetItem implements storage.KVStore.
func (s *SQLiteStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	var model KVModel
	err := s.db.WithContext(ctx).First(&model, "key = ?", key).Error
	if err == gorm.ErrRecordNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get item %s: %w", key, err)
	}
	return model.Value, true, nil
}

// SetItem implements storage.KVStore. The write is a single-row upsert,
// so readers see either the old value or the new one, never a mix.
func (s *SQLiteStore) SetItem(ctx context.Context, key string, value string) error {
	model := KVModel{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to set item %s: %w", key, err)
	}
	return nil
}

var _ storage.KVStore = (*SQLiteStore)(nil)
