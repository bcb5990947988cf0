package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KeyValueEntry is the row layout used by GormKeyValueStore.
type KeyValueEntry struct {
	Key       string `gorm:"column:entry_key;primaryKey;size:191"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName pins the table name regardless of naming strategy.
func (KeyValueEntry) TableName() string {
	return "kv_entries"
}

// GormKeyValueStore stores entries in a single SQL table (SQLite or PostgreSQL).
type GormKeyValueStore struct {
	db *gorm.DB
}

// NewGormKeyValueStore migrates the entry table and returns the store.
func NewGormKeyValueStore(db *gorm.DB) (*GormKeyValueStore, error) {
	if err := db.AutoMigrate(&KeyValueEntry{}); err != nil {
		return nil, err
	}
	return &GormKeyValueStore{db: db}, nil
}

func (g *GormKeyValueStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry KeyValueEntry
	err := g.db.WithContext(ctx).Where("entry_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return entry.Value, true, nil
}

func (g *GormKeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	entry := KeyValueEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (g *GormKeyValueStore) Delete(ctx context.Context, key string) error {
	return g.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&KeyValueEntry{}).Error
}
