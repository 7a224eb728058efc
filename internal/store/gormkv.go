package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry is the single-table MySQL backing for the persistence primitive.
type KVEntry struct {
	Key   string `gorm:"primaryKey;size:191;column:k"`
	Value string `gorm:"type:longtext;column:v"`
}

func (KVEntry) TableName() string { return "kv_entries" }

// GormKV backs the persistence primitive with a key/value table, so the same
// blob contract runs on MySQL when Redis is not available.
type GormKV struct {
	db *gorm.DB
}

func NewGormKV(db *gorm.DB) (*GormKV, error) {
	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return nil, fmt.Errorf("migrate kv_entries: %w", err)
	}
	return &GormKV{db: db}, nil
}

func (g *GormKV) Get(ctx context.Context, key string) (string, bool, error) {
	var entry KVEntry
	err := g.db.WithContext(ctx).First(&entry, "k = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return entry.Value, true, nil
}

func (g *GormKV) Set(ctx context.Context, key, value string) error {
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "k"}},
		DoUpdates: clause.AssignmentColumns([]string{"v"}),
	}).Create(&KVEntry{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

func (g *GormKV) Remove(ctx context.Context, key string) error {
	if err := g.db.WithContext(ctx).Delete(&KVEntry{}, "k = ?", key).Error; err != nil {
		return fmt.Errorf("kv remove %s: %w", key, err)
	}
	return nil
}

var _ KV = (*GormKV)(nil)
