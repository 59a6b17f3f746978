package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"songshelf/db"
	"songshelf/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CustomPlaylistRecord is one owner's serialized custom playlist.
type CustomPlaylistRecord struct {
	StorageKey string    `gorm:"column:storage_key;primaryKey;size:128"`
	Payload    string    `gorm:"column:payload;type:mediumtext;not null"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

// TableName keeps the table name stable regardless of naming strategy.
func (CustomPlaylistRecord) TableName() string {
	return "custom_playlists"
}

// GormCustomPlaylistRepository stores custom playlists in MySQL, one row per owner.
type GormCustomPlaylistRepository struct {
	db *gorm.DB
}

// NewGormCustomPlaylistRepository creates the repository and migrates its table.
func NewGormCustomPlaylistRepository(gdb *gorm.DB) (*GormCustomPlaylistRepository, error) {
	if err := db.AutoMigrateModels(gdb, &CustomPlaylistRecord{}); err != nil {
		return nil, err
	}
	return &GormCustomPlaylistRepository{db: gdb}, nil
}

// LoadCustom returns the owner's playlist; no row is an empty list.
func (r *GormCustomPlaylistRepository) LoadCustom(ctx context.Context, owner string) ([]model.Track, error) {
	key, err := OwnerKey(owner)
	if err != nil {
		return nil, err
	}

	var rec CustomPlaylistRecord
	err = r.db.WithContext(ctx).Where("storage_key = ?", key).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []model.Track{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query custom playlist %s: %w", key, err)
	}
	return DecodeTracks([]byte(rec.Payload))
}

// SaveCustom upserts the whole serialized playlist in one statement.
func (r *GormCustomPlaylistRepository) SaveCustom(ctx context.Context, owner string, tracks []model.Track) error {
	key, err := OwnerKey(owner)
	if err != nil {
		return err
	}
	data, err := EncodeTracks(tracks)
	if err != nil {
		return err
	}

	rec := CustomPlaylistRecord{StorageKey: key, Payload: string(data), UpdatedAt: time.Now()}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save custom playlist %s: %w", key, err)
	}
	return nil
}
