package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/localnerve/wpq-drafts/internal/draft"
	"github.com/localnerve/wpq-drafts/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// DefaultTimeout bounds each storage round trip when none is configured.
const DefaultTimeout = 3 * time.Second

// UserKV is a draft.KV scoped to one user, backed by the user_storage_items table.
type UserKV struct {
	DB      *gorm.DB
	UserID  string
	Timeout time.Duration
}

// NewUserKV creates a key-value store for userID.
func NewUserKV(db *gorm.DB, userID string, timeout time.Duration) *UserKV {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &UserKV{DB: db, UserID: userID, Timeout: timeout}
}

func (kv *UserKV) session() (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), kv.Timeout)
	return kv.DB.WithContext(ctx), cancel
}

// Get returns the stored value for key; ok is false when nothing is stored.
func (kv *UserKV) Get(key string) ([]byte, bool, error) {
	db, cancel := kv.session()
	defer cancel()

	var item models.UserStorageItem
	err := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Where("user_id = ? AND storage_key = ?", kv.UserID, key).
		Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return item.StorageValue.Bytes(), true, nil
}

// Put upserts the value for key.
func (kv *UserKV) Put(key string, value []byte) error {
	db, cancel := kv.session()
	defer cancel()

	item := models.UserStorageItem{
		UserID:       kv.UserID,
		StorageKey:   key,
		StorageValue: models.NewJSON(value),
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"storage_value", "updated_at"}),
	}).Create(&item).Error
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (kv *UserKV) Delete(key string) error {
	db, cancel := kv.session()
	defer cancel()

	err := db.Where("user_id = ? AND storage_key = ?", kv.UserID, key).
		Delete(&models.UserStorageItem{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// DraftStoreFactory builds per-user draft stores over db.
func DraftStoreFactory(db *gorm.DB, timeout time.Duration) draft.StoreFactory {
	return func(userID string) draft.Store {
		return draft.NewKeyedStore(NewUserKV(db, userID, timeout))
	}
}
