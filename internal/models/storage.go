package models

import (
	"time"
)

// UserStorageItem is one key of a user's durable key-value storage. The
// draft form is kept here under a fixed key.
type UserStorageItem struct {
	ItemID       uint64 `gorm:"primaryKey;autoIncrement"`
	UserID       string `gorm:"size:64;not null;index:idx_user_storage_key,unique"`
	StorageKey   string `gorm:"size:191;not null;index:idx_user_storage_key,unique"`
	StorageValue JSON
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName overrides the table name for UserStorageItem
func (UserStorageItem) TableName() string {
	return "user_storage_items"
}
