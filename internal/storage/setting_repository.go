package storage

import (
	"errors"

	"tg-agegate/internal/models"

	"gorm.io/gorm"
)

// SettingRepository handles database operations for process-wide settings
type SettingRepository struct {
	db *gorm.DB
}

// NewSettingRepository creates a new SettingRepository
func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// MigrateTable ensures the Setting table exists
func (r *SettingRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.Setting{})
}

// Get returns the value for a key; ok is false when no row was ever persisted.
func (r *SettingRepository) Get(key string) (value string, ok bool, err error) {
	var setting models.Setting
	result := r.db.Where("`key` = ?", key).First(&setting)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, wrapDBError("get setting", result.Error)
	}
	return setting.Value, true, nil
}

// Set upserts a key/value pair in a single transaction.
func (r *SettingRepository) Set(key, value string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Setting
		result := tx.Where("`key` = ?", key).First(&existing)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return tx.Create(&models.Setting{Key: key, Value: value}).Error
			}
			return result.Error
		}
		existing.Value = value
		return tx.Save(&existing).Error
	})
	if err != nil {
		return wrapDBError("set setting", err)
	}
	return nil
}
