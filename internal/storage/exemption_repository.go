package storage

import (
	"errors"

	"tg-agegate/internal/models"

	"gorm.io/gorm"
)

// ExemptionRepository handles database operations for the global exemption set
type ExemptionRepository struct {
	db *gorm.DB
}

// NewExemptionRepository creates a new ExemptionRepository
func NewExemptionRepository(db *gorm.DB) *ExemptionRepository {
	return &ExemptionRepository{db: db}
}

// MigrateTable ensures the Exemption table exists
func (r *ExemptionRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.Exemption{})
}

// Contains reports whether a user id is in the persisted set.
func (r *ExemptionRepository) Contains(userID int64) (bool, error) {
	var count int64
	result := r.db.Model(&models.Exemption{}).Where("user_id = ?", userID).Count(&count)
	if result.Error != nil {
		return false, wrapDBError("check exemption", result.Error)
	}
	return count > 0, nil
}

// Add inserts a user id; adding an already-present id is a no-op.
func (r *ExemptionRepository) Add(userID int64) error {
	result := r.db.Where(models.Exemption{UserID: userID}).FirstOrCreate(&models.Exemption{UserID: userID})
	if result.Error != nil {
		return wrapDBError("add exemption", result.Error)
	}
	return nil
}

// Remove deletes a user id and reports whether it was present.
func (r *ExemptionRepository) Remove(userID int64) (bool, error) {
	result := r.db.Where("user_id = ?", userID).Delete(&models.Exemption{})
	if result.Error != nil {
		return false, wrapDBError("remove exemption", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// List returns all exempt user ids in ascending order.
func (r *ExemptionRepository) List() ([]int64, error) {
	var ids []int64
	result := r.db.Model(&models.Exemption{}).Order("user_id asc").Pluck("user_id", &ids)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapDBError("list exemptions", result.Error)
	}
	return ids, nil
}
