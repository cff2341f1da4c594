package storage

import (
	"errors"

	"tg-agegate/internal/models"

	"gorm.io/gorm"
)

// PolicyRepository handles database operations for GroupPolicy
type PolicyRepository struct {
	db *gorm.DB
}

// NewPolicyRepository creates a new PolicyRepository
func NewPolicyRepository(db *gorm.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

// MigrateTable ensures the GroupPolicy table exists with the right schema
func (r *PolicyRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.GroupPolicy{})
}

// GetPolicy retrieves the policy row for a group, nil when none exists.
func (r *PolicyRepository) GetPolicy(groupID int64) (*models.GroupPolicy, error) {
	var policy models.GroupPolicy
	result := r.db.Where("group_id = ?", groupID).First(&policy)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapDBError("get policy", result.Error)
	}
	return &policy, nil
}

// Save upserts a policy row as one unit so two racing set-operations cannot
// interleave partial writes.
func (r *PolicyRepository) Save(policy *models.GroupPolicy) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.GroupPolicy
		result := tx.Where("group_id = ?", policy.GroupID).First(&existing)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return tx.Create(policy).Error
			}
			return result.Error
		}

		policy.ID = existing.ID
		policy.CreatedAt = existing.CreatedAt
		return tx.Save(policy).Error
	})
	if err != nil {
		return wrapDBError("save policy", err)
	}
	return nil
}

// GetAllPolicies retrieves every stored group policy, used to warm the cache.
func (r *PolicyRepository) GetAllPolicies() ([]*models.GroupPolicy, error) {
	var policies []*models.GroupPolicy
	result := r.db.Find(&policies)
	if result.Error != nil {
		return nil, wrapDBError("list policies", result.Error)
	}
	return policies, nil
}
