package storage

import (
	"time"

	"tg-agegate/internal/models"

	"gorm.io/gorm"
)

// RemovalRepository handles database operations for RemovalRecord
type RemovalRepository struct {
	db *gorm.DB
}

// NewRemovalRepository creates a new RemovalRepository
func NewRemovalRepository(db *gorm.DB) *RemovalRepository {
	return &RemovalRepository{db: db}
}

// MigrateTable ensures the RemovalRecord table exists
func (r *RemovalRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.RemovalRecord{})
}

// Create inserts a new RemovalRecord
func (r *RemovalRepository) Create(record *models.RemovalRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return wrapDBError("create removal record", err)
	}
	return nil
}

// GetActiveByUser returns all non-lifted records for a user, optionally
// narrowed to one group (groupID of 0 means all groups).
func (r *RemovalRepository) GetActiveByUser(userID int64, groupID int64) ([]*models.RemovalRecord, error) {
	var records []*models.RemovalRecord
	query := r.db.Where("user_id = ? AND lifted = ?", userID, false)
	if groupID != 0 {
		query = query.Where("group_id = ?", groupID)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, wrapDBError("list removal records", err)
	}
	return records, nil
}

// MarkLifted flags a user's active records in a group as lifted by an admin.
func (r *RemovalRepository) MarkLifted(groupID, userID int64, liftedBy string) error {
	result := r.db.Model(&models.RemovalRecord{}).
		Where("group_id = ? AND user_id = ? AND lifted = ?", groupID, userID, false).
		Updates(map[string]interface{}{"lifted": true, "updated_at": time.Now(), "lifted_by": liftedBy})
	if result.Error != nil {
		return wrapDBError("mark removal lifted", result.Error)
	}
	return nil
}
