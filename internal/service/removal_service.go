package service

import (
	"tg-agegate/internal/logger"
	"tg-agegate/internal/models"
)

// RecordRemoval stores a removal record after a kick or ban was carried out.
// Best-effort: recording failure never undoes the action.
func RecordRemoval(eventID string, groupID, userID int64, permanent bool, reason string) {
	if removalRepository == nil {
		return
	}
	record := &models.RemovalRecord{
		EventID:   eventID,
		GroupID:   groupID,
		UserID:    userID,
		Permanent: permanent,
		Reason:    reason,
	}
	if err := removalRepository.Create(record); err != nil {
		logger.Warningf("Error creating removal record: %v", err)
	}
}

// GetActiveRemovals retrieves all non-lifted removal records for a user.
func GetActiveRemovals(userID int64, groupID int64) ([]*models.RemovalRecord, error) {
	if removalRepository == nil {
		return nil, nil
	}
	return removalRepository.GetActiveByUser(userID, groupID)
}

// MarkRemovalLifted marks a user's removal records in a group as lifted.
func MarkRemovalLifted(groupID, userID int64, liftedBy string) {
	if removalRepository == nil {
		return
	}
	if err := removalRepository.MarkLifted(groupID, userID, liftedBy); err != nil {
		logger.Warningf("Error marking removal record lifted: %v", err)
	}
}
