package models

import "time"

// RemovalRecord stores one carried-out admission action: which user was
// kicked or banned from which group, why, and whether an admin later lifted
// it. EventID correlates the row with the audit notice and log lines for the
// same join event.
type RemovalRecord struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	EventID   string `gorm:"size:36;index"`
	GroupID   int64  `gorm:"index;not null"`
	UserID    int64  `gorm:"index;not null"`
	Permanent bool   `gorm:"default:false"`
	Reason    string `gorm:"type:text"`
	Lifted    bool   `gorm:"default:false"`
	LiftedBy  string `gorm:"default:''"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
