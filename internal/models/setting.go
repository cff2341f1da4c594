package models

import "time"

// Setting is a single process-wide key/value row.
type Setting struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Key       string `gorm:"uniqueIndex;size:64;not null"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

// SettingLogChannelID is the key of the notification target channel. An
// explicitly persisted value always wins over the configuration default.
const SettingLogChannelID = "log_channel_id"
