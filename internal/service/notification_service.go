package service

import (
	"strconv"

	"go.uber.org/atomic"

	"tg-agegate/internal/logger"
	"tg-agegate/internal/models"
)

// logChannelID is the process-wide notification target. Concurrent event
// handlers read it while an admin command may be writing it, so it lives in
// an atomic: readers always observe either the old or the new value.
var logChannelID atomic.Int64

// LogChannelID returns the active notification target channel, 0 when none
// is configured.
func LogChannelID() int64 {
	return logChannelID.Load()
}

// SetLogChannelID persists a new notification target and makes it visible to
// in-flight handlers. The most recent explicit set wins.
func SetLogChannelID(channelID int64) error {
	if settingRepository != nil {
		if err := settingRepository.Set(models.SettingLogChannelID, strconv.FormatInt(channelID, 10)); err != nil {
			return err
		}
	}
	logChannelID.Store(channelID)
	return nil
}

// loadNotificationTarget resolves the startup value: a persisted setting row
// wins, the configured default applies only when nothing was ever persisted.
func loadNotificationTarget() {
	if settingRepository != nil {
		value, ok, err := settingRepository.Get(models.SettingLogChannelID)
		if err != nil {
			logger.Warningf("Error loading notification target: %v", err)
		} else if ok {
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				logger.Warningf("Ignoring malformed persisted notification target %q", value)
			} else {
				logChannelID.Store(id)
				logger.Infof("Notification target loaded from database: %d", id)
				return
			}
		}
	}
	if globalConfig != nil && globalConfig.Notification.LogChannelID != 0 {
		logChannelID.Store(globalConfig.Notification.LogChannelID)
		logger.Infof("Notification target from configuration: %d", globalConfig.Notification.LogChannelID)
	}
}
