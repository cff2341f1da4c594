package service

import (
	"tg-agegate/internal/config"
	"tg-agegate/internal/logger"
	"tg-agegate/internal/models"
	"tg-agegate/internal/storage"
)

var (
	policyCache    = models.NewPolicyCache()
	exemptionCache = models.NewExemptionCache()

	policyRepository    *storage.PolicyRepository
	exemptionRepository *storage.ExemptionRepository
	settingRepository   *storage.SettingRepository
	removalRepository   *storage.RemovalRepository

	globalConfig *config.Config
)

// Initialize initializes the service with configuration
func Initialize(cfg *config.Config) {
	globalConfig = cfg
	loadNotificationTarget()
}

// InitRepositories initializes the repositories if database is enabled and
// warms the in-memory caches from persisted state.
func InitRepositories() {
	if storage.DB == nil {
		logger.Info("Database is not enabled, running with in-memory state only")
		return
	}

	policyRepository = storage.NewPolicyRepository(storage.DB)
	if err := policyRepository.MigrateTable(); err != nil {
		logger.Warningf("Error migrating GroupPolicy table: %v", err)
	}
	if err := loadPolicies(); err != nil {
		logger.Warningf("Error loading group policies from database: %v", err)
	}

	exemptionRepository = storage.NewExemptionRepository(storage.DB)
	if err := exemptionRepository.MigrateTable(); err != nil {
		logger.Warningf("Error migrating Exemption table: %v", err)
	}
	if err := loadExemptions(); err != nil {
		logger.Warningf("Error loading exemptions from database: %v", err)
	}

	settingRepository = storage.NewSettingRepository(storage.DB)
	if err := settingRepository.MigrateTable(); err != nil {
		logger.Warningf("Error migrating Setting table: %v", err)
	}
	loadNotificationTarget()

	removalRepository = storage.NewRemovalRepository(storage.DB)
	if err := removalRepository.MigrateTable(); err != nil {
		logger.Warningf("Error migrating RemovalRecord table: %v", err)
	}
}

func loadPolicies() error {
	policies, err := policyRepository.GetAllPolicies()
	if err != nil {
		return err
	}
	for _, policy := range policies {
		policyCache.Put(policy)
	}
	logger.Infof("Loaded %d group policies from database into cache", len(policies))
	return nil
}

func loadExemptions() error {
	ids, err := exemptionRepository.List()
	if err != nil {
		return err
	}
	exemptionCache.Replace(ids)
	logger.Infof("Loaded %d exemptions from database into cache", len(ids))
	return nil
}
