package service

import (
	"fmt"

	"tg-agegate/internal/logger"
	"tg-agegate/internal/models"
)

// GetPolicy returns the admission policy for a group. A group seen for the
// first time gets a record materialized from the configured defaults; a
// legacy day-granularity record is upgraded to seconds and the upgrade is
// persisted so later reads skip the conversion. A storage failure is returned
// as-is: no decision may be made from defaults when the store is unreachable.
func GetPolicy(groupID int64) (*models.GroupPolicy, error) {
	if policy := policyCache.Get(groupID); policy != nil {
		return normalizeAndPersist(policy)
	}

	if policyRepository != nil {
		policy, err := policyRepository.GetPolicy(groupID)
		if err != nil {
			return nil, err
		}
		if policy != nil {
			policy, err = normalizeAndPersist(policy)
			if err != nil {
				return nil, err
			}
			policyCache.Put(policy)
			return policy, nil
		}
	}

	logger.Infof("Creating default policy for group %d", groupID)
	policy := defaultPolicy(groupID)
	if policyRepository != nil {
		if err := policyRepository.Save(policy); err != nil {
			return nil, err
		}
	}
	policyCache.Put(policy)
	return policy, nil
}

// SetBanThreshold sets the ban threshold for a group, preserving the current
// kick threshold (materializing defaults first when the group is new).
func SetBanThreshold(groupID int64, seconds int64) error {
	if seconds < 0 {
		return fmt.Errorf("ban threshold must be non-negative, got %d", seconds)
	}
	policy, err := GetPolicy(groupID)
	if err != nil {
		return err
	}
	updated := *policy
	updated.BanUnderSeconds = &seconds
	return savePolicy(&updated)
}

// SetKickThreshold sets the kick threshold for a group, preserving the
// current ban threshold.
func SetKickThreshold(groupID int64, seconds int64) error {
	if seconds < 0 {
		return fmt.Errorf("kick threshold must be non-negative, got %d", seconds)
	}
	policy, err := GetPolicy(groupID)
	if err != nil {
		return err
	}
	updated := *policy
	updated.KickUnderSeconds = &seconds
	return savePolicy(&updated)
}

func savePolicy(policy *models.GroupPolicy) error {
	if policyRepository != nil {
		if err := policyRepository.Save(policy); err != nil {
			return err
		}
	}
	policyCache.Put(policy)
	return nil
}

// normalizeAndPersist upgrades a legacy day-granularity record. The upgrade
// happens on a copy that replaces the cache entry: the record handed in may
// be shared with concurrent readers and is never written in place.
func normalizeAndPersist(policy *models.GroupPolicy) (*models.GroupPolicy, error) {
	upgraded := *policy
	if !upgraded.Normalize() {
		return policy, nil
	}
	logger.Infof("Upgraded legacy day-granularity policy for group %d (ban=%ds kick=%ds)",
		upgraded.GroupID, upgraded.BanSeconds(), upgraded.KickSeconds())
	if policyRepository != nil {
		if err := policyRepository.Save(&upgraded); err != nil {
			return nil, err
		}
	}
	policyCache.Put(&upgraded)
	return &upgraded, nil
}

func defaultPolicy(groupID int64) *models.GroupPolicy {
	ban := globalConfig.Policy.BanUnderSeconds
	kick := globalConfig.Policy.KickUnderSeconds
	return &models.GroupPolicy{
		GroupID:          groupID,
		BanUnderSeconds:  &ban,
		KickUnderSeconds: &kick,
	}
}
