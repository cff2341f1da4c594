package service

// IsExempt reports whether a user id is on the global exemption list. The
// write-through cache is warmed at startup, so misses only consult the
// database when a repository is configured.
func IsExempt(userID int64) (bool, error) {
	if exemptionCache.Contains(userID) {
		return true, nil
	}
	if exemptionRepository != nil {
		return exemptionRepository.Contains(userID)
	}
	return false, nil
}

// AddExemption inserts a user id into the exemption set; duplicates are a
// no-op.
func AddExemption(userID int64) error {
	if exemptionRepository != nil {
		if err := exemptionRepository.Add(userID); err != nil {
			return err
		}
	}
	exemptionCache.Add(userID)
	return nil
}

// RemoveExemption removes a user id and reports whether it was present.
func RemoveExemption(userID int64) (bool, error) {
	if exemptionRepository != nil {
		removed, err := exemptionRepository.Remove(userID)
		if err != nil {
			return false, err
		}
		exemptionCache.Remove(userID)
		return removed, nil
	}
	present := exemptionCache.Contains(userID)
	exemptionCache.Remove(userID)
	return present, nil
}

// ListExemptions returns all exempt user ids in ascending order.
func ListExemptions() ([]int64, error) {
	if exemptionRepository != nil {
		return exemptionRepository.List()
	}
	return exemptionCache.List(), nil
}
