package service

import (
	"testing"

	"tg-agegate/internal/config"
	"tg-agegate/internal/models"
)

// resetState gives each test a clean in-memory service (no repositories, as
// when the database is disabled).
func resetState(t *testing.T) {
	t.Helper()
	policyCache = models.NewPolicyCache()
	exemptionCache = models.NewExemptionCache()
	policyRepository = nil
	exemptionRepository = nil
	settingRepository = nil
	removalRepository = nil
	logChannelID.Store(0)

	Initialize(&config.Config{
		Policy: config.PolicyConfig{
			BanUnder:         "7d",
			KickUnder:        "30d",
			BanUnderSeconds:  604800,
			KickUnderSeconds: 2592000,
		},
	})
}

func TestGetPolicyMaterializesDefaults(t *testing.T) {
	resetState(t)

	policy, err := GetPolicy(-100)
	if err != nil {
		t.Fatal(err)
	}
	if policy.BanSeconds() != 604800 || policy.KickSeconds() != 2592000 {
		t.Errorf("defaults = ban %d / kick %d, want 604800 / 2592000", policy.BanSeconds(), policy.KickSeconds())
	}

	// A second read returns the same materialized record, not a new one.
	again, err := GetPolicy(-100)
	if err != nil {
		t.Fatal(err)
	}
	if again != policy {
		t.Error("second read did not return the materialized policy")
	}
}

func TestSetThresholdsPreserveEachOther(t *testing.T) {
	resetState(t)

	if err := SetBanThreshold(-200, 3600); err != nil {
		t.Fatal(err)
	}
	if err := SetKickThreshold(-200, 7200); err != nil {
		t.Fatal(err)
	}

	policy, err := GetPolicy(-200)
	if err != nil {
		t.Fatal(err)
	}
	if policy.BanSeconds() != 3600 {
		t.Errorf("ban threshold = %d, want 3600 (overwritten by kick set?)", policy.BanSeconds())
	}
	if policy.KickSeconds() != 7200 {
		t.Errorf("kick threshold = %d, want 7200", policy.KickSeconds())
	}
}

func TestSetThresholdRejectsNegative(t *testing.T) {
	resetState(t)

	if err := SetBanThreshold(-300, -1); err == nil {
		t.Error("SetBanThreshold(-1) succeeded, want error")
	}
	if err := SetKickThreshold(-300, -1); err == nil {
		t.Error("SetKickThreshold(-1) succeeded, want error")
	}
}

func TestGetPolicyUpgradesLegacyCacheEntry(t *testing.T) {
	resetState(t)

	// Simulate a legacy day-granularity record loaded at startup.
	legacy := &models.GroupPolicy{GroupID: -400, BanUnderDays: 2, KickUnderDays: 10}
	policyCache.Put(legacy)

	policy, err := GetPolicy(-400)
	if err != nil {
		t.Fatal(err)
	}
	if policy.BanSeconds() != 2*86400 {
		t.Errorf("upgraded ban threshold = %d, want %d", policy.BanSeconds(), 2*86400)
	}
	if policy.KickSeconds() != 10*86400 {
		t.Errorf("upgraded kick threshold = %d, want %d", policy.KickSeconds(), 10*86400)
	}

	// The upgrade replaces the cache entry instead of writing into the
	// record a concurrent reader may hold.
	if legacy.BanUnderSeconds != nil || legacy.KickUnderSeconds != nil {
		t.Error("legacy record was mutated in place")
	}
	if policyCache.Get(-400) == legacy {
		t.Error("cache still holds the unupgraded record")
	}
}

func TestSetThresholdDoesNotMutateSharedPolicy(t *testing.T) {
	resetState(t)

	// A join handler may hold this record while an admin changes the policy.
	held, err := GetPolicy(-500)
	if err != nil {
		t.Fatal(err)
	}
	heldBan := held.BanSeconds()

	if err := SetBanThreshold(-500, 60); err != nil {
		t.Fatal(err)
	}

	if held.BanSeconds() != heldBan {
		t.Errorf("held record changed from %d to %d", heldBan, held.BanSeconds())
	}

	current, err := GetPolicy(-500)
	if err != nil {
		t.Fatal(err)
	}
	if current.BanSeconds() != 60 {
		t.Errorf("new read = %d, want 60", current.BanSeconds())
	}
}

func TestExemptionLifecycle(t *testing.T) {
	resetState(t)

	if err := AddExemption(7); err != nil {
		t.Fatal(err)
	}
	if err := AddExemption(7); err != nil {
		t.Fatal(err) // duplicate add is a no-op
	}

	exempt, err := IsExempt(7)
	if err != nil || !exempt {
		t.Errorf("IsExempt(7) = %v, %v, want true", exempt, err)
	}

	ids, err := ListExemptions()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != 7 {
		t.Errorf("ListExemptions() = %v, want [7]", ids)
	}

	removed, err := RemoveExemption(7)
	if err != nil || !removed {
		t.Errorf("RemoveExemption(7) = %v, %v, want true", removed, err)
	}

	removed, err = RemoveExemption(7)
	if err != nil || removed {
		t.Errorf("RemoveExemption on absent id = %v, %v, want false, nil", removed, err)
	}
}

func TestNotificationTarget(t *testing.T) {
	resetState(t)

	if got := LogChannelID(); got != 0 {
		t.Fatalf("LogChannelID() = %d before any set, want 0", got)
	}

	if err := SetLogChannelID(-555); err != nil {
		t.Fatal(err)
	}
	if got := LogChannelID(); got != -555 {
		t.Errorf("LogChannelID() = %d, want -555", got)
	}

	// Most recent explicit set wins.
	if err := SetLogChannelID(-777); err != nil {
		t.Fatal(err)
	}
	if got := LogChannelID(); got != -777 {
		t.Errorf("LogChannelID() = %d, want -777", got)
	}
}

func TestNotificationTargetConfigFallback(t *testing.T) {
	resetState(t)
	logChannelID.Store(0)

	Initialize(&config.Config{
		Policy:       config.PolicyConfig{BanUnderSeconds: 604800, KickUnderSeconds: 2592000},
		Notification: config.NotificationConfig{LogChannelID: -123},
	})

	if got := LogChannelID(); got != -123 {
		t.Errorf("LogChannelID() = %d, want config fallback -123", got)
	}
}
