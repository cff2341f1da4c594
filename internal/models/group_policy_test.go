package models

import "testing"

func int64Ptr(v int64) *int64 { return &v }

func TestNormalizeLegacyRecord(t *testing.T) {
	p := &GroupPolicy{GroupID: 1, BanUnderDays: 7, KickUnderDays: 30}

	if !p.Normalize() {
		t.Fatal("Normalize() = false for a legacy record, want true")
	}
	if got := p.BanSeconds(); got != 7*86400 {
		t.Errorf("BanSeconds() = %d, want %d", got, 7*86400)
	}
	if got := p.KickSeconds(); got != 30*86400 {
		t.Errorf("KickSeconds() = %d, want %d", got, 30*86400)
	}
}

func TestNormalizePartiallyMigratedRecord(t *testing.T) {
	// Custom second-granularity ban value must survive; only the still-legacy
	// kick column is upgraded.
	p := &GroupPolicy{
		GroupID:         2,
		BanUnderDays:    7,
		KickUnderDays:   30,
		BanUnderSeconds: int64Ptr(3600),
	}

	if !p.Normalize() {
		t.Fatal("Normalize() = false for a partially migrated record, want true")
	}
	if got := p.BanSeconds(); got != 3600 {
		t.Errorf("BanSeconds() = %d, want 3600 (custom value reset)", got)
	}
	if got := p.KickSeconds(); got != 30*86400 {
		t.Errorf("KickSeconds() = %d, want %d", got, 30*86400)
	}
}

func TestNormalizeMigratedRecordIsNoop(t *testing.T) {
	p := &GroupPolicy{
		GroupID:          3,
		BanUnderSeconds:  int64Ptr(604800),
		KickUnderSeconds: int64Ptr(2592000),
	}

	if p.Normalize() {
		t.Error("Normalize() = true for a migrated record, want false")
	}
	if p.BanSeconds() != 604800 || p.KickSeconds() != 2592000 {
		t.Errorf("thresholds changed by Normalize: ban=%d kick=%d", p.BanSeconds(), p.KickSeconds())
	}
}

func TestExemptionCacheSetSemantics(t *testing.T) {
	c := NewExemptionCache()

	c.Add(42)
	c.Add(42)
	c.Add(7)

	ids := c.List()
	if len(ids) != 2 || ids[0] != 7 || ids[1] != 42 {
		t.Errorf("List() = %v, want [7 42]", ids)
	}

	c.Remove(99) // absent, no-op
	if got := c.List(); len(got) != 2 {
		t.Errorf("List() after removing absent id = %v, want unchanged", got)
	}

	c.Remove(42)
	if c.Contains(42) {
		t.Error("Contains(42) = true after Remove")
	}
}
