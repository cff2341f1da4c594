package models

import (
	"sync"
	"time"
)

// GroupPolicy holds the admission thresholds for one managed group. Accounts
// younger than BanUnderSeconds are banned, younger than KickUnderSeconds are
// kicked. The two thresholds are independent; no ordering between them is
// enforced.
//
// Early deployments stored the thresholds in whole days. The *_under_seconds
// columns are nullable so an unmigrated row stays distinguishable from an
// explicit zero; Normalize upgrades it at read time.
type GroupPolicy struct {
	ID      uint  `gorm:"primaryKey;autoIncrement"`
	GroupID int64 `gorm:"uniqueIndex;not null"`

	BanUnderDays  int64 `gorm:"default:0"`
	KickUnderDays int64 `gorm:"default:0"`

	BanUnderSeconds  *int64
	KickUnderSeconds *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Normalize upgrades a legacy day-granularity record to second granularity in
// place (days x 86400) and reports whether anything changed. It never touches
// a second-granularity value that is already present, so applying it to a
// partially migrated row is safe.
func (p *GroupPolicy) Normalize() bool {
	changed := false
	if p.BanUnderSeconds == nil {
		v := p.BanUnderDays * 86400
		p.BanUnderSeconds = &v
		changed = true
	}
	if p.KickUnderSeconds == nil {
		v := p.KickUnderDays * 86400
		p.KickUnderSeconds = &v
		changed = true
	}
	return changed
}

// BanSeconds returns the ban threshold, zero when the record is unmigrated.
func (p *GroupPolicy) BanSeconds() int64 {
	if p.BanUnderSeconds == nil {
		return 0
	}
	return *p.BanUnderSeconds
}

// KickSeconds returns the kick threshold, zero when the record is unmigrated.
func (p *GroupPolicy) KickSeconds() int64 {
	if p.KickUnderSeconds == nil {
		return 0
	}
	return *p.KickUnderSeconds
}

// PolicyCache is an in-memory write-through cache of group policies keyed by
// group ID.
type PolicyCache struct {
	policies map[int64]*GroupPolicy
	mu       sync.RWMutex
}

func NewPolicyCache() *PolicyCache {
	return &PolicyCache{
		policies: make(map[int64]*GroupPolicy),
	}
}

func (c *PolicyCache) Get(groupID int64) *GroupPolicy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.policies[groupID]
}

func (c *PolicyCache) Put(policy *GroupPolicy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.policies[policy.GroupID] = policy
}

func (c *PolicyCache) Remove(groupID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.policies, groupID)
}
