package models

import (
	"sort"
	"sync"
	"time"
)

// Exemption is one user identifier excluded from admission policy in every
// managed group. The set is process-wide, not per group.
type Exemption struct {
	ID        uint  `gorm:"primaryKey;autoIncrement"`
	UserID    int64 `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}

// ExemptionCache mirrors the persisted exemption set in memory for lock-cheap
// membership checks on every join event.
type ExemptionCache struct {
	ids map[int64]struct{}
	mu  sync.RWMutex
}

func NewExemptionCache() *ExemptionCache {
	return &ExemptionCache{
		ids: make(map[int64]struct{}),
	}
}

func (c *ExemptionCache) Contains(userID int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.ids[userID]
	return ok
}

func (c *ExemptionCache) Add(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[userID] = struct{}{}
}

func (c *ExemptionCache) Remove(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.ids, userID)
}

// List returns the cached user ids in ascending order.
func (c *ExemptionCache) List() []int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]int64, 0, len(c.ids))
	for id := range c.ids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Replace swaps the whole cached set, used when loading from the database.
func (c *ExemptionCache) Replace(userIDs []int64) {
	ids := make(map[int64]struct{}, len(userIDs))
	for _, id := range userIDs {
		ids[id] = struct{}{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = ids
}
