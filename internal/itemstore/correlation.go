package itemstore

import (
	"sync"

	"github.com/roach88/auditlocal/internal/dataaccess"
)

// CorrelationCache links an opportunity id to the suggestions most recently
// attached to it. Each id has at most one entry; Put replaces it.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type CorrelationCache struct {
	mu      sync.Mutex
	entries map[string][]*dataaccess.Suggestion
}

// NewCorrelationCache creates an empty cache.
func NewCorrelationCache() *CorrelationCache {
	return &CorrelationCache{entries: make(map[string][]*dataaccess.Suggestion)}
}

// Put replaces the entry for opportunityID.
func (c *CorrelationCache) Put(opportunityID string, suggestions []*dataaccess.Suggestion) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[opportunityID] = clone(suggestions)
}

// Get returns the entry for opportunityID in insertion order.
func (c *CorrelationCache) Get(opportunityID string) ([]*dataaccess.Suggestion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[opportunityID]
	if !ok {
		return nil, false
	}
	return clone(s), true
}

// Len returns the number of opportunities with an entry.
func (c *CorrelationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func clone(s []*dataaccess.Suggestion) []*dataaccess.Suggestion {
	out := make([]*dataaccess.Suggestion, len(s))
	copy(out, s)
	return out
}
