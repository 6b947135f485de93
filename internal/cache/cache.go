// Package cache carries the invalidation signal the core emits after a
// successful write. The surrounding application owns the actual cache; the
// core only names the tags that went stale.
package cache

import "sync"

// Tags emitted by the commit path.
const (
	TagTransactions       = "transactions-data"
	TagTransactionsForCSV = "transactions-for-csv"
)

// Invalidator receives named invalidation tags.
type Invalidator interface {
	Invalidate(tags ...string)
}

// Memory is an in-process Invalidator that counts invalidations per tag.
// It stands in for the web application's cache layer in this deployment and
// in tests.
type Memory struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewMemory creates an empty in-memory invalidator.
func NewMemory() *Memory {
	return &Memory{counts: make(map[string]int)}
}

// Invalidate implements Invalidator.
func (m *Memory) Invalidate(tags ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tag := range tags {
		m.counts[tag]++
	}
}

// Count reports how often a tag has been invalidated.
func (m *Memory) Count(tag string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[tag]
}
