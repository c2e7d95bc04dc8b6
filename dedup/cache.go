package dedup

import "sync"

// SessionCache remembers fingerprints already judged duplicate during the
// current ingestion run, so repeat sightings skip the store round trip.
// It is an optimization only: a miss never means "new", it means "not yet
// proven duplicate this run". The cache is owned by one run and passed in
// explicitly; it is never persisted.
type SessionCache struct {
	mu   sync.RWMutex
	seen map[string]*Result
}

// NewSessionCache returns an empty cache for one ingestion run.
func NewSessionCache() *SessionCache {
	return &SessionCache{seen: make(map[string]*Result)}
}

// Seen returns the duplicate verdict previously recorded for fp, if any.
func (c *SessionCache) Seen(fp string) (*Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.seen[fp]
	return r, ok
}

// MarkDuplicate records a duplicate verdict for fp. Entries are never
// removed within a run.
func (c *SessionCache) MarkDuplicate(fp string, result *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen[fp] = result
}

// Len reports how many fingerprints have been marked this run.
func (c *SessionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.seen)
}
