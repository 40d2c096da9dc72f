package index

import (
	"sync"
	"sync/atomic"
	"time"
)

// Catalog holds the live snapshot and the outcome of the latest refreshes.
//
// Readers call Current and never block. Writers build a Snapshot and Swap it in;
// a failed refresh only calls RecordFailure, so the previous snapshot keeps serving.
type Catalog struct {
	current atomic.Pointer[Snapshot]

	mu          sync.RWMutex
	populated   bool
	lastSuccess time.Time // Timestamp of last successful swap
	lastAttempt time.Time
	lastErr     error
	failures    int // consecutive failed refreshes
}

// NewCatalog creates a catalog serving an empty snapshot
func NewCatalog() *Catalog {
	c := &Catalog{}
	c.current.Store(EmptySnapshot())
	return c
}

// Current returns the live snapshot
func (c *Catalog) Current() *Snapshot {
	return c.current.Load()
}

// Swap installs next and returns the snapshot it replaced
func (c *Catalog) Swap(next *Snapshot) *Snapshot {
	prev := c.current.Swap(next)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.populated = true
	c.lastSuccess = now
	c.lastAttempt = now
	c.lastErr = nil
	c.failures = 0
	return prev
}

// Restore installs a snapshot recovered from a mirror. It marks the catalog populated
// but is not a refresh: the success time and failure count are left as they were.
func (c *Catalog) Restore(snap *Snapshot) *Snapshot {
	prev := c.current.Swap(snap)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.populated = true
	return prev
}

// RecordFailure notes a failed refresh without touching the live snapshot
func (c *Catalog) RecordFailure(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastAttempt = time.Now()
	c.lastErr = err
	c.failures++
}

// LastError is the error of the latest refresh, nil after a success
func (c *Catalog) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.lastErr
}

// Populated reports whether any snapshot has ever been swapped in
func (c *Catalog) Populated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.populated
}

// RefreshStatus is the health view of the cache.
type RefreshStatus struct {
	Populated           bool      `json:"populated"`
	Origin              string    `json:"origin"`
	Products            int       `json:"products"`
	Synonyms            int       `json:"synonyms"`
	LoadedAt            time.Time `json:"loadedAt"`
	LastSuccess         time.Time `json:"lastSuccess"`
	LastAttempt         time.Time `json:"lastAttempt"`
	LastError           string    `json:"lastError,omitempty"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
}

// Status returns counts and refresh bookkeeping in one consistent read
func (c *Catalog) Status() RefreshStatus {
	snap := c.Current()

	c.mu.RLock()
	defer c.mu.RUnlock()

	st := RefreshStatus{
		Populated:           c.populated,
		Origin:              snap.Origin(),
		Products:            snap.ProductCount(),
		Synonyms:            snap.SynonymCount(),
		LoadedAt:            snap.LoadedAt(),
		LastSuccess:         c.lastSuccess,
		LastAttempt:         c.lastAttempt,
		ConsecutiveFailures: c.failures,
	}
	if c.lastErr != nil {
		st.LastError = c.lastErr.Error()
	}
	return st
}
