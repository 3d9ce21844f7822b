// Package credcache holds directory credentials for a short window after a
// successful login so that sync and transfer operations can re-bind on the
// user's behalf without prompting again. Entries live in memory only and are
// never written to durable storage or logs.
package credcache

import (
	"sync"
	"time"
)

const DefaultTTL = 5 * time.Minute

type Credentials struct {
	Login    string
	Password string
}

type entry struct {
	creds     Credentials
	expiresAt time.Time
}

// Cache is an in-memory TTL store keyed by local user id. Expiry is checked
// under the same lock as the read; there is no window in which an expired
// credential can be observed.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[int64]entry
	now     func() time.Time
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[int64]entry),
		now:     time.Now,
	}
}

// Store saves credentials for userID, resetting the expiry window.
func (c *Cache) Store(userID int64, creds Credentials) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = entry{creds: creds, expiresAt: c.now().Add(c.ttl)}
}

// Get returns the cached credentials for userID. A miss (absent or expired)
// means the caller must ask the user to authenticate again; expired entries
// are removed on the spot.
func (c *Cache) Get(userID int64) (Credentials, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[userID]
	if !ok {
		return Credentials{}, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, userID)
		return Credentials{}, false
	}
	return e.creds, true
}

// Delete drops the entry for userID, e.g. on logout.
func (c *Cache) Delete(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}
