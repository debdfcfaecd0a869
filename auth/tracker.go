package auth

import (
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// PendingAuthorization records one outstanding authorization-URL issuance
// between building the URL and consuming the provider's redirect callback.
type PendingAuthorization struct {
	State        string
	RedirectURI  string
	Scope        string
	CodeVerifier string // set only when PKCE is enabled
	CreatedAt    time.Time
}

// PendingStore tracks outstanding authorization requests keyed by their CSRF
// state value. Consume is single-shot: the first call for a state removes the
// entry, so a replayed state can never validate twice.
type PendingStore interface {
	Save(pending PendingAuthorization) error
	Consume(state string) (PendingAuthorization, bool)
}

var _ PendingStore = (*PendingCache)(nil)

// PendingCache is the default PendingStore, an in-memory TTL cache that
// evicts abandoned authorization requests so they cannot pile up.
type PendingCache struct {
	cache *ttlcache.Cache[string, PendingAuthorization]
	lock  sync.Mutex
}

// NewPendingCache creates a PendingCache whose entries expire after ttl.
func NewPendingCache(ttl time.Duration) *PendingCache {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, PendingAuthorization](ttl),
		ttlcache.WithDisableTouchOnHit[string, PendingAuthorization](),
	)

	// Start the expiry loop
	go cache.Start()

	return &PendingCache{cache: cache}
}

// Save registers a pending authorization under its state value.
func (pc *PendingCache) Save(pending PendingAuthorization) error {
	pc.lock.Lock()
	defer pc.lock.Unlock()

	pc.cache.Set(pending.State, pending, ttlcache.DefaultTTL)
	return nil
}

// Consume removes and returns the pending authorization for state. A second
// call with the same state reports false, as does an expired entry.
func (pc *PendingCache) Consume(state string) (PendingAuthorization, bool) {
	pc.lock.Lock()
	defer pc.lock.Unlock()

	item := pc.cache.Get(state)
	if item == nil {
		return PendingAuthorization{}, false
	}
	pc.cache.Delete(state)
	return item.Value(), true
}

// Close stops the cache's expiry loop.
func (pc *PendingCache) Close() {
	pc.cache.Stop()
}
