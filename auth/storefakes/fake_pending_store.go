package fakependingstore

import (
	"sync"

	"github.com/sellerlegend/go-sellerlegend/auth"
)

var _ auth.PendingStore = (*FakePendingStore)(nil)

// FakePendingStore is a map-backed PendingStore for tests, with call counters
// so tests can assert how authorization state is issued and consumed.
type FakePendingStore struct {
	pending      map[string]auth.PendingAuthorization
	SaveCalls    int
	ConsumeCalls int
	lock         sync.RWMutex
}

func NewFakePendingStore() *FakePendingStore {
	return &FakePendingStore{
		pending: make(map[string]auth.PendingAuthorization),
	}
}

func (ps *FakePendingStore) Save(pending auth.PendingAuthorization) error {
	ps.lock.Lock()
	defer ps.lock.Unlock()

	ps.SaveCalls++
	ps.pending[pending.State] = pending
	return nil
}

func (ps *FakePendingStore) Consume(state string) (auth.PendingAuthorization, bool) {
	ps.lock.Lock()
	defer ps.lock.Unlock()

	ps.ConsumeCalls++
	pending, ok := ps.pending[state]
	if !ok {
		return auth.PendingAuthorization{}, false
	}
	delete(ps.pending, state)
	return pending, true
}

// Len reports the number of unconsumed entries.
func (ps *FakePendingStore) Len() int {
	ps.lock.RLock()
	defer ps.lock.RUnlock()

	return len(ps.pending)
}
