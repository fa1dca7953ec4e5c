package inmemory

import (
	"sync"
	"time"
)

// IdentityMap is a TTL-bounded set of tracked records keyed by id. Values are
// copied on the way in and out so callers never share an instance.
type IdentityMap[T any] struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[int]trackedItem[T]
}

type trackedItem[T any] struct {
	value     T
	expiresAt time.Time
}

func NewIdentityMap[T any](ttl time.Duration) *IdentityMap[T] {
	return &IdentityMap[T]{
		ttl:   ttl,
		items: make(map[int]trackedItem[T]),
	}
}

func (m *IdentityMap[T]) Get(id int) (*T, bool) {
	now := time.Now()

	m.mu.RLock()
	item, ok := m.items[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !item.expiresAt.After(now) {
		m.mu.Lock()
		item, ok = m.items[id]
		if ok && !item.expiresAt.After(now) {
			delete(m.items, id)
		}
		m.mu.Unlock()
		return nil, false
	}

	value := item.value
	return &value, true
}

func (m *IdentityMap[T]) Set(id int, item *T) {
	if item == nil || m.ttl <= 0 {
		m.Delete(id)
		return
	}

	m.mu.Lock()
	m.items[id] = trackedItem[T]{
		value:     *item,
		expiresAt: time.Now().Add(m.ttl),
	}
	m.mu.Unlock()
}

func (m *IdentityMap[T]) Delete(id int) {
	m.mu.Lock()
	delete(m.items, id)
	m.mu.Unlock()
}

func (m *IdentityMap[T]) Clear() {
	m.mu.Lock()
	m.items = make(map[int]trackedItem[T])
	m.mu.Unlock()
}

func (m *IdentityMap[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
