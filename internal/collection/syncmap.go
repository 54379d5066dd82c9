package collection

import "sync"

// SyncMap is a minimal generic map safe for concurrent use. It backs the
// pending-call registry of the event-stream transport, hence Take: response
// correlation has to consume an entry atomically so a late duplicate frame
// cannot resolve the same call twice.
type SyncMap[K comparable, V any] struct {
	m   map[K]V
	mux sync.RWMutex
}

func NewSyncMap[K comparable, V any]() *SyncMap[K, V] {
	return &SyncMap[K, V]{m: make(map[K]V)}
}

func (m *SyncMap[K, V]) Get(k K) (V, bool) {
	m.mux.RLock()
	defer m.mux.RUnlock()
	v, ok := m.m[k]
	return v, ok
}

func (m *SyncMap[K, V]) Put(k K, v V) {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.m[k] = v
}

// Take removes the entry for k and returns it.
func (m *SyncMap[K, V]) Take(k K) (V, bool) {
	m.mux.Lock()
	defer m.mux.Unlock()
	v, ok := m.m[k]
	if ok {
		delete(m.m, k)
	}
	return v, ok
}

// Drain removes all entries and returns their values.
func (m *SyncMap[K, V]) Drain() []V {
	m.mux.Lock()
	defer m.mux.Unlock()
	ret := make([]V, 0, len(m.m))
	for k, v := range m.m {
		ret = append(ret, v)
		delete(m.m, k)
	}
	return ret
}

func (m *SyncMap[K, V]) Len() int {
	m.mux.RLock()
	defer m.mux.RUnlock()
	return len(m.m)
}
