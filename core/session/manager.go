package session

import "sync"

// Manager hands out Stores over one shared Keeper, one per dashboard client.
// It caches open Stores so all consumers of a client id share the same
// subscription list.
type Manager struct {
	keeper Keeper

	mu        sync.Mutex
	stores    map[string]*Store
	observers []func(sid string, s Session)
}

func NewManager(keeper Keeper) *Manager {
	return &Manager{
		keeper: keeper,
		stores: make(map[string]*Store),
	}
}

// Open returns the Store for sid, hydrating it from persisted storage on
// first access. A cached Store is re-synced against the Keeper first, so a
// session revoked out-of-band does not stay live in a running gateway; only
// stores holding an authenticated session are retained in the cache.
func (m *Manager) Open(sid string) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[sid]; ok {
		if err := s.Sync(); err != nil {
			return nil, err
		}
		if !s.Session().Authenticated() {
			delete(m.stores, sid)
		}
		return s, nil
	}

	s, err := Open(sid, m.keeper)
	if err != nil {
		return nil, err
	}
	for _, obs := range m.observers {
		obs := obs
		s.Subscribe(func(sess Session) { obs(sid, sess) })
	}
	// an arbitrary cookie value must not pin an empty store in memory
	if s.Session().Authenticated() {
		m.stores[sid] = s
	}
	return s, nil
}

// Observe registers fn on every Store the manager opens from now on.
// Used by session consumers that want to track all clients (audit logging).
func (m *Manager) Observe(fn func(sid string, s Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)

	for sid, s := range m.stores {
		sid := sid
		s.Subscribe(func(sess Session) { fn(sid, sess) })
	}
}
