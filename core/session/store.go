package session

import (
	"sync"

	"github.com/pkg/errors"
)

type (
	// Keeper is persistent keyed storage for session state, namespaced by
	// client id. It is the source of truth across restarts.
	Keeper interface {
		Get(sid, key string) (string, bool, error)
		Set(sid, key, value string) error
		Delete(sid, key string) error
		// Update applies a batch of key changes in one atomic write; an
		// empty value deletes the key.
		Update(sid string, changes map[string]string) error
		// Drop removes every key under sid.
		Drop(sid string) error
		// SIDs lists all client ids with persisted state.
		SIDs() ([]string, error)
	}

	// Store is the single authoritative holder of one client's Session.
	// All mutations write through to the Keeper before the in-memory state
	// is published to subscribers.
	Store struct {
		sid    string
		keeper Keeper

		mu   sync.RWMutex
		cur  Session
		subs []func(Session)
	}
)

// Open hydrates a Store from persisted storage. Hydration completes before
// the Store is handed out, so consumers never need to consult the Keeper
// directly.
func Open(sid string, keeper Keeper) (*Store, error) {
	s := &Store{sid: sid, keeper: keeper}

	token, _, err := keeper.Get(sid, KeyToken)
	if err != nil {
		return nil, errors.Wrap(err, "reading token")
	}
	userType, _, err := keeper.Get(sid, KeyUserType)
	if err != nil {
		return nil, errors.Wrap(err, "reading userType")
	}
	orgID, _, err := keeper.Get(sid, KeyOrgID)
	if err != nil {
		return nil, errors.Wrap(err, "reading orgId")
	}

	role := Role(userType)
	if !role.Valid() {
		// unrecognized persisted role; treat as unauthenticated
		role = RoleNone
	}
	s.cur = Session{Role: role, OrganizationScope: orgID, AuthToken: token}
	return s, nil
}

func (s *Store) SID() string { return s.sid }

// Session returns the current in-memory snapshot. No side effects.
func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

func (s *Store) SetToken(token string) error {
	return s.Apply(Change{Token: &token})
}

func (s *Store) SetRole(role Role) error {
	return s.Apply(Change{Role: &role})
}

// SetOrganizationScope is unconditionally accepted; the org id may
// legitimately be set before the role is finalized during a login flow.
func (s *Store) SetOrganizationScope(id string) error {
	return s.Apply(Change{Scope: &id})
}

// Apply validates and repairs the change atomically, writes it through to
// the Keeper and only then publishes the new state to subscribers.
// Subscribers never observe a transiently-invalid intermediate state.
func (s *Store) Apply(ch Change) error {
	s.mu.Lock()

	next, err := ch.apply(s.cur)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if next == s.cur {
		s.mu.Unlock()
		return nil
	}

	if err := s.persist(next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cur = next
	subs := s.subs
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return nil
}

// Clear resets the session to unauthenticated and drops all persisted state.
// Used by logout; calling it twice is a no-op the second time.
func (s *Store) Clear() error {
	s.mu.Lock()

	if (s.cur == Session{}) {
		s.mu.Unlock()
		return nil
	}
	if err := s.keeper.Drop(s.sid); err != nil {
		s.mu.Unlock()
		return errors.Wrap(err, "dropping session keys")
	}
	s.cur = Session{}
	subs := s.subs
	s.mu.Unlock()

	for _, fn := range subs {
		fn(Session{})
	}
	return nil
}

// Sync re-reads persisted state and adopts it when the Keeper no longer
// matches the in-memory snapshot. Revocations made directly against the
// Keeper (the admin CLI, a logout on another replica) become visible
// without a restart. State changes are published like any other mutation.
func (s *Store) Sync() error {
	fresh, err := Open(s.sid, s.keeper)
	if err != nil {
		return err
	}
	next := fresh.cur

	s.mu.Lock()
	if next == s.cur {
		s.mu.Unlock()
		return nil
	}
	s.cur = next
	subs := s.subs
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return nil
}

// Subscribe registers fn to be called with every published session state.
func (s *Store) Subscribe(fn func(Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// persist write-through; batches the keys that changed into one atomic
// Keeper update so a partial failure cannot leave the persisted copy and the
// in-memory snapshot disagreeing. Caller holds s.mu.
func (s *Store) persist(next Session) error {
	changes := make(map[string]string, 3)
	if next.AuthToken != s.cur.AuthToken {
		changes[KeyToken] = next.AuthToken
	}
	if next.Role != s.cur.Role {
		changes[KeyUserType] = string(next.Role)
	}
	if next.OrganizationScope != s.cur.OrganizationScope {
		changes[KeyOrgID] = next.OrganizationScope
	}
	if len(changes) == 0 {
		return nil
	}
	return errors.Wrap(s.keeper.Update(s.sid, changes), "persisting session")
}
