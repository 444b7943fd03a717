package inmemkv

import (
	"sync"

	"github.com/trezcool/darasa/core/session"
)

// Store is an in-memory session.Keeper. State does not survive restarts;
// meant for tests and local development.
type Store struct {
	mu    sync.RWMutex
	table map[string]map[string]string // {sid: {key: value}}
}

var _ session.Keeper = (*Store)(nil)

func New() *Store {
	return &Store{table: make(map[string]map[string]string)}
}

func (s *Store) Get(sid, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns, ok := s.table[sid]
	if !ok {
		return "", false, nil
	}
	val, ok := ns[key]
	return val, ok, nil
}

func (s *Store) Set(sid, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.table[sid]
	if !ok {
		ns = make(map[string]string)
		s.table[sid] = ns
	}
	ns[key] = value
	return nil
}

func (s *Store) Update(sid string, changes map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.table[sid]
	if !ok {
		ns = make(map[string]string, len(changes))
		s.table[sid] = ns
	}
	for key, value := range changes {
		if value == "" {
			delete(ns, key)
		} else {
			ns[key] = value
		}
	}
	if len(ns) == 0 {
		delete(s.table, sid)
	}
	return nil
}

func (s *Store) Delete(sid, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ns, ok := s.table[sid]; ok {
		delete(ns, key)
		if len(ns) == 0 {
			delete(s.table, sid)
		}
	}
	return nil
}

func (s *Store) Drop(sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.table, sid)
	return nil
}

func (s *Store) SIDs() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sids := make([]string, 0, len(s.table))
	for sid := range s.table {
		sids = append(sids, sid)
	}
	return sids, nil
}
