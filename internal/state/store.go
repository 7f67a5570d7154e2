// Package state holds the in-memory event list shared between the synchronizer
// and the registration workflow. It replaces implicit global client state with
// an explicit store passed by reference to its consumers.
package state

import (
	"sync"

	"web3events/internal/domain"
)

// Store is the normalized in-memory event list. Local mutations apply
// immediately (optimistic); full snapshots from the ledger replace the list and
// win on conflict. Snapshots carry a sequence number taken when the fetch
// started, so a late-arriving response from an older fetch cannot overwrite a
// newer one.
type Store struct {
	mu      sync.RWMutex
	nextSeq uint64
	applied uint64
	events  map[string]*domain.Event
	order   []string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{events: make(map[string]*domain.Event)}
}

// BeginSync reserves a sequence number for a fetch that is about to start.
func (s *Store) BeginSync() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	return s.nextSeq
}

// ReplaceAll installs a ledger-sourced snapshot. It returns false and leaves
// the store untouched when a snapshot from a later fetch was already applied.
func (s *Store) ReplaceAll(seq uint64, events []*domain.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.applied {
		return false
	}
	s.applied = seq
	s.events = make(map[string]*domain.Event, len(events))
	s.order = make([]string, 0, len(events))
	for _, ev := range events {
		cp := cloneEvent(ev)
		s.events[cp.LedgerID] = cp
		s.order = append(s.order, cp.LedgerID)
	}
	return true
}

// Upsert inserts or replaces a single event.
func (s *Store) Upsert(ev *domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneEvent(ev)
	if _, ok := s.events[cp.LedgerID]; !ok {
		s.order = append(s.order, cp.LedgerID)
	}
	s.events[cp.LedgerID] = cp
}

// Get returns a copy of the event with the given ledger id.
func (s *Store) Get(ledgerID string) (*domain.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.events[ledgerID]
	if !ok {
		return nil, false
	}
	return cloneEvent(ev), true
}

// Snapshot returns copies of all events in enumeration order.
func (s *Store) Snapshot() []*domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Event, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneEvent(s.events[id]))
	}
	return out
}

// AddRegistered appends identity to the registered set of the event. Set
// semantics: adding an identity that is already present is a no-op.
func (s *Store) AddRegistered(ledgerID, identity string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[ledgerID]
	if !ok {
		return false
	}
	ev.Registered = appendUnique(ev.Registered, identity)
	return true
}

// AddAttended appends identity to the attended set of the event. The identity
// is also added to the registered set to keep attendance a subset of
// registrations.
func (s *Store) AddAttended(ledgerID, identity string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[ledgerID]
	if !ok {
		return false
	}
	ev.Registered = appendUnique(ev.Registered, identity)
	ev.Attended = appendUnique(ev.Attended, identity)
	return true
}

func appendUnique(set []string, v string) []string {
	for _, s := range set {
		if s == v {
			return set
		}
	}
	return append(set, v)
}

func cloneEvent(ev *domain.Event) *domain.Event {
	cp := *ev
	cp.Registered = append([]string{}, ev.Registered...)
	cp.Attended = append([]string{}, ev.Attended...)
	return &cp
}
