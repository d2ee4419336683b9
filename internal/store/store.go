// Package store holds the client-side reservation cache the planning
// grid works against. All gesture-time mutation is local and optimistic;
// the remote data service is only written to on explicit confirmation.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"planboard/internal/models"
)

// Fetcher loads the authoritative reservation list from the data service.
type Fetcher interface {
	FetchReservations(ctx context.Context) ([]models.Reservation, error)
}

// Store is the in-memory reservation collection, keyed by id with
// secondary indices by room and by client. Index maintenance is
// incremental; the indices are rebuilt wholesale only on Refresh.
type Store struct {
	mu       sync.RWMutex
	byID     map[int64]models.Reservation
	byRoom   map[int64][]int64
	byClient map[int64][]int64
	logger   *zerolog.Logger
}

// New creates an empty store.
func New(logger *zerolog.Logger) *Store {
	return &Store{
		byID:     make(map[int64]models.Reservation),
		byRoom:   make(map[int64][]int64),
		byClient: make(map[int64][]int64),
		logger:   logger,
	}
}

// Refresh replaces the whole collection with the data service's current
// state. Any unconfirmed local edits are discarded by design: the remote
// list is the source of truth.
func (s *Store) Refresh(ctx context.Context, fetcher Fetcher) error {
	reservations, err := fetcher.FetchReservations(ctx)
	if err != nil {
		return fmt.Errorf("refresh reservations: %w", err)
	}
	s.SetAll(reservations)
	s.logger.Debug().Int("count", len(reservations)).Msg("reservation store refreshed")
	return nil
}

// SetAll replaces the collection with the given records and rebuilds
// both indices.
func (s *Store) SetAll(reservations []models.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID = make(map[int64]models.Reservation, len(reservations))
	s.byRoom = make(map[int64][]int64)
	s.byClient = make(map[int64][]int64)
	for _, r := range reservations {
		s.byID[r.ID] = r.Clone()
		s.byRoom[r.RoomID] = append(s.byRoom[r.RoomID], r.ID)
		s.byClient[r.ClientID] = append(s.byClient[r.ClientID], r.ID)
	}
}

// Get returns the reservation with the given id.
func (s *Store) Get(id int64) (models.Reservation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[id]
	if !ok {
		return models.Reservation{}, false
	}
	return r.Clone(), true
}

// ByRoom returns the room's reservations sorted by check-in date.
func (s *Store) ByRoom(roomID int64) []models.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.byRoom[roomID])
}

// ByClient returns all reservations of one client sorted by check-in date.
func (s *Store) ByClient(clientID int64) []models.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.byClient[clientID])
}

// Siblings returns the client's active reservations excluding the given
// one. These are the records a group date shift propagates to.
func (s *Store) Siblings(clientID, excludeID int64) []models.Reservation {
	all := s.ByClient(clientID)
	siblings := all[:0]
	for _, r := range all {
		if r.ID != excludeID && r.Active() {
			siblings = append(siblings, r)
		}
	}
	return siblings
}

// Apply replaces the given records by id, inserting unknown ones, and
// keeps the indices in step.
func (s *Store) Apply(reservations ...models.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range reservations {
		if old, ok := s.byID[r.ID]; ok {
			if old.RoomID != r.RoomID {
				s.byRoom[old.RoomID] = removeID(s.byRoom[old.RoomID], r.ID)
				s.byRoom[r.RoomID] = append(s.byRoom[r.RoomID], r.ID)
			}
			if old.ClientID != r.ClientID {
				s.byClient[old.ClientID] = removeID(s.byClient[old.ClientID], r.ID)
				s.byClient[r.ClientID] = append(s.byClient[r.ClientID], r.ID)
			}
		} else {
			s.byRoom[r.RoomID] = append(s.byRoom[r.RoomID], r.ID)
			s.byClient[r.ClientID] = append(s.byClient[r.ClientID], r.ID)
		}
		s.byID[r.ID] = r.Clone()
	}
}

// Snapshot returns a deep copy of the whole collection, suitable for a
// later Restore.
func (s *Store) Snapshot() []models.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]models.Reservation, 0, len(s.byID))
	for _, r := range s.byID {
		snapshot = append(snapshot, r.Clone())
	}
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].ID < snapshot[j].ID })
	return snapshot
}

// Restore resets the collection to a previously taken snapshot.
func (s *Store) Restore(snapshot []models.Reservation) {
	s.SetAll(snapshot)
}

// Len returns the number of records held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *Store) collect(ids []int64) []models.Reservation {
	out := make([]models.Reservation, 0, len(ids))
	for _, id := range ids {
		if r, ok := s.byID[id]; ok {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckIn.Before(out[j].CheckIn) })
	return out
}

func removeID(ids []int64, id int64) []int64 {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
