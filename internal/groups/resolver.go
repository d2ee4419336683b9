// Package groups resolves synchronized date shifts over a dossier: all
// active reservations of one client. The relation is derived, never
// stored; it only exists for the duration of a confirmed move or resize.
package groups

import (
	"fmt"

	"planboard/internal/availability"
	"planboard/internal/models"
	"planboard/internal/store"
)

// GroupConflictError reports the one validation failure that is shown to
// the operator: a sibling shift would collide with a third-party
// reservation. RoomNumber names the blocking room.
type GroupConflictError struct {
	RoomID     int64
	RoomNumber string
	SiblingID  int64
	BlockingID int64
}

func (e *GroupConflictError) Error() string {
	room := e.RoomNumber
	if room == "" {
		room = fmt.Sprintf("#%d", e.RoomID)
	}
	return fmt.Sprintf("group shift blocked: room %s is already occupied for the shifted dates", room)
}

// RoomNamer resolves a room id to its display number for conflict
// messages. May return false for unknown rooms.
type RoomNamer interface {
	RoomNumber(roomID int64) (string, bool)
}

// Resolver computes the sibling shifts of a group apply and validates
// them against third-party reservations. It never mutates the store:
// the caller either persists the returned batch or aborts everything.
type Resolver struct {
	store  *store.Store
	engine *availability.Engine
	rooms  RoomNamer
}

// NewResolver creates a resolver over the given store and engine.
func NewResolver(st *store.Store, engine *availability.Engine, rooms RoomNamer) *Resolver {
	return &Resolver{store: st, engine: engine, rooms: rooms}
}

// Siblings returns the dossier members a change would propagate to:
// active reservations of the same client, excluding the moved one.
func (r *Resolver) Siblings(change *models.PendingChange) []models.Reservation {
	return r.store.Siblings(change.Old.ClientID, change.Old.ID)
}

// Plan computes the shifted siblings for a group apply. The date deltas
// come from the pre-gesture values of the moved reservation; room
// reassignment never propagates, each sibling stays in its own room. If
// any shifted sibling would overlap a third-party reservation the whole
// plan fails with a GroupConflictError and nothing may be applied.
func (r *Resolver) Plan(change *models.PendingChange) ([]models.Reservation, error) {
	deltaIn, deltaOut := change.DeltaDays()
	siblings := r.Siblings(change)

	shifted := make([]models.Reservation, 0, len(siblings))
	for _, sibling := range siblings {
		candidate := sibling.Clone()
		candidate.CheckIn = sibling.CheckIn.AddDate(0, 0, deltaIn)
		candidate.CheckOut = sibling.CheckOut.AddDate(0, 0, deltaOut)
		if !candidate.CheckIn.Before(candidate.CheckOut) {
			return nil, r.conflict(&sibling, 0)
		}

		if blocking, ok := r.thirdPartyCollision(&candidate); ok {
			return nil, r.conflict(&sibling, blocking)
		}
		shifted = append(shifted, candidate)
	}
	return shifted, nil
}

// thirdPartyCollision scans the candidate's room for an active
// reservation of a different client overlapping the shifted interval.
// Same-client records are ignored: the dossier shifts as one.
func (r *Resolver) thirdPartyCollision(candidate *models.Reservation) (int64, bool) {
	for _, other := range r.store.ByRoom(candidate.RoomID) {
		if other.ID == candidate.ID || !other.Active() || other.ClientID == candidate.ClientID {
			continue
		}
		if availability.Overlaps(candidate.CheckIn, candidate.CheckOut, other.CheckIn, other.CheckOut) {
			return other.ID, true
		}
	}
	return 0, false
}

func (r *Resolver) conflict(sibling *models.Reservation, blockingID int64) *GroupConflictError {
	err := &GroupConflictError{
		RoomID:     sibling.RoomID,
		SiblingID:  sibling.ID,
		BlockingID: blockingID,
	}
	if r.rooms != nil {
		if number, ok := r.rooms.RoomNumber(sibling.RoomID); ok {
			err.RoomNumber = number
		}
	}
	return err
}
