package gesture

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"planboard/internal/availability"
	"planboard/internal/geometry"
	"planboard/internal/models"
	"planboard/internal/store"
)

var (
	// ErrBusy means another gesture is already active.
	ErrBusy = errors.New("another gesture is active")
	// ErrLockedStatus means the reservation may not be moved or resized at all.
	ErrLockedStatus = errors.New("reservation status is locked")
	// ErrCheckedIn means the left edge of a checked-in stay may not be resized.
	ErrCheckedIn = errors.New("check-in date of a checked-in stay is frozen")
	// ErrNotFound means the reservation is not in the store.
	ErrNotFound = errors.New("reservation not found")
	// ErrNoGesture means the call does not match the current gesture state.
	ErrNoGesture = errors.New("no matching gesture in progress")
	// ErrPastDate means the placement would start before today.
	ErrPastDate = errors.New("cannot place a stay before today")
	// ErrOverlap means the placement collides with another reservation.
	ErrOverlap = errors.New("placement overlaps an existing reservation")
	// ErrInvalidSpan means the stay would shrink below one night.
	ErrInvalidSpan = errors.New("stay must keep at least one night")
)

type activeGesture struct {
	original  models.Reservation
	direction models.ResizeDirection
	candidate models.Reservation // last valid live state during a resize
}

// Controller tracks one pointer gesture at a time, validates candidate
// placements against the availability engine and either stages them as a
// PendingChange or rejects them silently. It mutates the store only for
// valid placements and always knows how to put the pre-gesture record
// back.
type Controller struct {
	store  *store.Store
	engine *availability.Engine
	fsm    *FSM
	state  State
	active *activeGesture
	now    func() time.Time
	logger *zerolog.Logger
}

// NewController creates a controller over the given store and engine.
// now supplies "today" for the past-date guards and is injectable for
// tests; nil means time.Now.
func NewController(st *store.Store, engine *availability.Engine, now func() time.Time, logger *zerolog.Logger) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{
		store:  st,
		engine: engine,
		fsm:    NewFSM(),
		state:  StateIdle,
		now:    now,
		logger: logger,
	}
}

// State returns the current gesture state.
func (c *Controller) State() State {
	return c.state
}

// Busy reports whether a gesture or an unconfirmed change is active.
// Starting any new gesture while busy is refused.
func (c *Controller) Busy() bool {
	return c.state != StateIdle
}

// BeginMove starts a whole-bar move gesture on the given reservation.
func (c *Controller) BeginMove(id int64) error {
	return c.begin(id, StateDragging, models.ResizeNone)
}

// BeginResize starts an edge-resize gesture. The left edge of a
// checked-in stay is not resizable at all.
func (c *Controller) BeginResize(id int64, direction models.ResizeDirection) error {
	if direction != models.ResizeLeft && direction != models.ResizeRight {
		return fmt.Errorf("%w: direction %q", ErrNoGesture, direction)
	}
	return c.begin(id, StateResizing, direction)
}

func (c *Controller) begin(id int64, to State, direction models.ResizeDirection) error {
	if !c.fsm.CanTransition(c.state, to) {
		return ErrBusy
	}
	r, ok := c.store.Get(id)
	if !ok {
		return ErrNotFound
	}
	if r.Status.Locked() {
		return ErrLockedStatus
	}
	if direction == models.ResizeLeft && r.Status == models.StatusCheckedIn {
		return ErrCheckedIn
	}

	c.active = &activeGesture{original: r, direction: direction, candidate: r.Clone()}
	c.state = to
	c.logger.Debug().Int64("reservation", id).Str("state", string(to)).Msg("gesture started")
	return nil
}

// EndMove finishes a move gesture with the accumulated pointer shift.
// visibleRooms is the currently filtered room list in display order; the
// vertical shift moves the bar within that list, clamped to its bounds.
// A zero shift is a click: the gesture ends with no change and no
// pending confirmation. An invalid placement rejects the gesture
// outright, leaving the store untouched.
func (c *Controller) EndMove(shift geometry.Shift, visibleRooms []int64) (*models.PendingChange, error) {
	if c.state != StateDragging || c.active == nil {
		return nil, ErrNoGesture
	}

	if shift.IsZero() {
		c.reset()
		return nil, nil
	}

	original := c.active.original
	candidate := original.Clone()

	if original.Status == models.StatusCheckedIn {
		// Check-in is frozen for a guest already in the room. Only the
		// departure shifts; room reassignment stays allowed.
		candidate.CheckOut = original.CheckOut.AddDate(0, 0, shift.Days)
	} else {
		candidate.CheckIn = original.CheckIn.AddDate(0, 0, shift.Days)
		candidate.CheckOut = original.CheckOut.AddDate(0, 0, shift.Days)
	}
	candidate.RoomID = shiftRoom(original.RoomID, shift.Rows, visibleRooms)

	if err := c.validate(&candidate, &original); err != nil {
		c.reset()
		c.logger.Debug().Int64("reservation", original.ID).Err(err).Msg("move rejected")
		return nil, err
	}

	c.store.Apply(candidate)
	c.state = StatePending
	return &models.PendingChange{Old: original, New: candidate}, nil
}

// ResizeStep applies an incremental resize with the accumulated day
// shift from the gesture start. Steps that would collide, shrink the
// stay below one night or cross the past-date guard are silently
// ignored: the bar only ever shows valid states.
func (c *Controller) ResizeStep(days int) {
	if c.state != StateResizing || c.active == nil {
		return
	}

	original := c.active.original
	candidate := original.Clone()
	switch c.active.direction {
	case models.ResizeLeft:
		candidate.CheckIn = original.CheckIn.AddDate(0, 0, days)
	case models.ResizeRight:
		candidate.CheckOut = original.CheckOut.AddDate(0, 0, days)
	}

	if err := c.validate(&candidate, &original); err != nil {
		return
	}

	c.active.candidate = candidate
	c.store.Apply(candidate)
}

// EndResize finishes an edge-resize gesture. If the last valid state
// differs from the original a PendingChange is staged, exactly as for
// moves; otherwise the gesture ends as a no-op.
func (c *Controller) EndResize() (*models.PendingChange, error) {
	if c.state != StateResizing || c.active == nil {
		return nil, ErrNoGesture
	}

	original := c.active.original
	final := c.active.candidate
	if final.CheckIn.Equal(original.CheckIn) && final.CheckOut.Equal(original.CheckOut) {
		c.store.Apply(original)
		c.reset()
		return nil, nil
	}

	c.state = StatePending
	return &models.PendingChange{Old: original, New: final, Direction: c.active.direction}, nil
}

// Cancel aborts the active gesture or pending change and restores the
// pre-gesture record in the store. Side-effect free beyond that: no
// persistence call is ever made for a cancelled gesture.
func (c *Controller) Cancel() {
	if c.state == StateIdle || c.active == nil {
		return
	}
	c.store.Apply(c.active.original)
	c.reset()
}

// Resolve marks the pending change as dealt with (confirmed upstream)
// and returns the controller to idle. The store keeps the new record;
// commit and refresh are the caller's concern.
func (c *Controller) Resolve() {
	if c.state != StatePending {
		return
	}
	c.reset()
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.active = nil
}

func (c *Controller) validate(candidate, original *models.Reservation) error {
	if !candidate.CheckIn.Before(candidate.CheckOut) {
		return ErrInvalidSpan
	}
	// The past-date guard fires only when the gesture actually moved the
	// check-in; a checked-in stay keeps its original (possibly past)
	// arrival, and a pure departure change never re-checks it.
	if !candidate.CheckIn.Equal(original.CheckIn) && candidate.CheckIn.Before(models.DateOnly(c.now())) {
		return ErrPastDate
	}
	if !c.engine.IsRoomFree(candidate.RoomID, candidate.CheckIn, candidate.CheckOut, candidate.ID) {
		return ErrOverlap
	}
	return nil
}

// shiftRoom moves a room by rows within the visible list, clamped to the
// list bounds. A room filtered out of the list stays where it is. The
// destination deliberately depends on the active filter; that is the
// documented grid behavior.
func shiftRoom(roomID int64, rows int, visibleRooms []int64) int64 {
	if rows == 0 || len(visibleRooms) == 0 {
		return roomID
	}
	idx := -1
	for i, id := range visibleRooms {
		if id == roomID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return roomID
	}
	idx += rows
	if idx < 0 {
		idx = 0
	}
	if idx >= len(visibleRooms) {
		idx = len(visibleRooms) - 1
	}
	return visibleRooms[idx]
}
