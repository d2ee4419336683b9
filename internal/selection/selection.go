// Package selection turns click-and-drag over empty grid cells into a
// booking proposal for the covered date range.
package selection

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"planboard/internal/availability"
	"planboard/internal/models"
)

// ErrCellOccupied means the anchor cell already holds a reservation.
var ErrCellOccupied = errors.New("cell is already occupied")

// Proposal is a new-booking suggestion produced by a finished selection.
// The stay covers the selected cells as nights: selecting Mar 5..Mar 7
// proposes [Mar 5, Mar 8). Ref is a client-generated idempotency key the
// data service echoes back on creation.
type Proposal struct {
	Ref      string    `json:"ref"`
	RoomID   int64     `json:"room_id"`
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// Tracker builds a DragSelection while the pointer is held over empty
// cells. It never extends over an occupied cell: the selection always
// stops at the nearest occupied boundary.
type Tracker struct {
	engine  *availability.Engine
	now     func() time.Time
	current *models.DragSelection
}

// NewTracker creates a tracker; now supplies "today" for the past-date
// cut-off, nil means time.Now.
func NewTracker(engine *availability.Engine, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{engine: engine, now: now}
}

// Active reports whether a selection is in progress.
func (t *Tracker) Active() bool {
	return t.current != nil
}

// Current returns the in-progress selection, if any.
func (t *Tracker) Current() *models.DragSelection {
	return t.current
}

// Start anchors a new selection at the given cell. Pointer-down on an
// occupied cell starts nothing.
func (t *Tracker) Start(roomID int64, date time.Time) error {
	day := models.DateOnly(date)
	if t.engine.OccupiedOn(roomID, day) {
		return ErrCellOccupied
	}
	t.current = &models.DragSelection{RoomID: roomID, Start: day, End: day}
	return nil
}

// Extend grows the selection end toward the hovered date, one day at a
// time, stopping just before the first occupied cell. Hovering at or
// behind the anchor collapses the selection back to the anchor cell.
func (t *Tracker) Extend(date time.Time) {
	if t.current == nil {
		return
	}
	target := models.DateOnly(date)
	if !target.After(t.current.Start) {
		t.current.End = t.current.Start
		return
	}

	end := t.current.Start
	for day := end.AddDate(0, 0, 1); !day.After(target); day = day.AddDate(0, 0, 1) {
		if t.engine.OccupiedOn(t.current.RoomID, day) {
			break
		}
		end = day
	}
	t.current.End = end
}

// Finish releases the pointer. Selections starting today or later yield
// a booking proposal for [start, end+1d); past-dated selections are
// discarded silently.
func (t *Tracker) Finish() (*Proposal, bool) {
	sel := t.current
	t.current = nil
	if sel == nil {
		return nil, false
	}
	if sel.Start.Before(models.DateOnly(t.now())) {
		return nil, false
	}
	return &Proposal{
		Ref:      uuid.NewString(),
		RoomID:   sel.RoomID,
		CheckIn:  sel.Start,
		CheckOut: sel.End.AddDate(0, 0, 1),
	}, true
}

// Abort drops the in-progress selection without producing a proposal.
func (t *Tracker) Abort() {
	t.current = nil
}
