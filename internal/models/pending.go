package models

import "time"

// ResizeDirection identifies which edge of a bar a resize gesture grabbed.
type ResizeDirection string

const (
	ResizeNone  ResizeDirection = ""
	ResizeLeft  ResizeDirection = "left"
	ResizeRight ResizeDirection = "right"
)

// PendingChange is the ephemeral outcome of a completed drag or resize
// gesture, held only until the operator confirms or cancels it. Old is an
// immutable snapshot of the pre-gesture record, New the validated
// candidate. Never persisted as such.
type PendingChange struct {
	Old       Reservation
	New       Reservation
	Direction ResizeDirection
}

// RoomChanged reports whether the gesture moved the bar to another room.
func (p *PendingChange) RoomChanged() bool {
	return p.Old.RoomID != p.New.RoomID
}

// DatesChanged reports whether the stay interval moved at all.
func (p *PendingChange) DatesChanged() bool {
	return !p.Old.CheckIn.Equal(p.New.CheckIn) || !p.Old.CheckOut.Equal(p.New.CheckOut)
}

// DeltaDays returns the check-in and check-out shifts in whole days,
// measured from the pre-gesture values. These are the deltas a group
// apply propagates to siblings.
func (p *PendingChange) DeltaDays() (in, out int) {
	in = daysBetween(p.Old.CheckIn, p.New.CheckIn)
	out = daysBetween(p.Old.CheckOut, p.New.CheckOut)
	return
}

func daysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}

// DragSelection is an in-progress empty-cell selection: Start..End are
// inclusive day cells in one room. Discarded on pointer-up into either a
// booking proposal or nothing.
type DragSelection struct {
	RoomID int64
	Start  time.Time
	End    time.Time
}
