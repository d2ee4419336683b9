// Package availability provides pure date-interval queries over the
// current reservation snapshot.
package availability

import (
	"time"

	"planboard/internal/models"
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Adjacent intervals touching at the boundary
// do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Source is the reservation snapshot the engine reads. Implemented by
// the store; methods must be pure reads.
type Source interface {
	ByRoom(roomID int64) []models.Reservation
}

// Engine answers free/occupied questions for rooms and dates. It has no
// state of its own and never mutates the source.
type Engine struct {
	src Source
}

// NewEngine creates an engine over the given snapshot source.
func NewEngine(src Source) *Engine {
	return &Engine{src: src}
}

// IsRoomFree reports whether the room has no active reservation
// overlapping [start, end). excludeID is skipped, so a reservation can be
// validated against everything but itself; pass 0 to exclude nothing.
func (e *Engine) IsRoomFree(roomID int64, start, end time.Time, excludeID int64) bool {
	for _, r := range e.src.ByRoom(roomID) {
		if r.ID == excludeID || !r.Active() {
			continue
		}
		if Overlaps(start, end, r.CheckIn, r.CheckOut) {
			return false
		}
	}
	return true
}

// OccupiedOn reports whether any active reservation covers the room on
// the given date.
func (e *Engine) OccupiedOn(roomID int64, date time.Time) bool {
	for _, r := range e.src.ByRoom(roomID) {
		if r.Active() && r.ContainsDate(date) {
			return true
		}
	}
	return false
}

// CountAvailable returns how many of the given rooms are free on the
// date. A room is free iff no active reservation has
// checkIn <= date < checkOut for it.
func (e *Engine) CountAvailable(rooms []models.Room, date time.Time) int {
	free := 0
	for _, room := range rooms {
		if !e.OccupiedOn(room.ID, date) {
			free++
		}
	}
	return free
}

// CountByCategory returns the free-room count per category name on the
// given date.
func (e *Engine) CountByCategory(rooms []models.Room, date time.Time) map[string]int {
	counts := make(map[string]int)
	for _, room := range rooms {
		if !e.OccupiedOn(room.ID, date) {
			counts[room.Category]++
		}
	}
	return counts
}

// FreeUntil returns the first date at or after from on which the room is
// occupied. ok is false when the room stays free for the whole horizon.
func (e *Engine) FreeUntil(roomID int64, from time.Time, horizonDays int) (time.Time, bool) {
	day := models.DateOnly(from)
	for i := 0; i < horizonDays; i++ {
		if e.OccupiedOn(roomID, day) {
			return day, true
		}
		day = day.AddDate(0, 0, 1)
	}
	return time.Time{}, false
}
