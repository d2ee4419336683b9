// Package geometry converts between grid coordinates (room rows, day
// columns) and pixels. Pure math, no store access.
package geometry

import (
	"math"
	"time"

	"planboard/internal/models"
)

// Rect is a rendered bar rectangle in pixels, relative to the grid origin.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Shift is a pointer delta converted to whole grid steps.
type Shift struct {
	Days int
	Rows int
}

// IsZero reports whether the gesture moved less than half a cell in both
// axes. A zero shift is a click, not a move.
func (s Shift) IsZero() bool {
	return s.Days == 0 && s.Rows == 0
}

// Mapper maps (room row, date) pairs to pixel rectangles for a visible
// window, and pointer deltas back to day/row shifts. Cell size scales
// with the zoom percentage.
type Mapper struct {
	WindowStart time.Time // first visible day
	VisibleDays int
	BaseCellW   int // pixels per day at 100% zoom
	BaseRowH    int // pixels per room row at 100% zoom
	ZoomPercent int
}

// CellWidth returns the zoomed pixel width of one day column.
func (m Mapper) CellWidth() int {
	return m.BaseCellW * m.ZoomPercent / 100
}

// RowHeight returns the zoomed pixel height of one room row.
func (m Mapper) RowHeight() int {
	return m.BaseRowH * m.ZoomPercent / 100
}

// BarRect returns the rectangle for a bar spanning [checkIn, checkOut)
// on the given room row, clipped to the visible window. visible is false
// when the stay lies entirely outside the window.
func (m Mapper) BarRect(roomIndex int, checkIn, checkOut time.Time) (Rect, bool) {
	windowEnd := m.WindowStart.AddDate(0, 0, m.VisibleDays)
	if !checkIn.Before(windowEnd) || !checkOut.After(m.WindowStart) {
		return Rect{}, false
	}

	startCol := m.dayIndex(checkIn)
	endCol := m.dayIndex(checkOut)
	if startCol < 0 {
		startCol = 0
	}
	if endCol > m.VisibleDays {
		endCol = m.VisibleDays
	}

	return Rect{
		X:      startCol * m.CellWidth(),
		Y:      roomIndex * m.RowHeight(),
		Width:  (endCol - startCol) * m.CellWidth(),
		Height: m.RowHeight(),
	}, true
}

// ShiftForDelta converts a pointer delta in pixels to whole day and row
// shifts, rounded to the nearest cell. Fractional drags snap, they never
// produce partial days.
func (m Mapper) ShiftForDelta(dx, dy int) Shift {
	return Shift{
		Days: roundDiv(dx, m.CellWidth()),
		Rows: roundDiv(dy, m.RowHeight()),
	}
}

// DateAt returns the date of the day column under the given x offset.
func (m Mapper) DateAt(x int) time.Time {
	col := x / m.CellWidth()
	if col < 0 {
		col = 0
	}
	if col >= m.VisibleDays {
		col = m.VisibleDays - 1
	}
	return m.WindowStart.AddDate(0, 0, col)
}

// RowAt returns the room row index under the given y offset, clamped to
// the given row count.
func (m Mapper) RowAt(y, rows int) int {
	row := y / m.RowHeight()
	if row < 0 {
		row = 0
	}
	if row >= rows {
		row = rows - 1
	}
	return row
}

func (m Mapper) dayIndex(date time.Time) int {
	return int(models.DateOnly(date).Sub(models.DateOnly(m.WindowStart)).Hours() / 24)
}

func roundDiv(delta, size int) int {
	if size <= 0 {
		return 0
	}
	return int(math.Round(float64(delta) / float64(size)))
}
