package geometry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func testMapper() Mapper {
	return Mapper{
		WindowStart: day(2026, 3, 1),
		VisibleDays: 31,
		BaseCellW:   40,
		BaseRowH:    28,
		ZoomPercent: 100,
	}
}

func TestMapper_Zoom(t *testing.T) {
	m := testMapper()
	assert.Equal(t, 40, m.CellWidth())
	assert.Equal(t, 28, m.RowHeight())

	m.ZoomPercent = 150
	assert.Equal(t, 60, m.CellWidth())
	assert.Equal(t, 42, m.RowHeight())

	m.ZoomPercent = 50
	assert.Equal(t, 20, m.CellWidth())
	assert.Equal(t, 14, m.RowHeight())
}

func TestMapper_BarRect(t *testing.T) {
	m := testMapper()

	rect, visible := m.BarRect(2, day(2026, 3, 10), day(2026, 3, 13))
	assert.True(t, visible)
	assert.Equal(t, Rect{X: 9 * 40, Y: 2 * 28, Width: 3 * 40, Height: 28}, rect)

	// Stay starting before the window is clipped at the left edge.
	rect, visible = m.BarRect(0, day(2026, 2, 27), day(2026, 3, 3))
	assert.True(t, visible)
	assert.Equal(t, 0, rect.X)
	assert.Equal(t, 2*40, rect.Width)

	// Stay entirely outside the window is not rendered.
	_, visible = m.BarRect(0, day(2026, 4, 10), day(2026, 4, 12))
	assert.False(t, visible)
	_, visible = m.BarRect(0, day(2026, 2, 10), day(2026, 2, 12))
	assert.False(t, visible)
}

func TestMapper_ShiftForDelta(t *testing.T) {
	m := testMapper()

	tests := []struct {
		name     string
		dx, dy   int
		days     int
		rows     int
	}{
		{"zero delta is a click", 0, 0, 0, 0},
		{"small jitter snaps to zero", 15, 10, 0, 0},
		{"one cell right", 40, 0, 1, 0},
		{"round to nearest day", 65, 0, 2, 0},
		{"negative shift", -45, -30, -1, -1},
		{"rows and days together", 85, 60, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shift := m.ShiftForDelta(tt.dx, tt.dy)
			assert.Equal(t, tt.days, shift.Days)
			assert.Equal(t, tt.rows, shift.Rows)
			assert.Equal(t, tt.days == 0 && tt.rows == 0, shift.IsZero())
		})
	}
}

func TestMapper_ShiftScalesWithZoom(t *testing.T) {
	m := testMapper()
	m.ZoomPercent = 200 // 80px per day

	assert.Equal(t, 0, m.ShiftForDelta(39, 0).Days)
	assert.Equal(t, 1, m.ShiftForDelta(41, 0).Days)
}

func TestMapper_DateAt(t *testing.T) {
	m := testMapper()

	assert.Equal(t, day(2026, 3, 1), m.DateAt(0))
	assert.Equal(t, day(2026, 3, 10), m.DateAt(9*40+5))
	// Clamped to the window.
	assert.Equal(t, day(2026, 3, 31), m.DateAt(99999))
	assert.Equal(t, day(2026, 3, 1), m.DateAt(-10))
}

func TestMapper_RowAt(t *testing.T) {
	m := testMapper()

	assert.Equal(t, 0, m.RowAt(5, 10))
	assert.Equal(t, 3, m.RowAt(3*28+2, 10))
	assert.Equal(t, 9, m.RowAt(99999, 10))
	assert.Equal(t, 0, m.RowAt(-50, 10))
}
