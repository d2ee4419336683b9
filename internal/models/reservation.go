package models

import "time"

// Status is the lifecycle status of a reservation.
type Status string

const (
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
	StatusOption     Status = "option"
	StatusCancelled  Status = "cancelled"
)

// Locked reports whether the reservation may no longer be moved or resized.
func (s Status) Locked() bool {
	return s == StatusCheckedOut || s == StatusCancelled
}

// Payment is a partial payment registered against a reservation.
type Payment struct {
	ID     int64     `json:"id"`
	Amount float64   `json:"amount"`
	Method string    `json:"method"`
	PaidAt time.Time `json:"paid_at"`
}

// ServiceLine is an ancillary service billed on a reservation.
type ServiceLine struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Reservation represents a stay in a single room over a half-open
// [CheckIn, CheckOut) date interval. CheckOut is always exclusive:
// a guest leaving on the 13th frees the room for a guest arriving
// on the 13th.
type Reservation struct {
	ID           int64         `json:"id"`
	RoomID       int64         `json:"room_id"`
	ClientID     int64         `json:"client_id"`
	ClientName   string        `json:"client_name"`
	OccupantName string        `json:"occupant_name,omitempty"`
	CheckIn      time.Time     `json:"check_in"`
	CheckOut     time.Time     `json:"check_out"`
	Status       Status        `json:"status"`
	Color        string        `json:"color,omitempty"`
	Adults       int           `json:"adults"`
	Children     int           `json:"children"`
	Total        float64       `json:"total"`
	Payments     []Payment     `json:"payments,omitempty"`
	Services     []ServiceLine `json:"services,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Active reports whether the reservation occupies its room. Cancelled
// reservations never block anything.
func (r *Reservation) Active() bool {
	return r.Status != StatusCancelled
}

// Nights returns the number of nights in the stay.
func (r *Reservation) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// Guests returns the total occupant count.
func (r *Reservation) Guests() int {
	return r.Adults + r.Children
}

// OverlapsWith checks if this reservation overlaps with another one.
// Uses half-open interval [CheckIn, CheckOut) semantics - two stays
// touching at the boundary do not overlap.
func (r *Reservation) OverlapsWith(other *Reservation) bool {
	return r.CheckIn.Before(other.CheckOut) && r.CheckOut.After(other.CheckIn)
}

// ContainsDate checks if the reservation occupies the room on a specific date.
func (r *Reservation) ContainsDate(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(r.CheckIn)) && d.Before(DateOnly(r.CheckOut))
}

// Clone returns a deep copy, safe to mutate without touching the original.
func (r *Reservation) Clone() Reservation {
	c := *r
	if r.Payments != nil {
		c.Payments = append([]Payment(nil), r.Payments...)
	}
	if r.Services != nil {
		c.Services = append([]ServiceLine(nil), r.Services...)
	}
	return c
}

// TotalFor recomputes the stay total for the given room: nightly rate
// times nights, plus service lines. Partial payments are not part of
// the total, they are settled against it.
func (r *Reservation) TotalFor(room *Room) float64 {
	total := room.NightlyRate(r.Guests()) * float64(r.Nights())
	for _, s := range r.Services {
		total += s.Price * float64(s.Quantity)
	}
	return total
}

// DateOnly truncates a timestamp to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
