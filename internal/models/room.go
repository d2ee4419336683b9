package models

// Room is one physical room in the inventory. Immutable during planning
// interactions; lifecycle is owned by the inventory screens of the data
// service.
type Room struct {
	ID       int64  `json:"id"`
	Number   string `json:"number"`
	Category string `json:"category"`
	Floor    int    `json:"floor"`
	Capacity int    `json:"capacity"`

	// Rate is the fixed nightly rate. When RateByGuests is non-empty it
	// takes precedence for the matching occupant count.
	Rate         float64         `json:"rate"`
	RateByGuests map[int]float64 `json:"rate_by_guests,omitempty"`
}

// NightlyRate returns the rate for the given occupant count. Counts above
// the largest configured tier fall back to that tier; zero or unknown
// counts fall back to the fixed rate.
func (r *Room) NightlyRate(guests int) float64 {
	if len(r.RateByGuests) == 0 {
		return r.Rate
	}
	if rate, ok := r.RateByGuests[guests]; ok {
		return rate
	}
	best := 0
	rate := r.Rate
	for n, v := range r.RateByGuests {
		if n > best && n <= guests {
			best = n
			rate = v
		}
	}
	if best == 0 {
		return r.Rate
	}
	return rate
}
