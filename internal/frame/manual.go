package frame

import "time"

// Manual is a Scheduler whose refreshes are driven by the host, such as a
// terminal tick or a test advancing a simulated clock.
type Manual struct {
	queue
	now time.Duration
}

func NewManual() *Manual { return &Manual{} }

// Refresh fires the pending callbacks with timestamp ts and returns how many
// ran.
func (m *Manual) Refresh(ts time.Duration) int {
	m.now = ts
	return m.flush(ts)
}

// Advance moves the clock forward by d and refreshes.
func (m *Manual) Advance(d time.Duration) int {
	return m.Refresh(m.now + d)
}

func (m *Manual) Now() time.Duration { return m.now }
