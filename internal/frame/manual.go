package frame

import (
	"sync"
	"time"
)

// Manual is a step-driven Scheduler: nothing runs until Advance.
type Manual struct {
	queue

	clock  sync.Mutex
	now    time.Time
	period time.Duration
	frames int
}

// NewManual returns a scheduler whose clock starts at start and moves by
// period on every Advance.
func NewManual(start time.Time, period time.Duration) *Manual {
	return &Manual{now: start, period: period}
}

// Frames reports how many times Advance has run.
func (m *Manual) Frames() int {
	m.clock.Lock()
	defer m.clock.Unlock()
	return m.frames
}

// Now reports the clock of the last frame.
func (m *Manual) Now() time.Time {
	m.clock.Lock()
	defer m.clock.Unlock()
	return m.now
}

// Advance runs one frame: every callback pending when it was called runs
// once, in request order, unless cancelled before its turn. It returns the
// number of callbacks run.
func (m *Manual) Advance() int {
	m.clock.Lock()
	m.now = m.now.Add(m.period)
	m.frames++
	now := m.now
	m.clock.Unlock()

	return m.run(now)
}

// AdvanceN runs n frames and returns the total callbacks run.
func (m *Manual) AdvanceN(n int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += m.Advance()
	}
	return total
}
