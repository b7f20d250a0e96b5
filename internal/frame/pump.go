package frame

import "time"

// Pump is a Scheduler driven by an external frame source, such as a TUI
// event loop delivering one message per repaint.
type Pump struct {
	queue
}

func NewPump() *Pump {
	return &Pump{}
}

// Frame runs the callbacks pending for this repaint and returns how many ran.
func (p *Pump) Frame(now time.Time) int {
	return p.run(now)
}
