package frame

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Display is the refresh source a Loop is paced by. Next blocks until the
// next refresh and returns its timestamp.
type Display interface {
	Next(ctx context.Context) (time.Time, error)
}

// Refresh emulates a display refreshing at a fixed rate, for hosts with
// no vsync signal of their own.
type Refresh struct {
	ticker *time.Ticker
}

func NewRefresh(hz int) *Refresh {
	if hz <= 0 {
		hz = 60
	}
	return &Refresh{ticker: time.NewTicker(time.Second / time.Duration(hz))}
}

func (r *Refresh) Next(ctx context.Context) (time.Time, error) {
	select {
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	case t := <-r.ticker.C:
		return t, nil
	}
}

func (r *Refresh) Stop() { r.ticker.Stop() }

// ErrLoopRunning is returned by Run on a loop that is already running.
var ErrLoopRunning = errors.New("frame: loop already running")

// Loop is a Scheduler paced by a Display. Callbacks run one at a time on
// the goroutine that called Run.
type Loop struct {
	queue

	display Display
	running sync.Mutex
	frames  uint64
	fmu     sync.Mutex
}

func NewLoop(d Display) *Loop {
	return &Loop{display: d}
}

// Run services frames until ctx is done or the display fails. A frame with
// no pending callbacks still waits for its refresh, so an idle loop costs
// one wakeup per refresh.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.TryLock() {
		return ErrLoopRunning
	}
	defer l.running.Unlock()

	for {
		now, err := l.display.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		l.run(now)

		l.fmu.Lock()
		l.frames++
		l.fmu.Unlock()
	}
}

// Frames reports how many refreshes the loop has serviced.
func (l *Loop) Frames() uint64 {
	l.fmu.Lock()
	defer l.fmu.Unlock()
	return l.frames
}
