package frame

import (
	"sync"
	"time"
)

type pending struct {
	h  Handle
	cb Callback
}

// queue holds requests for the next frame. A frame detaches the whole
// batch first, so callbacks requested during a frame run on the next one.
type queue struct {
	mu       sync.Mutex
	next     Handle
	waiting  []pending
	inflight map[Handle]bool
}

func (q *queue) Request(cb Callback) Handle {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.next++
	q.waiting = append(q.waiting, pending{h: q.next, cb: cb})
	return q.next
}

// Cancel drops a waiting request, or marks an in-flight one so it is
// skipped if its turn in the current frame has not come yet.
func (q *queue) Cancel(h Handle) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.inflight[h]; ok {
		q.inflight[h] = false
		return
	}
	for i, p := range q.waiting {
		if p.h == h {
			q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
			return
		}
	}
}

// Pending reports the number of requests waiting for the next frame.
func (q *queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}

func (q *queue) begin() []pending {
	q.mu.Lock()
	defer q.mu.Unlock()
	batch := q.waiting
	q.waiting = nil
	q.inflight = make(map[Handle]bool, len(batch))
	for _, p := range batch {
		q.inflight[p.h] = true
	}
	return batch
}

func (q *queue) live(h Handle) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inflight[h]
}

func (q *queue) end() {
	q.mu.Lock()
	q.inflight = nil
	q.mu.Unlock()
}

// run executes one frame and returns the number of callbacks run.
func (q *queue) run(now time.Time) int {
	batch := q.begin()
	defer q.end()

	ran := 0
	for _, p := range batch {
		if !q.live(p.h) {
			continue
		}
		p.cb(now)
		ran++
	}
	return ran
}
