// Package frame provides frame-callback schedulers: the capability a
// renderer uses to ask for "call me on the next display refresh".
package frame

import "time"

// Callback runs once per requested frame.
type Callback func(now time.Time)

// Handle identifies a pending request. The zero Handle is never issued.
type Handle uint64

// Scheduler runs each requested callback at most once, on the next frame.
// Callbacks from one scheduler never run concurrently.
type Scheduler interface {
	Request(cb Callback) Handle
	Cancel(h Handle)
}
