package surface

import (
	"image/color"
	"sync"
)

type OpKind int

const (
	OpClear OpKind = iota
	OpCircle
	OpLine
)

func (k OpKind) String() string {
	switch k {
	case OpClear:
		return "clear"
	case OpCircle:
		return "circle"
	case OpLine:
		return "line"
	}
	return "unknown"
}

// Op is one recorded draw call.
type Op struct {
	Kind           OpKind
	X0, Y0, X1, Y1 float64
	R, Width       float64
	Color          color.NRGBA
}

// Recorder is a Surface that keeps every draw call in order.
type Recorder struct {
	mu     sync.Mutex
	w, h   float64
	ops    []Op
	resize [][2]float64
}

func NewRecorder(w, h float64) *Recorder {
	return &Recorder{w: w, h: h}
}

func (r *Recorder) Size() (float64, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.w, r.h
}

func (r *Recorder) Resize(w, h float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.w, r.h = w, h
	r.resize = append(r.resize, [2]float64{w, h})
}

func (r *Recorder) Clear() {
	r.record(Op{Kind: OpClear})
}

func (r *Recorder) FillCircle(x, y, rad float64, c color.NRGBA) {
	r.record(Op{Kind: OpCircle, X0: x, Y0: y, R: rad, Color: c})
}

func (r *Recorder) StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA) {
	r.record(Op{Kind: OpLine, X0: x0, Y0: y0, X1: x1, Y1: y1, Width: width, Color: c})
}

func (r *Recorder) record(op Op) {
	r.mu.Lock()
	r.ops = append(r.ops, op)
	r.mu.Unlock()
}

// Ops returns a copy of every call recorded so far.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Op, len(r.ops))
	copy(out, r.ops)
	return out
}

// Count returns the number of recorded calls of kind k.
func (r *Recorder) Count(k OpKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, op := range r.ops {
		if op.Kind == k {
			n++
		}
	}
	return n
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ops)
}

// LastFrame returns the calls since the most recent Clear.
func (r *Recorder) LastFrame() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := -1
	for i := len(r.ops) - 1; i >= 0; i-- {
		if r.ops[i].Kind == OpClear {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	out := make([]Op, len(r.ops)-start-1)
	copy(out, r.ops[start+1:])
	return out
}

// Resizes returns every size passed to Resize.
func (r *Recorder) Resizes() [][2]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][2]float64, len(r.resize))
	copy(out, r.resize)
	return out
}

// Reset drops recorded calls, keeping the size.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.ops = r.ops[:0]
	r.mu.Unlock()
}
