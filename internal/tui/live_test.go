package tui

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/orbfield/internal/renderer"
)

// instantDisplay refreshes as fast as it is asked.
type instantDisplay struct {
	now time.Time
}

func (d *instantDisplay) Next(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	d.now = d.now.Add(time.Second / 60)
	return d.now, nil
}

func newTestRenderer(out *bytes.Buffer, frames int) *LiveRenderer {
	return NewLiveRenderer(out, Options{
		Renderer: renderer.DefaultOptions(),
		Frames:   frames,
		Rand:     rand.New(rand.NewPCG(3, 4)),
		Display:  &instantDisplay{now: time.Unix(0, 0)},
	})
}

func TestLiveRenderer_StopsAfterFrames(t *testing.T) {
	var out bytes.Buffer
	l := newTestRenderer(&out, 5)

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if l.Frames() != 5 {
		t.Errorf("expected 5 frames, got %d", l.Frames())
	}
	if got := strings.Count(out.String(), home); got < 5 {
		t.Errorf("expected at least 5 repaints, got %d", got)
	}
	if !strings.HasSuffix(out.String(), showCursor+"\n") {
		t.Error("cursor not restored")
	}
	if l.Renderer().State() != renderer.Stopped {
		t.Error("renderer still running after Run returned")
	}
}

func TestLiveRenderer_StatusLine(t *testing.T) {
	var out bytes.Buffer
	l := newTestRenderer(&out, 1)
	if err := l.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	// 80 columns is 640 units, under the breakpoint
	if !strings.Contains(out.String(), "orbs 8") {
		t.Errorf("status line missing orb count:\n%s", out.String())
	}
}

func TestLiveRenderer_Resize(t *testing.T) {
	var out bytes.Buffer
	l := newTestRenderer(&out, 1)
	l.Resize(120, 30)
	l.Resize(0, 10)

	if w, h := l.win.Size(); w != 960 || h != 480 {
		t.Errorf("expected 960x480, got %vx%v", w, h)
	}
}

func TestLiveRenderer_Canceled(t *testing.T) {
	var out bytes.Buffer
	l := newTestRenderer(&out, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Run(ctx); err != nil {
		t.Errorf("expected clean exit on cancel, got %v", err)
	}
}

type failingWriter struct{ n int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.n++
	if w.n > 1 {
		return 0, errors.New("broken pipe")
	}
	return len(p), nil
}

func TestLiveRenderer_WriteError(t *testing.T) {
	l := NewLiveRenderer(&failingWriter{}, Options{
		Renderer: renderer.DefaultOptions(),
		Rand:     rand.New(rand.NewPCG(1, 2)),
		Display:  &instantDisplay{},
	})
	if err := l.Run(context.Background()); err == nil {
		t.Error("expected write error")
	}
}

func TestLiveRenderer_Colour(t *testing.T) {
	var out bytes.Buffer
	l := NewLiveRenderer(&out, Options{
		Renderer: renderer.DefaultOptions(),
		Frames:   2,
		Rand:     rand.New(rand.NewPCG(5, 6)),
		Display:  &instantDisplay{},
		Color:    true,
	})
	if err := l.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), fg(renderer.DefaultOptions().Color)) {
		t.Error("expected orb colour escape")
	}
}

func TestLiveRenderer_WideTerminalCount(t *testing.T) {
	var out bytes.Buffer
	l := NewLiveRenderer(&out, Options{
		Renderer: renderer.DefaultOptions(),
		Cols:     200,
		Rows:     50,
		Frames:   1,
		Rand:     rand.New(rand.NewPCG(7, 8)),
		Display:  &instantDisplay{},
	})
	if err := l.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	// 200 columns is 1600 units, over the breakpoint
	if !strings.Contains(out.String(), "orbs 15") {
		t.Errorf("expected 15 orbs for a wide terminal:\n%s", out.String())
	}
}
