package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/san-kum/orbfield/internal/renderer"
)

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, nil, nil)
	if s.Frames != 0 || s.MeanLinks != 0 || s.MeanFrame != 0 {
		t.Errorf("expected zero summary, got %+v", s)
	}
}

func TestSummarize(t *testing.T) {
	links := []float64{2, 4, 6}
	opac := []float64{0.1, 0.1, 0.2}
	elapsed := []float64{10, 20, 30}

	s := Summarize(links, opac, elapsed)

	if s.Frames != 3 {
		t.Errorf("expected 3 frames, got %d", s.Frames)
	}
	if s.MeanLinks != 4 {
		t.Errorf("expected mean 4, got %v", s.MeanLinks)
	}
	if math.Abs(s.StdDevLinks-2) > 1e-12 {
		t.Errorf("expected stddev 2, got %v", s.StdDevLinks)
	}
	if s.MaxLinks != 6 {
		t.Errorf("expected max 6, got %v", s.MaxLinks)
	}
	// (0.2 + 0.4 + 1.2) / 12
	if math.Abs(s.MeanOpacity-0.15) > 1e-12 {
		t.Errorf("expected link-weighted opacity 0.15, got %v", s.MeanOpacity)
	}
	if s.MeanFrame != 20*time.Microsecond {
		t.Errorf("expected 20µs mean, got %v", s.MeanFrame)
	}
	if s.P99Frame != 30*time.Microsecond {
		t.Errorf("expected 30µs p99, got %v", s.P99Frame)
	}
}

func TestCollector(t *testing.T) {
	c := NewCollector(4)
	c.OnFrame(renderer.FrameStats{Links: 3, MeanOpacity: 0.1, Elapsed: 5 * time.Microsecond})
	c.OnFrame(renderer.FrameStats{Links: 0, Elapsed: 7 * time.Microsecond})

	if got := c.Links(); len(got) != 2 || got[0] != 3 || got[1] != 0 {
		t.Errorf("Links = %v", got)
	}
	if got := c.FrameTimes(); got[1] != 7 {
		t.Errorf("FrameTimes = %v", got)
	}
	if got := c.Opacities(); got[0] != 0.1 {
		t.Errorf("Opacities = %v", got)
	}

	s := c.Summarize()
	if s.Frames != 2 || math.Abs(s.MeanOpacity-0.1) > 1e-12 {
		t.Errorf("summary = %+v", s)
	}
}

func TestAcrossRuns(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Spread
	}{
		{"empty", nil, Spread{}},
		{"single", []float64{3}, Spread{Mean: 3}},
		{"several", []float64{1, 3, 5}, Spread{Mean: 3, StdDev: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AcrossRuns(tt.values)
			if math.Abs(got.Mean-tt.want.Mean) > 1e-12 || math.Abs(got.StdDev-tt.want.StdDev) > 1e-12 {
				t.Errorf("AcrossRuns(%v) = %+v, want %+v", tt.values, got, tt.want)
			}
		})
	}
}
