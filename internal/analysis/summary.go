package analysis

import (
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/orbfield/internal/renderer"
)

// Collector records per-frame statistics from a renderer.
type Collector struct {
	mu        sync.Mutex
	links     []float64
	opacities []float64
	elapsed   []float64
}

func NewCollector(capacity int) *Collector {
	return &Collector{
		links:     make([]float64, 0, capacity),
		opacities: make([]float64, 0, capacity),
		elapsed:   make([]float64, 0, capacity),
	}
}

func (c *Collector) OnFrame(s renderer.FrameStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.links = append(c.links, float64(s.Links))
	c.opacities = append(c.opacities, s.MeanOpacity)
	c.elapsed = append(c.elapsed, float64(s.Elapsed.Microseconds()))
}

// Links returns the link count of every recorded frame.
func (c *Collector) Links() []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]float64, len(c.links))
	copy(out, c.links)
	return out
}

// Opacities returns the mean link opacity of every recorded frame.
func (c *Collector) Opacities() []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]float64, len(c.opacities))
	copy(out, c.opacities)
	return out
}

// FrameTimes returns the draw time of every recorded frame in microseconds.
func (c *Collector) FrameTimes() []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]float64, len(c.elapsed))
	copy(out, c.elapsed)
	return out
}

type Summary struct {
	Frames      int           `json:"frames"`
	MeanLinks   float64       `json:"mean_links"`
	StdDevLinks float64       `json:"stddev_links"`
	MaxLinks    float64       `json:"max_links"`
	MeanOpacity float64       `json:"mean_opacity"`
	MeanFrame   time.Duration `json:"mean_frame_ns"`
	P99Frame    time.Duration `json:"p99_frame_ns"`
}

// Summarize reduces the recorded frames.
func (c *Collector) Summarize() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Summarize(c.links, c.opacities, c.elapsed)
}

// Summarize reduces per-frame link counts, opacities and draw times (µs).
func Summarize(links, opacities, elapsedMicros []float64) Summary {
	s := Summary{Frames: len(links)}
	if len(links) == 0 {
		return s
	}
	s.MeanLinks = stat.Mean(links, nil)
	if len(links) > 1 {
		s.StdDevLinks = stat.StdDev(links, nil)
	}
	for _, l := range links {
		if l > s.MaxLinks {
			s.MaxLinks = l
		}
	}

	// frames without links carry no opacity
	var weighted, total float64
	for i, o := range opacities {
		if i < len(links) {
			weighted += o * links[i]
			total += links[i]
		}
	}
	if total > 0 {
		s.MeanOpacity = weighted / total
	}

	if len(elapsedMicros) > 0 {
		s.MeanFrame = micros(stat.Mean(elapsedMicros, nil))
		sorted := make([]float64, len(elapsedMicros))
		copy(sorted, elapsedMicros)
		sort.Float64s(sorted)
		s.P99Frame = micros(stat.Quantile(0.99, stat.Empirical, sorted, nil))
	}
	return s
}

func micros(v float64) time.Duration {
	return time.Duration(v * float64(time.Microsecond))
}

// Spread is the mean and sample standard deviation of one value across runs.
type Spread struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

func AcrossRuns(values []float64) Spread {
	if len(values) == 0 {
		return Spread{}
	}
	mean, std := stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		std = 0
	}
	return Spread{Mean: mean, StdDev: std}
}
