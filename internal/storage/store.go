package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/orbfield/internal/analysis"
	"github.com/san-kum/orbfield/internal/particle"
	"github.com/san-kum/orbfield/internal/renderer"
	"github.com/san-kum/orbfield/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	particlesFile = "particles.csv"
	framesFile    = "frames.csv"
)

var (
	particlesHeader = []string{"frame", "index", "x", "y", "dx", "dy", "radius", "opacity"}
	framesHeader    = []string{"frame", "particles", "links", "mean_opacity", "elapsed_us"}
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID            string           `json:"id"`
	Label         string           `json:"label"`
	Timestamp     time.Time        `json:"timestamp"`
	Seed          int64            `json:"seed"`
	Width         float64          `json:"width"`
	Height        float64          `json:"height"`
	Frames        int              `json:"frames"`
	Particles     int              `json:"particles"`
	LinkThreshold float64          `json:"link_threshold"`
	Resizes       []sim.Resize     `json:"resizes,omitempty"`
	Contained     bool             `json:"contained"`
	Summary       analysis.Summary `json:"summary"`
}

// Save writes a run directory holding the metadata, the sampled particle
// trace and the per-frame statistics, and returns the run id.
func (s *Store) Save(label string, cfg sim.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID, err := s.mkRunDir(fmt.Sprintf("%s_%d", label, now.Unix()))
	if err != nil {
		return "", err
	}
	if err := s.writeRun(runID, label, now, cfg, result); err != nil {
		return "", err
	}
	return runID, nil
}

// writeRun fills the run directory, removing it again if any file fails.
func (s *Store) writeRun(runID, label string, now time.Time, cfg sim.Config, result *sim.Result) (err error) {
	runDir := filepath.Join(s.baseDir, runID)
	defer func() {
		if err != nil {
			os.RemoveAll(runDir)
		}
	}()

	meta := RunMetadata{
		ID:            runID,
		Label:         label,
		Timestamp:     now,
		Seed:          result.Seed,
		Width:         cfg.Width,
		Height:        cfg.Height,
		Frames:        result.Frames,
		Particles:     result.Particles,
		LinkThreshold: cfg.Renderer.LinkThreshold,
		Resizes:       cfg.Resizes,
		Contained:     result.Contained,
		Summary:       result.Summary,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}

	err = writeCSV(filepath.Join(runDir, particlesFile), particlesHeader, func(w *csv.Writer) error {
		for _, sample := range result.Samples {
			for i, p := range sample.Particles {
				row := []string{
					strconv.Itoa(sample.Frame),
					strconv.Itoa(i),
					formatFloat(p.X),
					formatFloat(p.Y),
					formatFloat(p.DX),
					formatFloat(p.DY),
					formatFloat(p.Radius),
					formatFloat(p.Opacity),
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return writeCSV(filepath.Join(runDir, framesFile), framesHeader, func(w *csv.Writer) error {
		for _, st := range result.Stats {
			row := []string{
				strconv.FormatUint(st.Frame, 10),
				strconv.Itoa(st.Particles),
				strconv.Itoa(st.Links),
				formatFloat(st.MeanOpacity),
				strconv.FormatInt(st.Elapsed.Microseconds(), 10),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// mkRunDir creates a fresh directory named id, suffixing it when a run with
// the same id already exists.
func (s *Store) mkRunDir(id string) (string, error) {
	runID := id
	for n := 2; ; n++ {
		err := os.Mkdir(filepath.Join(s.baseDir, runID), 0755)
		if err == nil {
			return runID, nil
		}
		if !os.IsExist(err) {
			return "", err
		}
		runID = fmt.Sprintf("%s_%d", id, n)
	}
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadTrace reads the sampled particle sets back, in frame order.
func (s *Store) LoadTrace(runID string) ([]sim.Sample, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, particlesFile))
	if err != nil {
		return nil, err
	}

	samples := make([]sim.Sample, 0)
	for line, record := range records {
		if len(record) < len(particlesHeader) {
			return nil, fmt.Errorf("%s line %d: want %d fields, got %d", particlesFile, line+2, len(particlesHeader), len(record))
		}
		frame, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", particlesFile, line+2, err)
		}
		vals, err := parseFloats(record[2:8])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", particlesFile, line+2, err)
		}

		if len(samples) == 0 || samples[len(samples)-1].Frame != frame {
			samples = append(samples, sim.Sample{Frame: frame})
		}
		last := &samples[len(samples)-1]
		last.Particles = append(last.Particles, particle.Particle{
			X:       vals[0],
			Y:       vals[1],
			DX:      vals[2],
			DY:      vals[3],
			Radius:  vals[4],
			Opacity: vals[5],
		})
	}

	return samples, nil
}

// LoadFrames reads the per-frame statistics back.
func (s *Store) LoadFrames(runID string) ([]renderer.FrameStats, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}

	stats := make([]renderer.FrameStats, 0, len(records))
	for line, record := range records {
		if len(record) < len(framesHeader) {
			return nil, fmt.Errorf("%s line %d: want %d fields, got %d", framesFile, line+2, len(framesHeader), len(record))
		}
		frame, err1 := strconv.ParseUint(record[0], 10, 64)
		count, err2 := strconv.Atoi(record[1])
		links, err3 := strconv.Atoi(record[2])
		opacity, err4 := strconv.ParseFloat(record[3], 64)
		elapsed, err5 := strconv.ParseInt(record[4], 10, 64)
		for _, err := range []error{err1, err2, err3, err4, err5} {
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", framesFile, line+2, err)
			}
		}

		stats = append(stats, renderer.FrameStats{
			Frame:       frame,
			Particles:   count,
			Links:       links,
			MeanOpacity: opacity,
			Elapsed:     time.Duration(elapsed) * time.Microsecond,
		})
	}

	return stats, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

func writeCSV(path string, header []string, rows func(*csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := rows(w); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// readCSV returns the records after the header row.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
