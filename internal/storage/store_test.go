package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/orbfield/internal/renderer"
	"github.com/san-kum/orbfield/internal/sim"
)

func runFixture(t *testing.T) (sim.Config, *sim.Result) {
	t.Helper()
	cfg := sim.Config{
		Renderer:    renderer.DefaultOptions(),
		Width:       1024,
		Height:      768,
		Frames:      20,
		Seed:        7,
		SampleEvery: 10,
	}
	result, err := sim.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return cfg, result
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, result := runFixture(t)
	runID, err := st.Save("desktop", cfg, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Label != "desktop" {
		t.Errorf("expected label 'desktop', got '%s'", meta.Label)
	}
	if meta.Seed != 7 {
		t.Errorf("expected seed 7, got %d", meta.Seed)
	}
	if meta.Particles != 15 || meta.Frames != 20 {
		t.Errorf("expected 15 particles over 20 frames, got %d over %d", meta.Particles, meta.Frames)
	}
	if meta.Summary.MeanLinks != result.Summary.MeanLinks {
		t.Errorf("summary not preserved: %+v", meta.Summary)
	}
}

func TestStoreLoadTrace(t *testing.T) {
	st := New(t.TempDir())
	cfg, result := runFixture(t)
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	runID, err := st.Save("trace", cfg, result)
	if err != nil {
		t.Fatal(err)
	}

	samples, err := st.LoadTrace(runID)
	if err != nil {
		t.Fatalf("load trace failed: %v", err)
	}
	if len(samples) != len(result.Samples) {
		t.Fatalf("expected %d samples, got %d", len(result.Samples), len(samples))
	}
	for i := range samples {
		if samples[i].Frame != result.Samples[i].Frame {
			t.Errorf("sample %d: frame %d, want %d", i, samples[i].Frame, result.Samples[i].Frame)
		}
		for j, p := range samples[i].Particles {
			if p != result.Samples[i].Particles[j] {
				t.Errorf("sample %d particle %d: got %+v, want %+v", i, j, p, result.Samples[i].Particles[j])
			}
		}
	}
}

func TestStoreLoadFrames(t *testing.T) {
	st := New(t.TempDir())
	cfg, result := runFixture(t)
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	runID, err := st.Save("frames", cfg, result)
	if err != nil {
		t.Fatal(err)
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(frames) != 20 {
		t.Fatalf("expected 20 frames, got %d", len(frames))
	}
	for i, f := range frames {
		want := result.Stats[i]
		if f.Frame != want.Frame || f.Links != want.Links || f.MeanOpacity != want.MeanOpacity {
			t.Errorf("frame %d: got %+v, want %+v", i, f, want)
		}
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	cfg, result := runFixture(t)
	first, err := st.Save("same", cfg, result)
	if err != nil {
		t.Fatal(err)
	}
	second, err := st.Save("same", cfg, result)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatalf("run ids collide: %s", first)
	}

	// stray entries are skipped
	if err := os.Mkdir(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, err := st.LoadTrace("nope"); err == nil {
		t.Error("expected error for missing trace")
	}
}

func TestStoreLoadTrace_Malformed(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	runDir := filepath.Join(tmpDir, "bad")
	if err := os.MkdirAll(runDir, 0755); err != nil {
		t.Fatal(err)
	}
	data := "frame,index,x,y,dx,dy,radius,opacity\n1,0,abc,0,0,0,1,0.5\n"
	if err := os.WriteFile(filepath.Join(runDir, particlesFile), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := st.LoadTrace("bad"); err == nil {
		t.Error("expected parse error")
	}
}

func TestStoreSave_RemovesPartialRun(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	cfg, result := runFixture(t)

	// frames.csv cannot be created over a directory
	runDir := filepath.Join(tmpDir, "partial")
	if err := os.MkdirAll(filepath.Join(runDir, framesFile), 0755); err != nil {
		t.Fatal(err)
	}

	if err := st.writeRun("partial", "partial", time.Now(), cfg, result); err == nil {
		t.Fatal("expected write error")
	}
	if _, err := os.Stat(runDir); !os.IsNotExist(err) {
		t.Errorf("expected partial run directory removed, stat err = %v", err)
	}
	if _, err := st.Load("partial"); err == nil {
		t.Error("partial run still loadable")
	}
}
