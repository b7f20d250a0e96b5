package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/guptarohit/asciigraph"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/san-kum/orbfield/internal/analysis"
	"github.com/san-kum/orbfield/internal/config"
	"github.com/san-kum/orbfield/internal/export"
	"github.com/san-kum/orbfield/internal/sim"
	"github.com/san-kum/orbfield/internal/storage"
	"github.com/san-kum/orbfield/internal/tui"
	"github.com/san-kum/orbfield/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	width      float64
	height     float64
	seed       int64
	frames     int
	refreshHz  int
	theme      string
	threshold  float64
	colorHex   string
	// live
	plain bool
	// render
	every   int
	caption string
	// run
	sampleEvery int
	resizes     []string
	// batch
	numRuns  int
	parallel int
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("orbfield: ")

	if err := newRootCmd().Execute(); err != nil {
		log.Print(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "orbfield",
		Short:         "floating orb particle field",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive(cmd, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.EnvOr(config.EnvData, ".orbfield"), "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.EnvOr(config.EnvConfig, ""), "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().Float64Var(&width, "width", config.DefaultWidth, "viewport width")
	rootCmd.PersistentFlags().Float64Var(&height, "height", config.DefaultHeight, "viewport height")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	rootCmd.PersistentFlags().IntVar(&frames, "frames", config.DefaultFrames, "frames to run")
	rootCmd.PersistentFlags().IntVar(&refreshHz, "fps", config.DefaultRefreshHz, "refresh rate")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", config.DefaultTheme, "terminal theme")
	rootCmd.PersistentFlags().Float64Var(&threshold, "threshold", 150, "link distance threshold")
	rootCmd.PersistentFlags().StringVar(&colorHex, "color", config.DefaultColor, "orb colour (#rrggbb)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "animate the field in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	liveCmd.Flags().BoolVar(&plain, "plain", false, "plain ANSI output without the interactive view")

	renderCmd := &cobra.Command{
		Use:   "render [file]",
		Short: "render a snapshot (.svg, .png or .gif)",
		Args:  cobra.ExactArgs(1),
		RunE:  renderSnapshot,
	}
	renderCmd.Flags().IntVar(&every, "every", 2, "gif: keep one frame in every N")
	renderCmd.Flags().StringVar(&caption, "caption", "", "png: caption text")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless and store the trace",
		Args:  cobra.NoArgs,
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&sampleEvery, "sample", 10, "store particles every N frames (0 for none)")
	runCmd.Flags().StringSliceVar(&resizes, "resize", nil, "resize before a frame, as frame:WxH")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot link counts of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark frame cost",
		Args:  cobra.NoArgs,
		RunE:  benchField,
	}

	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "run across consecutive seeds",
		Args:  cobra.NoArgs,
		RunE:  runBatch,
	}
	batchCmd.Flags().IntVar(&numRuns, "runs", 8, "number of seeds")
	batchCmd.Flags().IntVar(&parallel, "parallel", 4, "runs in flight (0 for unlimited)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tVIEWPORT\tORBS\tTHRESHOLD\tTHEME")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%.0fx%.0f\t%d/%d @%.0f\t%.0f\t%s\n",
					name,
					p.Viewport.Width, p.Viewport.Height,
					p.Particles.SmallCount, p.Particles.LargeCount, p.Particles.Breakpoint,
					p.Links.Threshold,
					p.Theme,
				)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(liveCmd, renderCmd, runCmd, listCmd, plotCmd, benchCmd, batchCmd, presetsCmd)
	return rootCmd
}

// loadConfig layers defaults, the preset, the config file and changed flags,
// in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	label := "custom"

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
		label = preset
	}

	if configFile != "" {
		fileCfg, err := config.LoadOnto(configFile, cfg)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = fileCfg
		if preset == "" {
			label = "config"
		}
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Viewport.Width = width
	}
	if flags.Changed("height") {
		cfg.Viewport.Height = height
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("frames") {
		cfg.Frames = frames
	}
	if flags.Changed("fps") {
		cfg.RefreshHz = refreshHz
	}
	if flags.Changed("theme") {
		cfg.Theme = theme
	}
	if flags.Changed("threshold") {
		cfg.Links.Threshold = threshold
	}
	if flags.Changed("color") {
		cfg.Color = colorHex
	}

	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, label, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if plain {
		ctx, cancel := signalContext()
		defer cancel()

		n := 0
		if cmd.Flags().Changed("frames") {
			n = cfg.Frames
		}
		color := os.Getenv("NO_COLOR") == ""
		cols, rows := terminalCells(os.Stdout.Fd())
		return tui.NewLiveRenderer(os.Stdout, tui.Options{
			Renderer:  cfg.RendererOptions(),
			Cols:      cols,
			Rows:      rows,
			RefreshHz: cfg.RefreshHz,
			Frames:    n,
			Rand:      sim.NewRand(cfg.Seed),
			Color:     color,
		}).Run(ctx)
	}

	return viz.RunLive(viz.Options{
		Renderer:  cfg.RendererOptions(),
		RefreshHz: cfg.RefreshHz,
		Theme:     cfg.Theme,
		Seed:      cfg.Seed,
		Rand:      sim.NewRand(cfg.Seed),
	})
}

// terminalCells returns the canvas size for the terminal on fd, leaving a
// row for the status line. It returns zeros when fd is not a terminal.
func terminalCells(fd uintptr) (cols, rows int) {
	if !term.IsTerminal(fd) {
		return 0, 0
	}
	w, h, err := term.GetSize(fd)
	if err != nil || w < 1 || h < 2 {
		return 0, 0
	}
	return w, h - 1
}

func renderSnapshot(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	path := args[0]
	n := cfg.Frames
	if !cmd.Flags().Changed("frames") && strings.HasSuffix(strings.ToLower(path), ".gif") {
		n = 120
	}

	opts := export.Options{
		Renderer: cfg.RendererOptions(),
		Width:    cfg.Viewport.Width,
		Height:   cfg.Viewport.Height,
		Frames:   n,
		Every:    every,
		Rand:     sim.NewRand(cfg.Seed),
		Caption:  caption,
	}

	start := time.Now()
	if err := export.Save(path, opts); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d frames, seed %d) in %v\n", path, n, cfg.Seed, time.Since(start).Round(time.Millisecond))
	return nil
}

func simConfig(cfg *config.Config) sim.Config {
	return sim.Config{
		Renderer: cfg.RendererOptions(),
		Width:    cfg.Viewport.Width,
		Height:   cfg.Viewport.Height,
		Frames:   cfg.Frames,
		Seed:     cfg.Seed,
	}
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, label, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	simCfg := simConfig(cfg)
	simCfg.SampleEvery = sampleEvery
	for _, arg := range resizes {
		rs, err := parseResize(arg)
		if err != nil {
			return err
		}
		simCfg.Resizes = append(simCfg.Resizes, rs)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %d frames at %.0fx%.0f...\n", simCfg.Frames, simCfg.Width, simCfg.Height)
	start := time.Now()

	result, err := sim.Run(ctx, simCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if !result.Contained {
		log.Printf("particles left the viewport (seed %d)", result.Seed)
	}

	runID, err := st.Save(label, simCfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("seed: %d\n", result.Seed)
	fmt.Printf("particles: %d\n", result.Particles)
	printSummary(result.Summary)
	return nil
}

// parseResize reads "frame:WxH".
func parseResize(s string) (sim.Resize, error) {
	at, size, ok := strings.Cut(s, ":")
	if !ok {
		return sim.Resize{}, fmt.Errorf("resize %q: want frame:WxH", s)
	}
	w, h, ok := strings.Cut(size, "x")
	if !ok {
		return sim.Resize{}, fmt.Errorf("resize %q: want frame:WxH", s)
	}

	var rs sim.Resize
	var err error
	if rs.Frame, err = strconv.Atoi(at); err != nil {
		return sim.Resize{}, fmt.Errorf("resize %q: %w", s, err)
	}
	if rs.Width, err = strconv.ParseFloat(w, 64); err != nil {
		return sim.Resize{}, fmt.Errorf("resize %q: %w", s, err)
	}
	if rs.Height, err = strconv.ParseFloat(h, 64); err != nil {
		return sim.Resize{}, fmt.Errorf("resize %q: %w", s, err)
	}
	return rs, nil
}

func printSummary(s analysis.Summary) {
	fmt.Println("\nsummary:")
	fmt.Printf("  frames: %d\n", s.Frames)
	fmt.Printf("  links: mean %.2f, stddev %.2f, max %.0f\n", s.MeanLinks, s.StdDevLinks, s.MaxLinks)
	fmt.Printf("  link opacity: %.4f\n", s.MeanOpacity)
	fmt.Printf("  frame time: mean %v, p99 %v\n", s.MeanFrame, s.P99Frame)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tTIME\tVIEWPORT\tFRAMES\tORBS\tLINKS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0fx%.0f\t%d\t%d\t%.2f\n",
			run.ID,
			run.Label,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Width, run.Height,
			run.Frames,
			run.Particles,
			run.Summary.MeanLinks,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	stats, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	if len(stats) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("viewport: %.0fx%.0f\n", meta.Width, meta.Height)
	fmt.Printf("frames: %d\n\n", len(stats))

	links := make([]float64, len(stats))
	opacity := make([]float64, len(stats))
	for i, s := range stats {
		links[i] = float64(s.Links)
		opacity[i] = s.MeanOpacity
	}

	fmt.Println(asciigraph.Plot(links,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("links per frame"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(opacity,
		asciigraph.Height(6),
		asciigraph.Width(80),
		asciigraph.Precision(3),
		asciigraph.Caption("mean link opacity"),
	))

	return nil
}

func benchField(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	result, err := sim.Run(ctx, simConfig(cfg))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	s := result.Summary
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tFRAMES\tTOTAL\tMEAN\tP99\tMAX FPS")
	fps := 0.0
	if s.MeanFrame > 0 {
		fps = float64(time.Second) / float64(s.MeanFrame)
	}
	fmt.Fprintf(w, "%d\t%d\t%v\t%v\t%v\t%.0f\n",
		result.Particles,
		result.Frames,
		elapsed.Round(time.Microsecond),
		s.MeanFrame,
		s.P99Frame,
		fps,
	)
	return w.Flush()
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if numRuns < 1 {
		return fmt.Errorf("runs must be positive, got %d", numRuns)
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	results, err := sim.NewEnsemble(simConfig(cfg), numRuns, cfg.Seed, parallel).Run(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tORBS\tMEAN LINKS\tMAX LINKS\tOPACITY\tCONTAINED")
	meanLinks := make([]float64, len(results))
	for i, r := range results {
		meanLinks[i] = r.Summary.MeanLinks
		fmt.Fprintf(w, "%d\t%d\t%.2f\t%.0f\t%.4f\t%v\n",
			r.Seed,
			r.Particles,
			r.Summary.MeanLinks,
			r.Summary.MaxLinks,
			r.Summary.MeanOpacity,
			r.Contained,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	spread := analysis.AcrossRuns(meanLinks)
	fmt.Printf("\n%d runs in %v: mean links %.2f ± %.2f\n", len(results), time.Since(start).Round(time.Millisecond), spread.Mean, spread.StdDev)
	return nil
}
