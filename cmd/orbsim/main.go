package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/san-kum/orbsim/internal/analysis"
	"github.com/san-kum/orbsim/internal/astro"
	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/experiment"
	"github.com/san-kum/orbsim/internal/export"
	"github.com/san-kum/orbsim/internal/metrics"
	"github.com/san-kum/orbsim/internal/scene"
	"github.com/san-kum/orbsim/internal/sim"
	"github.com/san-kum/orbsim/internal/storage"
	"github.com/san-kum/orbsim/internal/viz"
	"github.com/san-kum/orbsim/internal/vmath"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	// pacing
	step      float64
	days      float64
	scale     float64
	sample    int
	epoch     float64
	fps       int
	theme     string
	threshold float64
	// inspection
	body      string
	reference string
	format    string
	afterDays float64
	// bench
	benchTicks  int
	parallel    int
	profileMode string
	metricsAddr string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "orbsim",
		Short:        "orbital mechanics simulator",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive(cmd, nil)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".orbsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "pacing preset")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene and store sampled states",
		Long:  "run a scene and store sampled states. scene is a preset name or a scene yaml file.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addPacingFlags(runCmd)
	runCmd.Flags().IntVar(&sample, "sample", config.DefaultSampleInterval, "ticks between samples")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run a scene with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addPacingFlags(liveCmd)
	liveCmd.Flags().IntVar(&fps, "fps", 30, "frame rate")
	liveCmd.Flags().StringVar(&theme, "theme", viz.Themes[0].Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	liveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a body's track relative to a reference body",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&body, "body", "", "body to plot (default: every body)")
	plotCmd.Flags().StringVar(&reference, "ref", "", "reference body (default: first body)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "estimate orbital periods and apsides",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&body, "body", "", "body to analyze (default: every body)")
	analyzeCmd.Flags().StringVar(&reference, "ref", "", "reference body (default: first body)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&format, "format", "json", "json (metadata and states), meta or svg (tracks)")
	exportCmd.Flags().StringVar(&body, "body", "", "body to draw in svg (default: every body)")
	exportCmd.Flags().StringVar(&reference, "ref", "", "svg reference body (default: first body)")

	elementsCmd := &cobra.Command{
		Use:   "elements [scene]",
		Short: "print osculating orbital elements of a scene",
		Args:  cobra.MaximumNArgs(1),
		RunE:  printElements,
	}
	elementsCmd.Flags().Float64Var(&afterDays, "after", 0, "simulated days to run before sampling")
	elementsCmd.Flags().Float64Var(&step, "step", config.DefaultStep, "wall seconds per tick")
	elementsCmd.Flags().Float64Var(&scale, "scale", config.DefaultScale, "simulated seconds per wall second")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scene and pacing presets",
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "measure tick throughput",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScene,
	}
	benchCmd.Flags().IntVar(&benchTicks, "ticks", 10000, "ticks per world")
	benchCmd.Flags().IntVar(&parallel, "parallel", 1, "independent worlds run concurrently")
	benchCmd.Flags().StringVar(&profileMode, "profile", "", "write a cpu or mem profile to the data directory")
	benchCmd.Flags().Float64Var(&threshold, "mass-threshold", 0, "skip pairs of bodies both lighter than this (kg)")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, analyzeCmd, exportCmd, elementsCmd, presetsCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addPacingFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&step, "step", config.DefaultStep, "wall seconds per tick")
	cmd.Flags().Float64Var(&days, "days", config.DefaultDurationDays, "simulated duration in days")
	cmd.Flags().Float64Var(&scale, "scale", config.DefaultScale, "simulated seconds per wall second")
	cmd.Flags().Float64Var(&epoch, "epoch", 0, "start epoch as a julian date (default: scene epoch)")
	cmd.Flags().Float64Var(&threshold, "mass-threshold", 0, "skip pairs of bodies both lighter than this (kg)")
}

// loadConfig layers the config file, the pacing preset and changed flags,
// in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if preset != "" {
		var ok bool
		if cfg, ok = config.Apply(cfg, preset); !ok {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	flags := cmd.Flags()
	if flags.Changed("step") {
		cfg.Step = step
	}
	if flags.Changed("days") {
		cfg.DurationDays = days
	}
	if flags.Changed("scale") {
		cfg.Scale = scale
	}
	if flags.Changed("sample") {
		cfg.SampleInterval = sample
	}
	if flags.Changed("epoch") {
		cfg.Epoch = epoch
	}
	if flags.Changed("mass-threshold") {
		cfg.Physics.MassThreshold = threshold
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = metricsAddr
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := cfg.Log.Logger(os.Stderr)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return cfg, nil
}

// resolveScene accepts a preset name or a path to a scene file.
func resolveScene(name string) (scene.Description, error) {
	if d, ok := scene.GetPreset(name); ok {
		return d, nil
	}
	ext := filepath.Ext(name)
	if ext == ".yaml" || ext == ".yml" {
		d, err := scene.Load(name)
		if err == nil && d.Name == "" {
			d.Name = strings.TrimSuffix(filepath.Base(name), ext)
		}
		return d, err
	}
	return scene.Description{}, fmt.Errorf("unknown scene: %s (available: %v)", name, scene.ListPresets())
}

func sceneArg(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Scene
}

// buildWorld creates a world configured by cfg and populated from d.
func buildWorld(cfg *config.Config, d scene.Description) (*sim.World, *scene.Result, error) {
	if cfg.Epoch != 0 {
		d.Epoch = cfg.Epoch
	}
	logger := slog.Default()
	w := sim.NewWorld(len(d.Bodies),
		sim.WithLogger(logger),
		sim.WithIntegrator(cfg.Integrator()),
		sim.WithClock(sim.NewClock(d.EpochJD(), cfg.Scale)),
	)
	res, err := scene.Replace(w, d, sceneOptions(cfg)...)
	if err != nil {
		return nil, nil, err
	}
	if len(res.Approximate) > 0 {
		logger.Warn("kepler solve did not converge", "bodies", res.Approximate)
	}
	return w, res, nil
}

func sceneOptions(cfg *config.Config) []scene.Option {
	logger := slog.Default()
	return []scene.Option{
		scene.WithConverter(cfg.Converter(logger)),
		scene.WithLogger(logger),
	}
}

// serveMetrics starts the metrics endpoint when cfg asks for one and
// returns nil when metrics are off.
func serveMetrics(ctx context.Context, cfg *config.Config) *metrics.Collector {
	if cfg.MetricsAddr == "" {
		return nil
	}
	c := metrics.NewCollector(nil)
	go func() {
		if err := c.Serve(ctx, cfg.MetricsAddr); err != nil {
			slog.Error("metrics server stopped", "addr", cfg.MetricsAddr, "err", err)
		}
	}()
	slog.Info("serving metrics", "addr", cfg.MetricsAddr)
	return c
}

// driftReporter copies the running energy drift into the collector.
func driftReporter(c *metrics.Collector, drift *metrics.EnergyDrift) sim.Observer {
	return sim.ObserverFunc(func(w *sim.World, r sim.TickReport) {
		drift.Observe(w, r)
		c.SetEnergyDrift(drift.Current())
	})
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	d, err := resolveScene(sceneArg(cfg, args))
	if err != nil {
		return err
	}
	w, _, err := buildWorld(cfg, d)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exp := experiment.New(w, experiment.Config{
		Step:           cfg.StepDuration(),
		Ticks:          cfg.Ticks(),
		SampleInterval: cfg.SampleInterval,
	})
	for _, m := range experiment.NewRegistry().DefaultMetrics() {
		exp.AddMetric(m)
	}
	if c := serveMetrics(ctx, cfg); c != nil {
		exp.AddObserver(c)
		exp.AddObserver(driftReporter(c, metrics.NewEnergyDrift()))
		exp.SetTickTimer(c)
	}

	fmt.Printf("running %s for %.2f days (%d ticks)...\n", d.Name, cfg.DurationDays, cfg.Ticks())
	result, err := exp.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if result.Cancelled {
		fmt.Println("interrupted, saving partial run")
	}

	runID, err := st.Save(d.Name, cfg.Step, cfg.Scale, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.WallTime.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d  samples: %d  frozen: %d\n", result.Ticks, len(result.Samples), len(result.Frozen))
	fmt.Printf("epoch: %s -> %s\n", result.Start, result.End)
	fmt.Println("\nmetrics:")
	for _, name := range experiment.NewRegistry().ListMetrics() {
		if v, ok := result.Metrics[name]; ok {
			fmt.Printf("  %s: %.6g\n", name, v)
		}
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	name := sceneArg(cfg, args)
	if len(args) == 0 && cmd.Name() != "live" {
		picked, ok, err := pickScene()
		if err != nil || !ok {
			return err
		}
		name = picked
	}
	d, err := resolveScene(name)
	if err != nil {
		return err
	}

	// The live view owns the terminal; keep logs off it.
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	w, _, err := buildWorld(cfg, d)
	if err != nil {
		return err
	}

	frame := time.Second / 30
	if fps > 0 {
		frame = time.Second / time.Duration(fps)
	}
	if cmd.Flags().Changed("step") || cfg.Step != config.DefaultStep {
		frame = cfg.StepDuration()
	}

	opts := []viz.Option{
		viz.WithTheme(theme),
		viz.WithRebuilder(func(w *sim.World) error {
			_, err := scene.Replace(w, d, sceneOptions(cfg)...)
			return err
		}),
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if c := serveMetrics(ctx, cfg); c != nil {
		opts = append(opts, viz.WithObserver(c), viz.WithObserver(driftReporter(c, metrics.NewEnergyDrift())))
	}

	m := viz.NewModel(w, frame, d.Name, opts...)
	p := tea.NewProgram(m, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func pickScene() (string, bool, error) {
	notes := make(map[string]string)
	for _, name := range scene.ListPresets() {
		d, _ := scene.GetPreset(name)
		notes[name] = fmt.Sprintf("%d bodies", len(d.Bodies))
	}
	final, err := tea.NewProgram(viz.NewPicker("ORBSIM SCENES", scene.ListPresets(), notes)).Run()
	if err != nil {
		return "", false, err
	}
	name, ok := final.(viz.Picker).Chosen()
	return name, ok, nil
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
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDAYS\tTICKS\tBODIES\tFROZEN\tDRIFT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%d\t%d\t%d\t%.2e\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.EndJD-run.StartJD,
			run.Ticks,
			len(run.Bodies),
			run.Frozen,
			run.Metrics["energy_drift"],
		)
	}
	return w.Flush()
}

// loadRun returns a run's metadata and records, with the bodies to inspect
// and the reference body resolved from the flags.
func loadRun(runID string) (*storage.RunMetadata, []storage.Record, []string, string, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, "", err
	}
	records, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, nil, "", err
	}
	if len(records) == 0 || len(meta.Bodies) == 0 {
		return nil, nil, nil, "", fmt.Errorf("no data in run %s", runID)
	}

	ref := reference
	if ref == "" {
		ref = meta.Bodies[0]
	}
	bodies := []string{body}
	if body == "" {
		bodies = nil
		for _, b := range meta.Bodies {
			if b != ref {
				bodies = append(bodies, b)
			}
		}
	}
	return meta, records, bodies, ref, nil
}

// relativeTrack returns a body's track relative to ref along with the
// sample times in days.
func relativeTrack(records []storage.Record, name, ref string) (*analysis.Projection, []float64, error) {
	track, err := storage.Series(records, name)
	if err != nil {
		return nil, nil, err
	}
	origin, err := storage.Series(records, ref)
	if err != nil {
		return nil, nil, err
	}
	pos := make([]vmath.Vec3, len(track))
	times := make([]float64, len(track))
	for i, r := range track {
		pos[i] = r.Position
		times[i] = r.Elapsed / astro.SecondsPerDay
	}
	refPos := make([]vmath.Vec3, len(origin))
	for i, r := range origin {
		refPos[i] = r.Position
	}
	return analysis.Project(pos, refPos), times, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, records, bodies, ref, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("reference: %s\n\n", ref)

	const maxPlots = 6
	for i, name := range bodies {
		if i == maxPlots {
			fmt.Printf("(%d more bodies, use --body)\n", len(bodies)-maxPlots)
			break
		}
		proj, _, err := relativeTrack(records, name, ref)
		if err != nil {
			return err
		}
		au := proj.Scaled(astro.AU)
		graph := asciigraph.PlotMany([][]float64{au.X, au.Y},
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Magenta),
			asciigraph.Caption(fmt.Sprintf("%s x (cyan), y (magenta) relative to %s [AU]", name, ref)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, records, bodies, ref, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("orbit analysis: %s\n", meta.ID)
	fmt.Printf("reference: %s\n\n", ref)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tPERIOD (d)\tPERIAPSIS (AU)\tAPOAPSIS (AU)\tSAMPLES")
	var spectrum []float64
	for _, name := range bodies {
		proj, times, err := relativeTrack(records, name, ref)
		if err != nil {
			return err
		}
		x := proj.X
		// the final sample lands on the last tick, not on the interval grid
		interval, uniform := analysis.Uniform(times, 1e-6)
		if !uniform && len(times) > 2 {
			x, times = x[:len(x)-1], times[:len(times)-1]
			interval, uniform = analysis.Uniform(times, 1e-6)
		}
		period := "-"
		if uniform {
			if p, err := analysis.DominantPeriod(x, interval); err == nil {
				period = fmt.Sprintf("%.2f", p)
			}
		}
		peri, apo := analysis.Apsides(proj.Distance)
		fmt.Fprintf(w, "%s\t%s\t%.4f\t%.4f\t%d\n", name, period, peri/astro.AU, apo/astro.AU, len(proj.X))
		if spectrum == nil && uniform {
			spectrum = analysis.PowerSpectrum(x)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(spectrum) > 4 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(spectrum[:len(spectrum)/4],
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("power spectrum of %s x", bodies[0])),
		))
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	switch format {
	case "meta":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	case "json":
		records, err := st.LoadStates(args[0])
		if err != nil {
			return err
		}
		return storage.ExportJSON(os.Stdout, *meta, records)
	case "svg":
		_, records, bodies, ref, err := loadRun(args[0])
		if err != nil {
			return err
		}
		tracks := make([]export.Track, 0, len(bodies))
		for _, name := range bodies {
			proj, _, err := relativeTrack(records, name, ref)
			if err != nil {
				return err
			}
			au := proj.Scaled(astro.AU)
			tracks = append(tracks, export.Track{Name: name, X: au.X, Y: au.Y})
		}
		return export.TracksToSVG(os.Stdout, tracks, 800)
	default:
		return fmt.Errorf("unknown format: %s (available: json, meta, svg)", format)
	}
}

func printElements(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	d, err := resolveScene(sceneArg(cfg, args))
	if err != nil {
		return err
	}
	w, res, err := buildWorld(cfg, d)
	if err != nil {
		return err
	}

	if afterDays > 0 {
		cfg.DurationDays = afterDays
		exp := experiment.New(w, experiment.Config{
			Step:           cfg.StepDuration(),
			Ticks:          cfg.Ticks(),
			SampleInterval: cfg.Ticks(),
		})
		if _, err := exp.Run(cmd.Context()); err != nil {
			return err
		}
	}

	conv := cfg.Converter(slog.Default())
	fmt.Printf("%s at %s\n\n", d.Name, w.Clock.Now())
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BODY\tREF\tA (AU)\tDA (km)\tE\tDE\tI\tNODE\tPERI\tM\tPERIOD (d)")
	for _, name := range res.Order {
		e := res.Entities[name]
		if !w.Orbits.Has(e) {
			continue
		}
		initial, el, err := w.Osculating(e, conv)
		if err != nil {
			fmt.Fprintf(tw, "%s\t%s\t%v\n", name, w.Name(initial.Reference), err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%.6f\t%+.3f\t%.6f\t%+.2e\t%.4f\t%.4f\t%.4f\t%.4f\t%.3f\n",
			name, w.Name(el.Reference),
			el.SemiMajorAxis/astro.AU,
			(el.SemiMajorAxis-initial.SemiMajorAxis)/1000,
			el.Eccentricity,
			el.Eccentricity-initial.Eccentricity,
			degrees(el.Inclination),
			degrees(el.LongitudeOfAscendingNode),
			degrees(el.ArgumentOfPeriapsis),
			degrees(el.MeanAnomaly),
			el.SiderealPeriod/astro.SecondsPerDay,
		)
	}
	return tw.Flush()
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

func listPresets(cmd *cobra.Command, args []string) error {
	fmt.Println("scenes:")
	for _, name := range scene.ListPresets() {
		d, _ := scene.GetPreset(name)
		fmt.Printf("  %-20s %d bodies\n", name, len(d.Bodies))
	}
	fmt.Println("\npacing:")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Printf("  %-20s step %.2fs, x%g, %.2f days\n", name, p.Step, p.Scale, p.DurationDays)
	}
	return nil
}

func benchScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	d, err := resolveScene(sceneArg(cfg, args))
	if err != nil {
		return err
	}

	switch profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(dataDir), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(dataDir), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile: %s (available: cpu, mem)", profileMode)
	}

	exps := make([]*experiment.Experiment, max(parallel, 1))
	for i := range exps {
		w, _, err := buildWorld(cfg, d)
		if err != nil {
			return err
		}
		exps[i] = experiment.New(w, experiment.Config{
			Step:           cfg.StepDuration(),
			Ticks:          benchTicks,
			SampleInterval: benchTicks,
		})
	}

	fmt.Printf("benchmarking %s: %d bodies, %d worlds, %d ticks each\n\n", d.Name, len(d.Bodies), len(exps), benchTicks)
	start := time.Now()
	results, err := experiment.RunAll(cmd.Context(), exps)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORLD\tTICKS\tTIME\tTICKS/SEC\tSIM DAYS")
	total := 0
	for i, r := range results {
		total += r.Ticks
		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\t%.2f\n",
			i, r.Ticks, r.WallTime.Round(time.Microsecond),
			float64(r.Ticks)/r.WallTime.Seconds(),
			r.End.SecondsSince(r.Start)/astro.SecondsPerDay,
		)
	}
	fmt.Fprintf(w, "all\t%d\t%v\t%.0f\t\n", total, elapsed.Round(time.Microsecond), float64(total)/elapsed.Seconds())
	return w.Flush()
}
