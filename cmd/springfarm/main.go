package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/springfarm/internal/analysis"
	"github.com/san-kum/springfarm/internal/automation"
	"github.com/san-kum/springfarm/internal/config"
	"github.com/san-kum/springfarm/internal/integrators"
	"github.com/san-kum/springfarm/internal/metrics"
	"github.com/san-kum/springfarm/internal/sim"
	"github.com/san-kum/springfarm/internal/storage"
	"github.com/san-kum/springfarm/internal/topology"
	"github.com/san-kum/springfarm/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string
	logFile  string

	sceneFile   string
	preset      string
	steps       int
	recordEvery int
	integrator  string
	asJSON      bool

	column  string
	svgOut  string
	gifPath string
	svgPath string
	theme   string
	live    bool

	sweepTarget string
	sweepID     int
	sweepParam  string
	sweepMin    float64
	sweepMax    float64
	sweepPoints int

	phaseAxis string
	lyapDelta float64

	trials  int
	perturb float64
	radius  float64
	seed    int64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "springfarm",
		Short:         "2D mass-spring simulation lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runInteractive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".springfarm", "data directory")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&logFile, "log-file", "", "append logs to this file")

	sceneFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&sceneFile, "scene", "", "scene file (yaml)")
		cmd.Flags().StringVar(&preset, "preset", "", "preset scene")
		cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "steps to simulate")
		cmd.Flags().IntVar(&recordEvery, "record-every", config.DefaultRecordEvery, "record a frame every n steps")
		cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator ("+strings.Join(integrators.Names(), ", ")+")")
	}
	outputFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&gifPath, "gif", "springfarm.gif", "GIF recording path")
		cmd.Flags().StringVar(&svgPath, "svg", "springfarm.svg", "SVG snapshot path")
		cmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	}
	outputFlags(rootCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "edit and run a scene in the terminal",
		RunE:  runLive,
	}
	sceneFlags(liveCmd)
	outputFlags(liveCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scene headless and store the result",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	sceneFlags(runCmd)
	runCmd.Flags().BoolVar(&asJSON, "json", false, "write the run as JSON to stdout instead of storing it")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&column, "column", "", "column to plot (default: energy and momentum)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "summarize every recorded column",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id] [atom_id]",
		Short: "phase space plot of one atom",
		Args:  cobra.ExactArgs(2),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&phaseAxis, "axis", "x", "x or y")

	lyapCmd := &cobra.Command{
		Use:   "lyapunov",
		Short: "estimate how fast nearby starts of a scene separate",
		RunE:  runLyapunov,
	}
	sceneFlags(lyapCmd)
	lyapCmd.Flags().Float64Var(&lyapDelta, "delta", 1e-6, "initial displacement of the first atom")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render the last recorded frame of a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  svgRun,
	}
	svgCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (default stdout)")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same scene",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	sceneFlags(compareCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark every integrator on every preset",
		RunE:  benchIntegrators,
	}
	benchCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "steps per run")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available preset scenes",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tATOMS\tSPRINGS\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", name, len(p.Scene.Atoms), len(p.Scene.Springs), p.Description)
			}
			_ = w.Flush()
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [file]",
		Short: "write a preset scene to a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE:  initScene,
	}
	initCmd.Flags().StringVar(&preset, "preset", "default", "preset scene")

	scriptCmd := &cobra.Command{
		Use:   "script [file]",
		Short: "apply a yaml script of edits and steps to a scene",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}
	sceneFlags(scriptCmd)
	scriptCmd.Flags().BoolVar(&live, "live", false, "open the edited scene in the terminal UI")
	outputFlags(scriptCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "vary one atom or spring parameter and compare runs",
		RunE:  runSweep,
	}
	sceneFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepTarget, "target", "spring", "atom or spring")
	sweepCmd.Flags().IntVar(&sweepID, "id", 1, "target id")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "k", "mass for atoms; k or req for springs")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.1, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 2, "last value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 5, "number of values")

	mcCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb atom positions at random and count stable runs",
		RunE:  runMonteCarlo,
	}
	sceneFlags(mcCmd)
	mcCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	mcCmd.Flags().Float64Var(&perturb, "perturb", 5, "maximum position offset per axis")
	mcCmd.Flags().Float64Var(&radius, "radius", 1000, "atoms leaving this radius make a trial unstable")
	mcCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")

	rootCmd.AddCommand(liveCmd, runCmd, listCmd, plotCmd, analyzeCmd, phaseCmd, lyapCmd, exportCmd, svgCmd,
		compareCmd, benchCmd, presetsCmd, initCmd, scriptCmd, sweepCmd, mcCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runInteractive(cmd *cobra.Command, args []string) error {
	if err := applyTheme(); err != nil {
		return err
	}
	logger, closeLog, err := newLogger(true)
	if err != nil {
		return err
	}
	defer closeLog()
	return viz.RunInteractive(logger, viz.WithOutput(gifPath, svgPath))
}

func applyTheme() error {
	if theme == "" {
		return nil
	}
	if !slices.Contains(viz.ThemeNames(), theme) {
		return fmt.Errorf("unknown theme: %s (available: %v)", theme, viz.ThemeNames())
	}
	viz.SetTheme(theme)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	if sceneFile == "" && preset == "" {
		return runInteractive(cmd, args)
	}
	if err := applyTheme(); err != nil {
		return err
	}

	logger, closeLog, err := newLogger(true)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, name, err := loadScene(cmd)
	if err != nil {
		return err
	}
	s, err := newSimulator(cfg, logger)
	if err != nil {
		return err
	}
	return viz.Run(s, name,
		viz.WithLogger(logger),
		viz.WithTick(time.Duration(cfg.TickMS)*time.Millisecond),
		viz.WithOutput(gifPath, svgPath),
	)
}

func newSimulator(cfg *config.Config, logger *log.Logger, ms ...sim.Metric) (*sim.Simulator, error) {
	integ, err := integrators.New(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	opts := []sim.Option{sim.WithIntegrator(integ), sim.WithMetrics(ms...)}
	if logger != nil {
		opts = append(opts, sim.WithLogger(logger))
	}
	return sim.New(cfg.Configuration(), opts...)
}

func runMetrics() []sim.Metric {
	return []sim.Metric{
		metrics.NewEnergy(),
		metrics.NewEnergyDrift(),
		metrics.NewMomentumDrift(),
		metrics.NewStrain(),
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, name, err := loadScene(cmd)
	if err != nil {
		return err
	}
	s, err := newSimulator(cfg, logger, runMetrics()...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("running", "scene", name, "integrator", s.Integrator(), "steps", cfg.Steps)
	every := max(cfg.Steps/10, 1)
	s.AddObserver(sim.ObserverFunc(func(st *topology.State, rep integrators.Report) {
		if st.Frame%every == 0 {
			logger.Debug("progress", "frame", st.Frame, "energy", metrics.TotalEnergy(st), "com", metrics.CenterOfMass(st))
		}
	}))
	start := time.Now()
	result, runErr := s.Run(ctx, cfg.Steps, cfg.RecordEvery)
	elapsed := time.Since(start)

	// A diverged run is still worth keeping; anything else is not.
	if runErr != nil && !errors.Is(runErr, sim.ErrUnstable) {
		return runErr
	}
	if runErr != nil {
		logger.Warn("run diverged", "err", runErr)
	}

	info := storage.RunInfo{
		Scene:       name,
		Integrator:  s.Integrator(),
		Dt:          integrators.Dt,
		RecordEvery: cfg.RecordEvery,
		Initial:     cfg.Configuration(),
	}
	if asJSON {
		if err := storage.ExportJSON(os.Stdout, info, result); err != nil {
			return err
		}
		return runErr
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(info, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("recorded frames: %d\n", len(result.Frames))
	if result.DegenerateSprings > 0 {
		fmt.Printf("degenerate springs: %d\n", result.DegenerateSprings)
	}
	fmt.Println("\nmetrics:")
	fmt.Printf("  energy_change: %.6e\n", result.EnergyDrift)
	names := make([]string, 0, len(result.Metrics))
	for n := range result.Metrics {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("  %s: %.6e\n", n, result.Metrics[n])
	}
	return runErr
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, name, err := loadScene(cmd)
	if err != nil {
		return err
	}
	for _, n := range args {
		if _, err := integrators.New(n); err != nil {
			return err
		}
	}

	fmt.Printf("comparing integrators on %s (dt=%.2f, steps=%d)\n\n", name, integrators.Dt, cfg.Steps)

	start := time.Now()
	results, runErr := sim.NewEnsemble(cfg.Configuration(), args, runMetrics, logger).
		Run(context.Background(), cfg.Steps, cfg.RecordEvery)
	elapsed := time.Since(start)
	if runErr != nil && !errors.Is(runErr, sim.ErrUnstable) {
		return runErr
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tSTEPS\tMEAN_ENERGY\tENERGY_DRIFT\tMOMENTUM_DRIFT\tSTRAIN\tFINAL_ENERGY")
	for i, r := range results {
		if r == nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\t-\t-\n", args[i])
			continue
		}
		final := 0.0
		if len(r.Energy) > 0 {
			final = r.Energy[len(r.Energy)-1]
		}
		fmt.Fprintf(w, "%s\t%d\t%.4f\t%.3e\t%.3e\t%.4f\t%.4f\n", args[i], r.StepsTaken,
			r.Metrics["energy"], r.Metrics["energy_drift"], r.Metrics["momentum_drift"], r.Metrics["strain"], final)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\ntotal time: %v\n", elapsed)
	if runErr != nil {
		fmt.Printf("warning: %v\n", runErr)
	}
	return nil
}

func benchIntegrators(cmd *cobra.Command, args []string) error {
	fmt.Printf("benchmarking %d steps per run\n\n", steps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tINTEGRATOR\tATOMS\tSPRINGS\tTIME\tSTEPS/SEC")

	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		for _, integName := range integrators.Names() {
			cfg.Integrator = integName
			s, err := newSimulator(cfg, nil)
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := s.Run(context.Background(), steps, steps)
			elapsed := time.Since(start)
			if err != nil && !errors.Is(err, sim.ErrUnstable) {
				return err
			}

			rate := float64(result.StepsTaken) / elapsed.Seconds()
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%v\t%.0f\n", name, integName,
				len(cfg.Scene.Atoms), len(cfg.Scene.Springs), elapsed, rate)
		}
	}
	return w.Flush()
}

func initScene(cmd *cobra.Command, args []string) error {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d atoms, %d springs)\n", args[0], len(cfg.Scene.Atoms), len(cfg.Scene.Springs))
	return nil
}

func runScript(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger(live)
	if err != nil {
		return err
	}
	defer closeLog()

	script, err := automation.LoadScript(args[0])
	if err != nil {
		return err
	}
	cfg, name, err := loadScene(cmd)
	if err != nil {
		return err
	}
	s, err := newSimulator(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := automation.NewRunner(s, logger).Run(ctx, script); err != nil {
		return err
	}

	if live {
		if err := applyTheme(); err != nil {
			return err
		}
		if script.Name != "" {
			name = script.Name
		}
		return viz.Run(s, name,
			viz.WithLogger(logger),
			viz.WithTick(time.Duration(cfg.TickMS)*time.Millisecond),
			viz.WithOutput(gifPath, svgPath),
		)
	}

	final := s.Configuration()
	st := s.State()
	fmt.Printf("script %q applied: %d actions\n", script.Name, len(script.Actions))
	fmt.Printf("frame: %d\n", st.Frame)
	fmt.Printf("atoms: %d, springs: %d\n", len(final.Atoms), len(final.Springs))
	fmt.Printf("energy: %.6f\n", metrics.TotalEnergy(st))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, name, err := loadScene(cmd)
	if err != nil {
		return err
	}

	sweep := &automation.ParameterSweep{
		Integrator: cfg.Integrator,
		Target:     sweepTarget,
		TargetID:   sweepID,
		ParamName:  sweepParam,
		ParamMin:   sweepMin,
		ParamMax:   sweepMax,
		NumSteps:   sweepPoints,
		Steps:      cfg.Steps,
	}
	results, err := automation.RunSweep(context.Background(), cfg.Configuration(), sweep, logger)
	if err != nil {
		return err
	}

	fmt.Printf("sweep %s %d %s on %s\n\n", sweepTarget, sweepID, sweepParam, name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VALUE\tMIN_ENERGY\tMAX_ENERGY\tENERGY_DRIFT\tSTABLE")
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%.4f\t%.4f\t%.3e\t%v\n", r.ParamValue, r.MinEnergy, r.MaxEnergy, r.EnergyDrift, r.Stable)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, name, err := loadScene(cmd)
	if err != nil {
		return err
	}

	mc := &automation.MonteCarloConfig{
		Integrator:   cfg.Integrator,
		Perturbation: perturb,
		NumTrials:    trials,
		Steps:        cfg.Steps,
		Radius:       radius,
		Seed:         seed,
	}
	results, err := automation.RunMonteCarlo(context.Background(), cfg.Configuration(), mc, logger)
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("monte carlo on %s: %d trials, seed %d\n", name, len(results), seed)
	fmt.Printf("stable: %d\n", stable)
	fmt.Printf("unstable: %d\n", unstable)
	if len(results) > 0 {
		fmt.Printf("stable fraction: %.2f\n", float64(stable)/float64(len(results)))
	}
	return nil
}

func runLyapunov(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadScene(cmd)
	if err != nil {
		return err
	}

	lambda, err := analysis.LyapunovExponent(cfg.Configuration(), cfg.Integrator, cfg.Steps, lyapDelta)
	if err != nil {
		return err
	}
	fmt.Printf("lyapunov exponent of %s (%s, %d steps): %.5f\n", name, cfg.Integrator, cfg.Steps, lambda)
	if lambda > 0.05 {
		fmt.Println("nearby starts separate exponentially")
	}
	return nil
}
