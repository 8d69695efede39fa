package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/ratetune/internal/automation"
	"github.com/san-kum/ratetune/internal/autotune"
	"github.com/san-kum/ratetune/internal/config"
	"github.com/san-kum/ratetune/internal/dynamo"
	"github.com/san-kum/ratetune/internal/flight"
	"github.com/san-kum/ratetune/internal/metrics"
	"github.com/san-kum/ratetune/internal/optim"
	"github.com/san-kum/ratetune/internal/storage"
	"github.com/san-kum/ratetune/internal/tui"
	"github.com/san-kum/ratetune/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	dt         float64
	duration   float64
	seed       int64
	integrator string
	maneuver   string
	engage     float64
	release    float64
	ffSeed     float64
	frameRate  int
	ffMin      float64
	ffMax      float64
	ffStep     float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ratetune",
		Short: "fixed-wing rate PID autotuning lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ratetune", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")

	tuneCmd := &cobra.Command{
		Use:   "tune [airframe]",
		Short: "run a tuning flight",
		Args:  cobra.ExactArgs(1),
		RunE:  runTune,
	}
	tuneCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "control loop timestep")
	tuneCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "flight duration")
	tuneCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	tuneCmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	tuneCmd.Flags().StringVar(&maneuver, "maneuver", "doublet", "maneuver")
	tuneCmd.Flags().Float64Var(&engage, "engage", config.DefaultEngage, "autotune engage time")
	tuneCmd.Flags().Float64Var(&release, "release", 0, "autotune release time (0 = never)")
	tuneCmd.Flags().Float64Var(&ffSeed, "ff", 0, "initial FF on all axes (0 = config value)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list tuning runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot rate tracking and gain history",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the rate trajectory as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	liveCmd := &cobra.Command{
		Use:   "live [airframe]",
		Short: "interactive tuning flight",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "control loop timestep")
	liveCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "flight duration")
	liveCmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	liveCmd.Flags().StringVar(&maneuver, "maneuver", "doublet", "maneuver")
	liveCmd.Flags().Float64Var(&engage, "engage", config.DefaultEngage, "autotune engage time")

	watchCmd := &cobra.Command{
		Use:   "watch [airframe]",
		Short: "tuning flight with plain terminal dashboard",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}
	watchCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "control loop timestep")
	watchCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "flight duration")
	watchCmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	watchCmd.Flags().StringVar(&maneuver, "maneuver", "doublet", "maneuver")
	watchCmd.Flags().Float64Var(&engage, "engage", config.DefaultEngage, "autotune engage time")
	watchCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted tuning scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	seedCmd := &cobra.Command{
		Use:   "seedsearch [airframe]",
		Short: "grid search for the best initial FF seed",
		Args:  cobra.ExactArgs(1),
		RunE:  runSeedSearch,
	}
	seedCmd.Flags().Float64Var(&ffMin, "ff-min", 20, "lowest FF seed")
	seedCmd.Flags().Float64Var(&ffMax, "ff-max", 120, "highest FF seed")
	seedCmd.Flags().Float64Var(&ffStep, "ff-step", 20, "FF seed step")
	seedCmd.Flags().Float64Var(&duration, "time", 20, "flight duration per seed")

	rootCmd.AddCommand(tuneCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, liveCmd, watchCmd, scenarioCmd, seedCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	// CLI flags override config file values.
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("integrator") || cfg.Integrator == "" {
		cfg.Integrator = integrator
	}
	if cmd.Flags().Changed("maneuver") || cfg.Maneuver == "" {
		cfg.Maneuver = maneuver
	}
	if cmd.Flags().Changed("engage") {
		cfg.Engage = engage
	}
	if cmd.Flags().Changed("release") {
		cfg.Release = release
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type tuningFlight struct {
	dyn     dynamo.System
	integ   dynamo.Integrator
	harness *flight.Harness
	man     flight.Maneuver
}

func buildFlight(cfg *config.Config, airframe string) (*tuningFlight, error) {
	registry := flight.NewRegistry()

	dyn, err := registry.GetAirframe(airframe)
	if err != nil {
		return nil, err
	}

	integ, err := registry.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	profile, err := cfg.BuildProfile()
	if err != nil {
		return nil, err
	}

	man, err := registry.GetManeuver(cfg.Maneuver, profile, cfg.ManeuverParams())
	if err != nil {
		return nil, err
	}

	gains := cfg.BuildGains()
	if ffSeed > 0 {
		for axis := range gains {
			gains[axis].FF = ffSeed
			gains[axis].P = ffSeed * 0.1
		}
	}

	h := flight.NewHarness(flight.Options{
		Profile:  profile,
		Gains:    gains,
		Limits:   cfg.BuildLimits(),
		Maneuver: man,
		Dt:       cfg.Dt,
		Engage:   cfg.Engage,
		Release:  cfg.Release,
	})

	return &tuningFlight{dyn: dyn, integ: integ, harness: h, man: man}, nil
}

func runTune(cmd *cobra.Command, args []string) error {
	airframe := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fl, err := buildFlight(cfg, airframe)
	if err != nil {
		return err
	}

	sim := dynamo.New(fl.dyn, fl.integ, fl.harness)
	sim.AddObserver(fl.harness)
	sim.AddMetric(metrics.NewTracking(fl.man))
	sim.AddMetric(metrics.NewSaturation())
	sim.AddMetric(metrics.NewControlEffort())

	fmt.Printf("tuning %s over %s maneuver...\n", airframe, cfg.Maneuver)
	start := time.Now()

	result, err := sim.Run(context.Background(), dynamo.State{0, 0, 0}, dynamo.Config{
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		Seed:          cfg.Seed,
		ValidateState: true,
	})
	if err != nil {
		return err
	}

	elapsed := time.Since(start)
	finalGains := fl.harness.FinalGains()

	runID, err := st.Save(airframe, cfg.Maneuver, cfg.Integrator, cfg.Dt, cfg.Duration, cfg.Seed, result, fl.harness.Records(), finalGains)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	fmt.Println("\nfinal gains:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "AXIS\tP\tI\tFF")
	for axis := autotune.AxisRoll; axis < autotune.AxisCount; axis++ {
		g := finalGains[axis]
		fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%.1f\n", axis, g.P, g.I, g.FF)
	}
	return w.Flush()
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
	fmt.Fprintln(w, "ID\tAIRFRAME\tMANEUVER\tTIME\tDURATION\tDT\tINTEG\tROLL FF")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%.1f\n",
			run.ID,
			run.Airframe,
			run.Maneuver,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.FinalGains[autotune.AxisRoll].FF,
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

	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("airframe: %s  maneuver: %s\n", meta.Airframe, meta.Maneuver)
	fmt.Printf("samples: %d\n\n", len(states))

	axisNames := []string{"roll rate (deg/s)", "pitch rate (deg/s)", "yaw rate (deg/s)"}
	for varIdx := 0; varIdx < len(axisNames); varIdx++ {
		data := make([]float64, len(states))
		for i := range states {
			if varIdx < len(states[i]) {
				data[i] = states[i][varIdx]
			}
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(axisNames[varIdx]),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	gains, _, err := st.LoadGains(runID)
	if err != nil || len(gains) == 0 {
		return nil
	}

	// FF columns sit at indices 2, 5, 8 (P, I, FF per axis).
	for axis := autotune.AxisRoll; axis < autotune.AxisCount; axis++ {
		col := int(axis)*3 + 2
		data := make([]float64, 0, len(gains))
		for _, row := range gains {
			if col < len(row) {
				data = append(data, row[col])
			}
		}
		if len(data) == 0 {
			continue
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(6),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s FF", axis)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)

	states, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"time", "roll", "pitch", "yaw", "u_roll", "u_pitch", "u_yaw"}); err != nil {
		return err
	}
	for i, row := range states {
		record := make([]string, 0, len(row)+1)
		record = append(record, strconv.FormatFloat(times[i], 'f', 6, 64))
		for _, v := range row {
			record = append(record, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fl, err := buildFlight(cfg, args[0])
	if err != nil {
		return err
	}

	return viz.Run(fl.dyn, fl.integ, fl.harness, cfg.Dt, cfg.Duration)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fl, err := buildFlight(cfg, args[0])
	if err != nil {
		return err
	}

	renderer := tui.NewLiveRenderer(fl.harness, frameRate)
	renderer.Start()
	defer renderer.Stop()

	sim := dynamo.New(fl.dyn, fl.integ, fl.harness)
	sim.AddObserver(fl.harness)
	sim.AddObserver(renderer)

	_, err = sim.Run(context.Background(), dynamo.State{0, 0, 0}, dynamo.Config{
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		ValidateState: true,
	})
	return err
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	results, err := automation.RunScenario(context.Background(), scenario, flight.NewRegistry(), cfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tAIRFRAME\tMANEUVER\tTRACKING RMS\tROLL FF")
	for i, res := range results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.3f\t%.1f\n",
			i+1,
			res.Step.Airframe,
			res.Step.Maneuver,
			res.Result.Metrics["tracking_rms"],
			res.FinalGains[autotune.AxisRoll].FF,
		)
	}
	return w.Flush()
}

func runSeedSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	} else {
		cfg.Duration = 20
	}

	if ffStep <= 0 {
		return fmt.Errorf("ff-step must be positive")
	}

	seeds := make([]float64, 0)
	for ff := ffMin; ff <= ffMax; ff += ffStep {
		seeds = append(seeds, ff)
	}

	fmt.Printf("searching %d FF seeds on %s...\n", len(seeds), args[0])

	best, rms, err := optim.SeedSearch(context.Background(), flight.NewRegistry(), cfg, args[0], seeds)
	if err != nil {
		return err
	}

	fmt.Printf("best FF seed: %.1f (tracking rms %.3f)\n", best, rms)
	return nil
}
