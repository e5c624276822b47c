package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/hydrosim/internal/config"
	"github.com/san-kum/hydrosim/internal/logging"
	"github.com/san-kum/hydrosim/internal/storage"
	"github.com/san-kum/hydrosim/internal/viz"
)

var (
	settingsFile string
	dataDir      string
	logLevel     string

	settings *config.Settings
	log      zerolog.Logger

	// scenario selection and overrides
	configFile string
	preset     string
	dt         float64
	duration   float64

	// telemetry
	influx     bool
	backupPath string

	// inspection
	columns    []string
	column     string
	outputPath string
	heading    float64

	// tuning
	params    []string
	objective string
	target    float64
	band      float64
	maximize  bool
	parallel  int
	topN      int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "hydrosim",
		Short:         "marine vehicle actuator and hydrodynamics simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := tea.NewProgram(viz.NewApp(log), tea.WithAltScreen()).Run()
			return err
		},
	}

	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "settings file (default ./hydrosim.yaml or ~/.hydrosim/hydrosim.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "run directory (overrides settings)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides settings)")

	runCmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "run a scenario and record it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	scenarioFlags(runCmd)
	runCmd.Flags().BoolVar(&influx, "influx", false, "stream samples to InfluxDB (overrides settings)")
	runCmd.Flags().StringVar(&backupPath, "backup", "", "gzipped line protocol file used when InfluxDB is unreachable")

	liveCmd := &cobra.Command{
		Use:   "live [scenario.yaml]",
		Short: "drive a scenario in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	scenarioFlags(liveCmd)
	liveCmd.Flags().BoolVar(&influx, "influx", false, "stream samples to InfluxDB (overrides settings)")
	liveCmd.Flags().StringVar(&backupPath, "backup", "", "gzipped line protocol file used when InfluxDB is unreachable")

	tuneCmd := &cobra.Command{
		Use:   "tune [scenario.yaml]",
		Short: "grid search scenario parameters",
		Long: `Grid search over scenario parameters, one simulation per combination.

Parameters are given as name=v1,v2,... using the names from "hydrosim params".
The objective is either step:<column> (settling towards --target) or
metric:<name> (one of the recorded run metrics).`,
		Args: cobra.MaximumNArgs(1),
		RunE: tuneScenario,
	}
	scenarioFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&params, "param", nil, "parameter grid, name=v1,v2,...")
	tuneCmd.Flags().StringVar(&objective, "objective", "metric:control_effort", "step:<column> or metric:<name>")
	tuneCmd.Flags().Float64Var(&target, "target", 0, "step target for step objectives")
	tuneCmd.Flags().Float64Var(&band, "band", 0.05, "settling band as a fraction of the step")
	tuneCmd.Flags().BoolVar(&maximize, "maximize", false, "prefer larger objective values")
	tuneCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (default GOMAXPROCS)")

	batchCmd := &cobra.Command{
		Use:   "batch <batch.yaml>",
		Short: "run and store a batch of scenarios",
		Long: `Run every entry of a batch file and store each run.

Entries select a preset or a scenario file and may override dt, duration,
name and any parameter listed by "hydrosim params".`,
		Args: cobra.ExactArgs(1),
		RunE: runBatch,
	}
	batchCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (default GOMAXPROCS)")

	paramsCmd := &cobra.Command{
		Use:   "params [scenario.yaml]",
		Short: "list tunable parameters of a scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listParams,
	}
	scenarioFlags(paramsCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list [scenario]",
		Short: "list recorded runs",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listRuns,
	}

	rankCmd := &cobra.Command{
		Use:   "rank [metric]",
		Short: "rank completed runs by a metric",
		Args:  cobra.ExactArgs(1),
		RunE:  rankRuns,
	}
	rankCmd.Flags().IntVarP(&topN, "top", "n", 10, "number of runs")
	rankCmd.Flags().BoolVar(&maximize, "desc", false, "largest first")

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a run",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run columns",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&columns, "columns", []string{"x", "y", "z", "yaw"}, "columns to plot")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and step analysis of a column",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&column, "column", "y", "column to analyze")
	analyzeCmd.Flags().Float64Var(&band, "band", 0.05, "settling band as a fraction of the step")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run samples as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw the run's top-down track as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().Float64Var(&heading, "heading-every", 1, "seconds between heading ticks, 0 to disable")

	rootCmd.AddCommand(runCmd, liveCmd, tuneCmd, batchCmd, paramsCmd, presetsCmd, listCmd, rankCmd, deleteCmd,
		plotCmd, analyzeCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func scenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "built-in scenario")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "fixed timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
}

func setup(cmd *cobra.Command) error {
	var err error
	settings, err = config.LoadSettings(settingsFile)
	if err != nil {
		return err
	}
	if dataDir != "" {
		settings.DataDir = dataDir
	}
	if logLevel != "" {
		settings.LogLevel = logLevel
	}
	log = logging.New(os.Stderr, settings.LogLevel, !settings.LogJSON)
	return nil
}

// loadScenario picks the scenario from a file argument or --preset and
// applies --dt and --time when given explicitly.
func loadScenario(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case len(args) == 1:
		c, err := config.Load(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to load scenario: %w", err)
		}
		cfg = c
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	default:
		cfg = config.DefaultConfig()
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	return cfg, cfg.Validate()
}

func openStore() (*storage.Store, error) {
	st := storage.New(settings.DataDir)
	return st, st.Init()
}

// openIndex returns nil when the index cannot be opened; the run
// directories remain the source of truth.
func openIndex() *storage.Index {
	if err := os.MkdirAll(filepath.Dir(settings.IndexPath), 0755); err != nil {
		log.Warn().Err(err).Msg("run index unavailable")
		return nil
	}
	ix, err := storage.OpenIndex(settings.IndexPath)
	if err != nil {
		log.Warn().Err(err).Str("path", settings.IndexPath).Msg("run index unavailable")
		return nil
	}
	return ix
}
