package main

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/hydrosim/internal/automation"
	"github.com/san-kum/hydrosim/internal/config"
	"github.com/san-kum/hydrosim/internal/dynamo"
	"github.com/san-kum/hydrosim/internal/metrics"
	"github.com/san-kum/hydrosim/internal/optim"
	"github.com/san-kum/hydrosim/internal/sim"
	"github.com/san-kum/hydrosim/internal/storage"
	"github.com/san-kum/hydrosim/internal/telemetry"
	"github.com/san-kum/hydrosim/internal/vehicle"
	"github.com/san-kum/hydrosim/internal/viz"
)

// openSink returns nil when streaming is off.
func openSink(ctx context.Context, cmd *cobra.Command) (telemetry.Sink, error) {
	enabled := settings.Influx.Enabled
	if cmd.Flags().Changed("influx") {
		enabled = influx
	}
	if !enabled {
		return nil, nil
	}
	is := settings.Influx
	return telemetry.OpenInflux(ctx, telemetry.InfluxConfig{
		URL:         is.URL,
		Token:       is.Token,
		Org:         is.Org,
		Bucket:      is.Bucket,
		Measurement: is.Measurement,
	}, backupPath, log)
}

func closeSink(sink telemetry.Sink) {
	if sink == nil {
		return
	}
	if err := sink.Close(); err != nil {
		log.Error().Err(err).Msg("closing telemetry sink")
	}
}

func addStandardMetrics(s *sim.Simulator, vc config.VehicleConfig) {
	for _, m := range metrics.Standard(vc.Mass, vc.Inertia) {
		s.AddMetric(m)
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, v, err := vehicle.NewSimulator(cfg, log)
	if err != nil {
		return err
	}
	addStandardMetrics(s, cfg.Vehicle)

	started := time.Now()
	runID := storage.RunID(cfg.Name, started)

	steps, err := telemetry.NewMetricsObserver(telemetry.Meter(), cfg.Name)
	if err != nil {
		return err
	}
	s.AddObserver(steps)

	sink, err := openSink(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeSink(sink)
	var rec *telemetry.Recorder
	if sink != nil {
		rec = telemetry.NewRecorder(sink, telemetry.RecorderOptions{
			Run:           runID,
			Scenario:      cfg.Name,
			Labels:        v.Labels(),
			CommandLabels: v.CommandLabels(),
			Every:         settings.Influx.Decimate,
			Start:         started,
		}, log)
		s.AddObserver(rec)
	}

	fmt.Printf("running %s...\n", cfg.Name)
	result, err := s.Run(ctx, cfg.SimConfig())
	if err != nil {
		return err
	}
	elapsed := time.Since(started)

	meta, err := saveRun(st, cfg, v.Labels(), v.CommandLabels(), started, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", meta.ID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	if rec != nil {
		fmt.Printf("telemetry frames: %d\n", rec.Written())
	}
	for _, e := range result.Errors {
		fmt.Printf("warning: %v\n", e)
	}
	fmt.Println("\nmetrics:")
	for _, name := range slices.Sorted(maps.Keys(result.Metrics)) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	return nil
}

// saveRun stores a finished run and adds it to the metric index when one
// is available.
func saveRun(st *storage.Store, cfg *config.Config, labels, cmdLabels []string, started time.Time, result *dynamo.Result) (*storage.RunMetadata, error) {
	meta, err := st.Save(storage.RunInfo{
		Scenario:      cfg.Name,
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		Labels:        labels,
		CommandLabels: cmdLabels,
		Started:       started,
	}, result)
	if err != nil {
		return nil, err
	}

	if ix := openIndex(); ix != nil {
		if err := ix.Add(meta); err != nil {
			log.Warn().Err(err).Str("run", meta.ID).Msg("run not indexed")
		}
		ix.Close()
	}
	return meta, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	b, err := automation.LoadBatch(args[0])
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	started := time.Now()
	outcomes, err := automation.Run(ctx, b, parallel, log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSCENARIO\tSTEPS\tERRORS")
	for i, o := range outcomes {
		// distinct start times keep run ids unique within a batch
		meta, err := saveRun(st, o.Config, o.Labels, o.CommandLabels, started.Add(time.Duration(i)*time.Microsecond), o.Result)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", meta.ID, o.Config.Name, o.Result.StepsTaken, len(o.Result.Errors))
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sink, err := openSink(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeSink(sink)

	// the TUI owns the terminal, so only errors are logged
	quiet := log.Level(max(log.GetLevel(), zerolog.ErrorLevel))

	model, err := viz.NewModel(cfg, quiet)
	if err != nil {
		return err
	}
	if sink != nil {
		v := model.Vehicle()
		model.AddObserver(telemetry.NewRecorder(sink, telemetry.RecorderOptions{
			Run:           storage.RunID(cfg.Name+"-live", time.Now()),
			Scenario:      cfg.Name,
			Labels:        v.Labels(),
			CommandLabels: v.CommandLabels(),
			Every:         settings.Influx.Decimate,
		}, quiet))
	}
	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(viz.Model); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}

func listParams(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	p := cfg.GetParams()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAM\tVALUE")
	for _, name := range slices.Sorted(maps.Keys(p)) {
		fmt.Fprintf(w, "%s\t%g\n", name, p[name])
	}
	return w.Flush()
}

func parseParam(s string) (optim.Param, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return optim.Param{}, fmt.Errorf("bad --param %q, want name=v1,v2,...", s)
	}
	p := optim.Param{Name: strings.TrimSpace(name)}
	for _, f := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return optim.Param{}, fmt.Errorf("bad value in --param %q: %w", s, err)
		}
		p.Values = append(p.Values, v)
	}
	return p, nil
}

func parseObjective(s string) (optim.Objective, error) {
	kind, arg, ok := strings.Cut(s, ":")
	if !ok || arg == "" {
		return nil, fmt.Errorf("bad --objective %q, want step:<column> or metric:<name>", s)
	}
	var obj optim.Objective
	switch kind {
	case "step":
		obj = optim.StepObjective(arg, target, band)
	case "metric":
		obj = optim.MetricObjective(arg)
	default:
		return nil, fmt.Errorf("unknown objective kind %q", kind)
	}
	if maximize {
		inner := obj
		obj = func(res *dynamo.Result, plant dynamo.Plant) (float64, error) {
			v, err := inner(res, plant)
			return -v, err
		}
	}
	return obj, nil
}

func tuneScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	if len(params) == 0 {
		return fmt.Errorf("at least one --param is required")
	}
	grid := make([]optim.Param, 0, len(params))
	for _, s := range params {
		p, err := parseParam(s)
		if err != nil {
			return err
		}
		grid = append(grid, p)
	}
	obj, err := parseObjective(objective)
	if err != nil {
		return err
	}

	base := optim.ScenarioBuilder(cfg, log.Level(max(log.GetLevel(), zerolog.WarnLevel)))
	build := func(p map[string]float64) (*sim.Simulator, error) {
		s, err := base(p)
		if err != nil {
			return nil, err
		}
		vc := cfg.Vehicle
		if m, ok := p["mass"]; ok {
			vc.Mass = m
		}
		addStandardMetrics(s, vc)
		return s, nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g := optim.NewGridSearch(grid)
	g.SetParallelism(parallel)
	g.SetLogger(log)

	start := time.Now()
	out, searchErr := g.Search(ctx, cfg.SimConfig(), build, obj)
	if out == nil {
		return searchErr
	}

	trials := slices.Clone(out.Trials)
	sort.SliceStable(trials, func(i, j int) bool { return trials[i].Score < trials[j].Score })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := make([]string, 0, len(grid)+1)
	for _, p := range grid {
		header = append(header, strings.ToUpper(p.Name))
	}
	fmt.Fprintln(w, strings.Join(append(header, "SCORE"), "\t"))
	for _, tr := range trials {
		row := make([]string, 0, len(grid)+1)
		for _, p := range grid {
			row = append(row, fmt.Sprintf("%g", tr.Params[p.Name]))
		}
		score := fmt.Sprintf("%.4f", displayScore(tr.Score))
		if tr.Err != nil {
			score = "error: " + tr.Err.Error()
		}
		fmt.Fprintln(w, strings.Join(append(row, score), "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if searchErr != nil {
		return searchErr
	}

	fmt.Printf("\n%d combinations in %v\n", len(out.Trials), time.Since(start).Round(time.Millisecond))
	fmt.Printf("best: %v score %.4f\n", out.Best.Params, displayScore(out.Best.Score))
	return nil
}

func displayScore(v float64) float64 {
	if maximize {
		return -v
	}
	return v
}
