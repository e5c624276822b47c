package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/hydrosim/internal/analysis"
	"github.com/san-kum/hydrosim/internal/export"
	"github.com/san-kum/hydrosim/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return listIndexed(args[0])
	}

	st := storage.New(settings.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tDT\tSTEPS\tERRORS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%d\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Steps,
			len(run.Errors),
		)
	}
	return w.Flush()
}

func listIndexed(scenario string) error {
	ix := openIndex()
	if ix == nil {
		return errors.New("run index unavailable")
	}
	defer ix.Close()

	recs, err := ix.List(scenario, 0)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Printf("no runs of %s indexed\n", scenario)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSTEPS\tFAILED\tMETRICS")
	for _, rec := range recs {
		ms := make([]string, 0, len(rec.Metrics))
		for _, m := range rec.Metrics {
			ms = append(ms, fmt.Sprintf("%s=%.3g", m.Name, m.Value))
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%v\t%s\n",
			rec.RunID, rec.Started.Format("2006-01-02 15:04:05"), rec.Steps, rec.Failed, strings.Join(ms, " "))
	}
	return w.Flush()
}

func rankRuns(cmd *cobra.Command, args []string) error {
	ix := openIndex()
	if ix == nil {
		return errors.New("run index unavailable")
	}
	defer ix.Close()

	ranked, err := ix.Top(args[0], topN, !maximize)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tSCENARIO\t%s\n", strings.ToUpper(args[0]))
	for _, r := range ranked {
		fmt.Fprintf(w, "%s\t%s\t%.6f\n", r.RunID, r.Scenario, r.Value)
	}
	return w.Flush()
}

func deleteRun(cmd *cobra.Command, args []string) error {
	st := storage.New(settings.DataDir)
	if err := st.Delete(args[0]); err != nil {
		return err
	}
	if ix := openIndex(); ix != nil {
		defer ix.Close()
		if err := ix.Remove(args[0]); err != nil && !errors.Is(err, storage.ErrRunNotFound) {
			return err
		}
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}

func loadRun(runID string) (*storage.RunMetadata, *storage.Table, error) {
	st := storage.New(settings.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	table, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(table.Rows) == 0 {
		return nil, nil, fmt.Errorf("%s: no samples", runID)
	}
	return meta, table, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, table, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(table.Rows))

	for _, name := range columns {
		idx := table.Column(name)
		if idx < 0 {
			fmt.Printf("no column %q (have %s)\n\n", name, strings.Join(table.Columns, ", "))
			continue
		}
		graph := asciigraph.Plot(analysis.Column(table.Rows, idx),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

// velocityOf pairs a position column with its velocity column.
var velocityOf = map[string]string{"x": "vx", "y": "vy", "z": "vz"}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, table, err := loadRun(args[0])
	if err != nil {
		return err
	}
	idx := table.Column(column)
	if idx < 0 {
		return fmt.Errorf("no column %q (have %s)", column, strings.Join(table.Columns, ", "))
	}
	data := analysis.Column(table.Rows, idx)

	fmt.Printf("analysis of %s in %s\n\n", column, meta.ID)

	spec := analysis.PowerSpectrum(data, meta.Dt)
	if len(spec.Power) > 1 {
		// the interesting part of a vehicle response sits well below 5 Hz
		n := len(spec.Power)
		for n > 2 && spec.Freqs[n-1] > 5 {
			n--
		}
		graph := asciigraph.Plot(spec.Power[:n],
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("power spectrum of %s, 0 to %.2f Hz", column, spec.Freqs[n-1])),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	freq, power := analysis.DominantFrequency(data, meta.Dt)
	fmt.Printf("dominant frequency: %.4f Hz (%.4f rad/s)\n", freq, 2*math.Pi*freq)
	fmt.Printf("peak power: %.6f\n", power)
	if freq > 0 {
		fmt.Printf("period: %.4f s\n", 1/freq)
	}

	final := data[len(data)-1]
	sm := analysis.StepResponse(table.Times, data, final, band)
	fmt.Printf("\nresponse towards final value %.4f\n", final)
	fmt.Printf("  rise time:     %s\n", seconds(sm.RiseTime))
	fmt.Printf("  overshoot:     %.1f%%\n", 100*sm.Overshoot)
	fmt.Printf("  settling time: %s\n", seconds(sm.SettlingTime))

	if vel, ok := velocityOf[column]; ok {
		if vi := table.Column(vel); vi >= 0 {
			portrait := analysis.NewPhasePortrait(table.Rows, idx, vi)
			fmt.Printf("\nphase portrait %s / %s\n", column, vel)
			fmt.Println(portrait.Render(60, 20))
		}
	}
	return nil
}

func seconds(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f s", v)
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(settings.DataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	return storage.WriteJSON(os.Stdout, meta)
}

// output opens outputPath, or stdout when it is empty.
func output() (io.WriteCloser, error) {
	if outputPath == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outputPath)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportCSV(cmd *cobra.Command, args []string) error {
	w, err := output()
	if err != nil {
		return err
	}
	defer w.Close()
	return storage.New(settings.DataDir).CopyCSV(args[0], w)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	data, err := storage.New(settings.DataDir).Export(args[0])
	if err != nil {
		return err
	}
	if outputPath != "" {
		if err := storage.ExportJSON(outputPath, data); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", outputPath)
		return nil
	}
	return storage.WriteJSON(os.Stdout, data)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, table, err := loadRun(args[0])
	if err != nil {
		return err
	}
	opts := export.DefaultTrackOptions()
	opts.HeadingEvery = heading

	svg, err := export.TrackToSVG(table, opts)
	if err != nil {
		return err
	}
	path := outputPath
	if path == "" {
		path = args[0] + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
