// Package storage keeps finished runs on disk, one directory per run
// holding metadata.json and states.csv, with an optional SQLite index for
// querying runs by metric.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/hydrosim/internal/dynamo"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Dir is the directory holding a run's files.
func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Scenario      string             `json:"scenario"`
	Timestamp     time.Time          `json:"timestamp"`
	Dt            float64            `json:"dt"`
	Duration      float64            `json:"duration"`
	Steps         int                `json:"steps"`
	Labels        []string           `json:"labels"`
	CommandLabels []string           `json:"command_labels"`
	Metrics       map[string]float64 `json:"metrics"`
	Errors        []string           `json:"errors,omitempty"`
}

// RunInfo describes a run being saved.
type RunInfo struct {
	Scenario      string
	Dt            float64
	Duration      float64
	Labels        []string
	CommandLabels []string
	// Started defaults to the time of saving.
	Started time.Time
}

// RunID names a run by scenario and start time.
func RunID(scenario string, started time.Time) string {
	return fmt.Sprintf("%s_%s", scenario, started.UTC().Format("20060102T150405.000000"))
}

func (s *Store) Save(info RunInfo, result *dynamo.Result) (*RunMetadata, error) {
	now := info.Started
	if now.IsZero() {
		now = time.Now()
	}
	runID := RunID(info.Scenario, now)
	runDir := s.Dir(runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, err
	}

	meta := &RunMetadata{
		ID:            runID,
		Scenario:      info.Scenario,
		Timestamp:     now,
		Dt:            info.Dt,
		Duration:      info.Duration,
		Steps:         result.StepsTaken,
		Labels:        info.Labels,
		CommandLabels: info.CommandLabels,
		Metrics:       result.Metrics,
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return nil, err
	}
	if err := writeStates(filepath.Join(runDir, "states.csv"), meta, result); err != nil {
		return nil, err
	}
	return meta, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStates(path string, meta *RunMetadata, result *dynamo.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if len(result.States) == 0 {
		return nil
	}

	header := []string{"time"}
	for i := range result.States[0] {
		header = append(header, label(meta.Labels, i, "x"))
	}

	numControls := 0
	if len(result.Controls) > 0 && len(result.Controls[0]) > 0 {
		numControls = len(result.Controls[0])
		for i := 0; i < numControls; i++ {
			header = append(header, "cmd."+label(meta.CommandLabels, i, "u"))
		}
	}

	if err := w.Write(header); err != nil {
		return err
	}

	for i := range result.States {
		row := []string{strconv.FormatFloat(result.Times[i], 'f', 6, 64)}

		for _, val := range result.States[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}

		// the last row has no command; repeat the previous one
		j := min(i, len(result.Controls)-1)
		if j >= 0 && len(result.Controls[j]) > 0 {
			for _, val := range result.Controls[j] {
				row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
			}
		} else {
			for k := 0; k < numControls; k++ {
				row = append(row, "0")
			}
		}

		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func label(labels []string, i int, prefix string) string {
	if i < len(labels) && labels[i] != "" {
		return labels[i]
	}
	return fmt.Sprintf("%s%d", prefix, i)
}

// List returns every readable run, newest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", runID, ErrRunNotFound)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// Table is a run's states.csv read back. Columns excludes time.
type Table struct {
	Columns []string
	Times   []float64
	Rows    [][]float64
}

// Column returns the index of a named column, or -1.
func (t *Table) Column(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func (s *Store) LoadStates(runID string) (*Table, error) {
	file, err := os.Open(filepath.Join(s.Dir(runID), "states.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", runID, ErrRunNotFound)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	table := &Table{}
	if len(records) == 0 {
		return table, nil
	}
	table.Columns = records[0][1:]
	table.Times = make([]float64, 0, len(records)-1)
	table.Rows = make([][]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}

		row := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				val = 0
			}
			row = append(row, val)
		}
		table.Times = append(table.Times, t)
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// Delete removes a run directory.
func (s *Store) Delete(runID string) error {
	dir := s.Dir(runID)
	if _, err := os.Stat(filepath.Join(dir, "metadata.json")); err != nil {
		return fmt.Errorf("%s: %w", runID, ErrRunNotFound)
	}
	return os.RemoveAll(dir)
}
