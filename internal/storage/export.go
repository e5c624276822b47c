package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type ExportData struct {
	ID            string             `json:"id"`
	Scenario      string             `json:"scenario"`
	Dt            float64            `json:"dt"`
	Duration      float64            `json:"duration"`
	Steps         int                `json:"steps"`
	Labels        []string           `json:"labels"`
	CommandLabels []string           `json:"command_labels"`
	Times         []float64          `json:"times"`
	States        [][]float64        `json:"states"`
	Metrics       map[string]float64 `json:"metrics"`
}

// Export gathers a stored run into one document. States rows carry the
// command columns after the sampled ones, as in states.csv.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	table, err := s.LoadStates(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{
		ID:            meta.ID,
		Scenario:      meta.Scenario,
		Dt:            meta.Dt,
		Duration:      meta.Duration,
		Steps:         meta.Steps,
		Labels:        table.Columns,
		CommandLabels: meta.CommandLabels,
		Times:         table.Times,
		States:        table.Rows,
		Metrics:       meta.Metrics,
	}, nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}

// CopyCSV streams a run's states.csv to w.
func (s *Store) CopyCSV(runID string, w io.Writer) error {
	f, err := os.Open(filepath.Join(s.Dir(runID), "states.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", runID, ErrRunNotFound)
		}
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
