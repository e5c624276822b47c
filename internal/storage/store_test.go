package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/hydrosim/internal/dynamo"
)

func testResult() *dynamo.Result {
	return &dynamo.Result{
		States: []dynamo.State{
			{1.0, 0.0},
			{0.9, -0.1},
		},
		Controls: []dynamo.Control{
			{0.5},
		},
		Times:      []float64{0.0, 0.01},
		StepsTaken: 1,
		Metrics: map[string]float64{
			"max_speed": 1.5,
		},
	}
}

func testInfo() RunInfo {
	return RunInfo{
		Scenario:      "test",
		Dt:            0.01,
		Duration:      1.0,
		Labels:        []string{"y", "vy"},
		CommandLabels: []string{"fl"},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta, err := st.Save(testInfo(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if meta.ID == "" {
		t.Error("expected non-empty run id")
	}

	loaded, err := st.Load(meta.ID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Scenario != "test" {
		t.Errorf("expected scenario 'test', got '%s'", loaded.Scenario)
	}
	if loaded.Steps != 1 {
		t.Errorf("expected 1 step, got %d", loaded.Steps)
	}
	if loaded.Metrics["max_speed"] != 1.5 {
		t.Errorf("expected max_speed 1.5, got %f", loaded.Metrics["max_speed"])
	}

	table, err := st.LoadStates(meta.ID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(table.Rows))
	}
	if len(table.Times) != 2 {
		t.Errorf("expected 2 times, got %d", len(table.Times))
	}
	if got := strings.Join(table.Columns, ","); got != "y,vy,cmd.fl" {
		t.Errorf("unexpected columns %s", got)
	}
	if table.Column("vy") != 1 || table.Column("nope") != -1 {
		t.Error("column lookup failed")
	}
	// last row repeats the last command
	if table.Rows[1][2] != 0.5 {
		t.Errorf("expected repeated command 0.5, got %f", table.Rows[1][2])
	}
}

func TestStoreErrorsRecorded(t *testing.T) {
	st := New(t.TempDir())
	res := testResult()
	res.Errors = []error{dynamo.SimError{Step: 3, Message: "boom"}}

	meta, err := st.Save(testInfo(), res)
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := st.Load(meta.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Errors) != 1 || !strings.Contains(loaded.Errors[0], "boom") {
		t.Errorf("expected recorded error, got %v", loaded.Errors)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save(testInfo(), testResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	meta, err := st.Save(testInfo(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, meta.ID)
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}
	if _, err := os.Stat(filepath.Join(runDir, "states.csv")); os.IsNotExist(err) {
		t.Error("states.csv not created")
	}
}

func TestStoreNotFound(t *testing.T) {
	st := New(t.TempDir())

	if _, err := st.Load("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadStates("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if err := st.Delete("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestStoreDelete(t *testing.T) {
	st := New(t.TempDir())
	meta, err := st.Save(testInfo(), testResult())
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Delete(meta.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(st.Dir(meta.ID)); !os.IsNotExist(err) {
		t.Error("run directory still present")
	}
}

func TestExport(t *testing.T) {
	st := New(t.TempDir())
	meta, err := st.Save(testInfo(), testResult())
	if err != nil {
		t.Fatal(err)
	}

	data, err := st.Export(meta.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(data.States) != 2 || data.Scenario != "test" {
		t.Errorf("unexpected export %+v", data)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, data); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"scenario": "test"`) {
		t.Errorf("unexpected json %s", buf.String())
	}

	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSON(path, data); err != nil {
		t.Fatal(err)
	}

	buf.Reset()
	if err := st.CopyCSV(meta.ID, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "time,y,vy,cmd.fl") {
		t.Errorf("unexpected csv %q", buf.String())
	}
}

func TestStoreSaveUsesStartTime(t *testing.T) {
	st := New(t.TempDir())
	info := testInfo()
	info.Started = time.Date(2024, 3, 1, 12, 30, 45, 123456000, time.UTC)

	meta, err := st.Save(info, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	want := RunID(info.Scenario, info.Started)
	if meta.ID != want {
		t.Errorf("expected id %s, got %s", want, meta.ID)
	}
	if !strings.HasSuffix(meta.ID, "_20240301T123045.123456") {
		t.Errorf("unexpected id format %s", meta.ID)
	}
}
