package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/san-kum/hydrosim/internal/config"
	"github.com/san-kum/hydrosim/internal/dynamo"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadBatch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "batch.yaml", `
name: sweep
runs:
  - preset: surge
    duration: 0.5
  - preset: pan
    name: pan-fast
    params:
      camera.kp: 8
`)

	b, err := LoadBatch(path)
	if err != nil {
		t.Fatal(err)
	}
	if b.Name != "sweep" || len(b.Runs) != 2 {
		t.Fatalf("unexpected batch %+v", b)
	}

	cfg, err := b.Scenario(1)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "pan-fast" {
		t.Errorf("expected renamed scenario, got %s", cfg.Name)
	}
	if got := cfg.GetParams()["camera.kp"]; got != 8 {
		t.Errorf("camera.kp = %v, want 8", got)
	}
}

func TestLoadBatchEmpty(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.yaml", "name: nothing\n")
	if _, err := LoadBatch(path); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestScenarioFromFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.GetPreset("drift")
	cfg.Duration = 0.25
	if err := config.Save(filepath.Join(dir, "drift.yaml"), cfg); err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, dir, "batch.yaml", "runs:\n  - file: drift.yaml\n")

	b, err := LoadBatch(path)
	if err != nil {
		t.Fatal(err)
	}
	got, err := b.Scenario(0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Duration != 0.25 {
		t.Errorf("duration = %v, want 0.25", got.Duration)
	}
}

func TestScenarioErrors(t *testing.T) {
	b := &Batch{Runs: []BatchRun{
		{Preset: "nope"},
		{Preset: "drift", File: "x.yaml"},
		{Params: map[string]float64{"bogus": 1}},
	}}
	if _, err := b.Scenario(0); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("unknown preset: %v", err)
	}
	if _, err := b.Scenario(1); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("preset and file: %v", err)
	}
	if _, err := b.Scenario(2); !errors.Is(err, dynamo.ErrUnknownTarget) {
		t.Errorf("unknown param: %v", err)
	}
}

func TestRun(t *testing.T) {
	b := &Batch{Runs: []BatchRun{
		{Preset: "surge", Duration: 0.5},
		{Preset: "sink", Duration: 0.25, Dt: 0.01},
	}}

	outcomes, err := Run(context.Background(), b, 2, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	if outcomes[0].Config.Name != "surge" || outcomes[1].Config.Name != "sink" {
		t.Errorf("outcomes out of order: %s, %s", outcomes[0].Config.Name, outcomes[1].Config.Name)
	}
	if n := outcomes[1].Result.StepsTaken; n != 25 {
		t.Errorf("sink steps = %d, want 25", n)
	}
	for _, o := range outcomes {
		if len(o.Result.States) == 0 || len(o.Result.States[0]) != len(o.Labels) {
			t.Errorf("%s: state width does not match labels", o.Config.Name)
		}
		if len(o.Result.Metrics) == 0 {
			t.Errorf("%s: no metrics", o.Config.Name)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := &Batch{Runs: []BatchRun{{Preset: "drift", Duration: 0.5}}}
	if _, err := Run(ctx, b, 1, zerolog.Nop()); err == nil {
		t.Error("expected error from cancelled context")
	}
}
