// Package automation runs batches of scenarios described in YAML.
package automation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/hydrosim/internal/config"
	"github.com/san-kum/hydrosim/internal/dynamo"
	"github.com/san-kum/hydrosim/internal/metrics"
	"github.com/san-kum/hydrosim/internal/sim"
	"github.com/san-kum/hydrosim/internal/vehicle"
)

// Batch is a list of independent runs.
type Batch struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Runs        []BatchRun `yaml:"runs"`

	dir string
}

// BatchRun selects a scenario by preset or file and adjusts it. Params use
// the names listed by Config.GetParams.
type BatchRun struct {
	Preset   string             `yaml:"preset,omitempty"`
	File     string             `yaml:"file,omitempty"`
	Name     string             `yaml:"name,omitempty"`
	Dt       float64            `yaml:"dt,omitempty"`
	Duration float64            `yaml:"duration,omitempty"`
	Params   map[string]float64 `yaml:"params,omitempty"`
}

// LoadBatch reads a batch file. Scenario files are resolved relative to it.
func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var b Batch
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	b.dir = filepath.Dir(path)
	if len(b.Runs) == 0 {
		return nil, fmt.Errorf("%s: batch has no runs: %w", path, dynamo.ErrInvalidConfig)
	}
	return &b, nil
}

// Scenario builds the validated scenario for one run.
func (b *Batch) Scenario(i int) (*config.Config, error) {
	r := b.Runs[i]
	var cfg *config.Config
	switch {
	case r.Preset != "" && r.File != "":
		return nil, fmt.Errorf("run %d: preset and file are exclusive: %w", i+1, dynamo.ErrInvalidConfig)
	case r.Preset != "":
		cfg = config.GetPreset(r.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("run %d: unknown preset %s: %w", i+1, r.Preset, dynamo.ErrInvalidConfig)
		}
	case r.File != "":
		path := r.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(b.dir, path)
		}
		c, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}
		cfg = c
	default:
		cfg = config.DefaultConfig()
	}

	if r.Name != "" {
		cfg.Name = r.Name
	}
	if r.Dt > 0 {
		cfg.Dt = r.Dt
	}
	if r.Duration > 0 {
		cfg.Duration = r.Duration
	}
	for k, v := range r.Params {
		if err := cfg.SetParam(k, v); err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("run %d: %w", i+1, err)
	}
	return cfg, nil
}

// Outcome is one finished run of a batch.
type Outcome struct {
	Config        *config.Config
	Result        *dynamo.Result
	Labels        []string
	CommandLabels []string
}

// Run simulates every run of the batch, up to parallelism at a time
// (GOMAXPROCS when parallelism < 1), with the standard metrics. Every
// scenario is built before any run starts, so a bad entry fails the batch
// early. The first failed run cancels the rest.
func Run(ctx context.Context, b *Batch, parallelism int, log zerolog.Logger) ([]Outcome, error) {
	if parallelism < 1 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	outcomes := make([]Outcome, len(b.Runs))
	sims := make([]*sim.Simulator, len(b.Runs))

	for i := range b.Runs {
		cfg, err := b.Scenario(i)
		if err != nil {
			return nil, err
		}
		s, v, err := vehicle.NewSimulator(cfg, log)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}
		for _, m := range metrics.Standard(cfg.Vehicle.Mass, cfg.Vehicle.Inertia) {
			s.AddMetric(m)
		}
		sims[i] = s
		outcomes[i] = Outcome{Config: cfg, Labels: v.Labels(), CommandLabels: v.CommandLabels()}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, s := range sims {
		g.Go(func() error {
			res, err := s.Run(ctx, outcomes[i].Config.SimConfig())
			if err != nil {
				return fmt.Errorf("%s: %w", outcomes[i].Config.Name, err)
			}
			outcomes[i].Result = res
			log.Info().
				Str("scenario", outcomes[i].Config.Name).
				Int("steps", res.StepsTaken).
				Msg("batch run finished")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
