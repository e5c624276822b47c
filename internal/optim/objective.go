package optim

import (
	"fmt"
	"math"
	"slices"

	"github.com/san-kum/hydrosim/internal/analysis"
	"github.com/san-kum/hydrosim/internal/dynamo"
)

type labeled interface {
	Labels() []string
}

// MetricObjective scores a run by one of its recorded metrics.
func MetricObjective(name string) Objective {
	return func(res *dynamo.Result, _ dynamo.Plant) (float64, error) {
		v, ok := res.Metrics[name]
		if !ok {
			return 0, fmt.Errorf("metric %s not recorded: %w", name, dynamo.ErrUnknownTarget)
		}
		return v, nil
	}
}

// StepObjective scores how a sample column answers a step to target:
// settling time plus overshoot plus final error. A response that never
// settles costs the whole run plus one second.
func StepObjective(label string, target, band float64) Objective {
	return func(res *dynamo.Result, plant dynamo.Plant) (float64, error) {
		idx := -1
		if l, ok := plant.(labeled); ok {
			idx = slices.Index(l.Labels(), label)
		}
		if idx < 0 {
			return 0, fmt.Errorf("column %s: %w", label, dynamo.ErrUnknownTarget)
		}
		if len(res.Times) == 0 {
			return 0, fmt.Errorf("empty run: %w", dynamo.ErrInvalidState)
		}

		m := analysis.StepResponse(res.Times, analysis.Column(res.States, idx), target, band)
		settle := m.SettlingTime
		if math.IsNaN(settle) {
			settle = res.Times[len(res.Times)-1] + 1
		}
		return settle + m.Overshoot + math.Abs(m.FinalError), nil
	}
}
