package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/san-kum/hydrosim/internal/dynamo"
)

const instrumentationName = "github.com/san-kum/hydrosim/internal/telemetry"

// Meter returns the global meter for this package.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// MetricsObserver reports step counts, hull speed and submerged volume as
// OpenTelemetry instruments.
type MetricsObserver struct {
	steps  metric.Int64Counter
	speed  metric.Float64Histogram
	volume metric.Float64Histogram
	attrs  metric.MeasurementOption
}

func NewMetricsObserver(m metric.Meter, scenario string) (*MetricsObserver, error) {
	o := &MetricsObserver{
		attrs: metric.WithAttributes(attribute.String("scenario", scenario)),
	}
	var err error

	o.steps, err = m.Int64Counter(
		"hydrosim.steps",
		metric.WithDescription("Simulation steps taken"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating steps counter: %w", err)
	}

	o.speed, err = m.Float64Histogram(
		"hydrosim.hull.speed",
		metric.WithDescription("Hull speed per step"),
		metric.WithUnit("m/s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating speed histogram: %w", err)
	}

	o.volume, err = m.Float64Histogram(
		"hydrosim.hull.submerged_volume",
		metric.WithDescription("Submerged hull volume per step"),
		metric.WithUnit("m3"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating volume histogram: %w", err)
	}

	return o, nil
}

func (o *MetricsObserver) OnStep(x dynamo.State, u dynamo.Control, t float64) {
	ctx := context.Background()
	o.steps.Add(ctx, 1, o.attrs)
	if len(x) < dynamo.SampleDim {
		return
	}
	o.speed.Record(ctx, x.Speed(), o.attrs)
	o.volume.Record(ctx, x[dynamo.Volume], o.attrs)
}
