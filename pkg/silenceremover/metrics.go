package silenceremover

import (
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/kpcee/deadbeef-silence-remover/pkg/silenceremover"

// loudnessBuckets are on the 0..100 loudness scale.
var loudnessBuckets = []float64{
	0, 10, 20, 30, 35, 40, 50, 60, 70, 80, 90, 100,
}

type Metrics struct {
	// Ticks counts buffer ticks a loudness value was computed for.
	Ticks metric.Int64Counter

	// Actions counts issued host commands. Attribute:
	//   attribute.String("action", ...)
	Actions metric.Int64Counter

	// Loudness records finite loudness values.
	Loudness metric.Float64Histogram
}

func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Ticks, err = m.Int64Counter("silenceremover.ticks",
		metric.WithDescription("Buffer ticks with a loudness measurement."),
	); err != nil {
		return nil, fmt.Errorf("unable to create the ticks counter: %w", err)
	}
	if met.Actions, err = m.Int64Counter("silenceremover.actions",
		metric.WithDescription("Seek and skip commands sent to the host."),
	); err != nil {
		return nil, fmt.Errorf("unable to create the actions counter: %w", err)
	}
	if met.Loudness, err = m.Float64Histogram("silenceremover.loudness",
		metric.WithDescription("Loudness of the analyzed buffers."),
		metric.WithUnit("dB"),
		metric.WithExplicitBucketBoundaries(loudnessBuckets...),
	); err != nil {
		return nil, fmt.Errorf("unable to create the loudness histogram: %w", err)
	}
	return met, nil
}

func (m *Metrics) recordTick(ctx context.Context, loudness float64, action Action) {
	m.Ticks.Add(ctx, 1)
	if !math.IsInf(loudness, 0) && !math.IsNaN(loudness) {
		m.Loudness.Record(ctx, loudness)
	}
	if action != ActionNone {
		m.Actions.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action.String())))
	}
}
