// Package observe provides OpenTelemetry metrics and tracing for engine
// operations.
//
// A Prometheus exporter bridge is installed by [InitProvider]. Tests should
// build [Metrics] with [NewMetrics] over their own meter provider.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope for every world engine metric
const meterName = "github.com/KirkDiggler/rpg-world"

// Metric names
const (
	MetricOperations        = "rpg_world.engine.operations"
	MetricOperationErrors   = "rpg_world.engine.operation_errors"
	MetricOperationDuration = "rpg_world.engine.operation.duration"
	MetricEventsLogged      = "rpg_world.eventlog.events"
)

// Metrics holds the instruments recorded by the engine
type Metrics struct {
	// Operations counts facade calls. Attributes: operation, status.
	Operations metric.Int64Counter

	// OperationErrors counts failed calls. Attributes: operation, code.
	OperationErrors metric.Int64Counter

	// OperationDuration tracks facade call latency. Attributes: operation.
	OperationDuration metric.Float64Histogram

	// EventsLogged counts committed game events. Attributes: event_type.
	EventsLogged metric.Int64Counter
}

// latencyBuckets are tuned for local store round trips (seconds)
var latencyBuckets = []float64{
	0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1,
}

// NewMetrics creates every instrument on the given provider
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Operations, err = m.Int64Counter(MetricOperations,
		metric.WithDescription("Number of engine operations."),
	); err != nil {
		return nil, err
	}
	if met.OperationErrors, err = m.Int64Counter(MetricOperationErrors,
		metric.WithDescription("Number of engine operations that returned an error."),
	); err != nil {
		return nil, err
	}
	if met.OperationDuration, err = m.Float64Histogram(MetricOperationDuration,
		metric.WithDescription("Latency of engine operations."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.EventsLogged, err = m.Int64Counter(MetricEventsLogged,
		metric.WithDescription("Number of game events committed to the event log."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordOperation records one finished operation. code is empty on success.
func (m *Metrics) RecordOperation(ctx context.Context, op string, d time.Duration, code string) {
	if m == nil {
		return
	}
	status := "ok"
	if code != "" {
		status = "error"
		m.OperationErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("code", code),
		))
	}
	m.Operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("status", status),
	))
	m.OperationDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("operation", op),
	))
}

// RecordEvent counts one committed game event
func (m *Metrics) RecordEvent(ctx context.Context, eventType string) {
	if m == nil {
		return
	}
	m.EventsLogged.Add(ctx, 1, metric.WithAttributes(attribute.String("event_type", eventType)))
}
