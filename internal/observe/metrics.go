// Package observe holds the OpenTelemetry metrics of the game service and
// the provider that exposes them to Prometheus.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/jwebster45206/masquerade"

// Metrics holds the instruments recorded by the game loop and HTTP layer.
// All fields are safe for concurrent use.
type Metrics struct {
	// TickDuration tracks the wall time of one game loop step.
	TickDuration metric.Float64Histogram

	// EventsApplied counts player events. Attributes: type, status.
	EventsApplied metric.Int64Counter

	// EventsPublished counts broadcast session events. Attribute: type.
	EventsPublished metric.Int64Counter

	// Resolutions counts elevator rides. Attribute: outcome (success, failure).
	Resolutions metric.Int64Counter

	// SnapshotsSaved counts snapshot writes. Attribute: status.
	SnapshotsSaved metric.Int64Counter

	// HTTPRequestDuration tracks request latency. Attributes: method, status.
	HTTPRequestDuration metric.Float64Histogram
}

var tickBuckets = []float64{
	0.0005, 0.001, 0.0025, 0.005, 0.01, 0.02, 0.05, 0.1, 0.25,
}

// NewMetrics creates every instrument on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.TickDuration, err = m.Float64Histogram("masquerade.loop.tick.duration",
		metric.WithDescription("Wall time of one game loop step over all sessions."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(tickBuckets...),
	); err != nil {
		return nil, err
	}
	if met.EventsApplied, err = m.Int64Counter("masquerade.events.applied",
		metric.WithDescription("Player events applied to sessions by type and status."),
	); err != nil {
		return nil, err
	}
	if met.EventsPublished, err = m.Int64Counter("masquerade.events.published",
		metric.WithDescription("Session events broadcast to subscribers by type."),
	); err != nil {
		return nil, err
	}
	if met.Resolutions, err = m.Int64Counter("masquerade.elevator.resolutions",
		metric.WithDescription("Elevator rides by outcome."),
	); err != nil {
		return nil, err
	}
	if met.SnapshotsSaved, err = m.Int64Counter("masquerade.snapshots.saved",
		metric.WithDescription("Session snapshot writes by status."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("masquerade.http.request.duration",
		metric.WithDescription("HTTP request latency by method and status."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// Nop returns metrics that record nothing.
func Nop() *Metrics {
	met, _ := NewMetrics(noop.NewMeterProvider())
	return met
}

// RegisterSessionGauge reports the live session count on every collection.
func RegisterSessionGauge(mp metric.MeterProvider, count func() int) (metric.Registration, error) {
	m := mp.Meter(meterName)
	gauge, err := m.Int64ObservableGauge("masquerade.sessions.active",
		metric.WithDescription("Number of live game sessions."),
	)
	if err != nil {
		return nil, err
	}
	return m.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(gauge, int64(count()))
		return nil
	}, gauge)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordTick records the duration of one loop step.
func (m *Metrics) RecordTick(ctx context.Context, d time.Duration) {
	m.TickDuration.Record(ctx, d.Seconds())
}

// RecordEvent counts one applied player event.
func (m *Metrics) RecordEvent(ctx context.Context, eventType string, err error) {
	m.EventsApplied.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", eventType),
		attribute.String("status", status(err)),
	))
}

// RecordPublished counts one broadcast session event.
func (m *Metrics) RecordPublished(ctx context.Context, eventType string) {
	m.EventsPublished.Add(ctx, 1, metric.WithAttributes(attribute.String("type", eventType)))
}

// RecordResolution counts one elevator ride.
func (m *Metrics) RecordResolution(ctx context.Context, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.Resolutions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordSnapshot counts one snapshot write.
func (m *Metrics) RecordSnapshot(ctx context.Context, err error) {
	m.SnapshotsSaved.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status(err))))
}
