// Package observe holds the OpenTelemetry instruments recorded by the
// conversion pipeline.
//
// Production code uses [Default], which binds to the global meter provider
// and is a no-op until one is installed. Tests should call [NewMetrics] with
// their own provider so runs do not leak into each other.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/KirkDiggler/rpg-statblocks"

// Metric names.
const (
	RecordsName        = "statblocks.records"
	RecordDurationName = "statblocks.record.duration"
	RunsName           = "statblocks.runs"
)

// Record outcomes.
const (
	OutcomeWritten    = "written"
	OutcomeFailed     = "failed"
	OutcomeSkipped    = "skipped"
	OutcomeSuperseded = "superseded"
	OutcomeCanceled   = "canceled"
)

// Run statuses.
const (
	RunSucceeded = "succeeded"
	RunPartial   = "partial"
	RunFailed    = "failed"
	RunCanceled  = "canceled"
)

// Metrics holds the pipeline instruments. All fields are safe for
// concurrent use.
type Metrics struct {
	// Records counts finished records. Attributes: category, outcome.
	Records metric.Int64Counter

	// RecordDuration tracks the time one record spends in the pipeline.
	// Attributes: category.
	RecordDuration metric.Float64Histogram

	// Runs counts finished category runs. Attributes: category, status.
	Runs metric.Int64Counter
}

// recordBuckets are in seconds. Records are CPU bound and mostly finish in
// well under a millisecond.
var recordBuckets = []float64{
	0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5,
}

// NewMetrics creates the instruments on the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Records, err = m.Int64Counter(RecordsName,
		metric.WithDescription("Records finished by category and outcome."),
	); err != nil {
		return nil, err
	}
	if met.RecordDuration, err = m.Float64Histogram(RecordDurationName,
		metric.WithDescription("Time spent converting one record."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(recordBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Runs, err = m.Int64Counter(RunsName,
		metric.WithDescription("Category runs by status."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns instruments bound to the global meter provider. It panics
// if they cannot be created, which only happens with a broken provider.
func Default() *Metrics {
	defaultOnce.Do(func() {
		m, err := NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: creating default metrics: " + err.Error())
		}
		defaultMetrics = m
	})
	return defaultMetrics
}

// RecordFinished counts one record and, unless it never ran, its duration.
func (m *Metrics) RecordFinished(ctx context.Context, category, outcome string, elapsed time.Duration) {
	m.Records.Add(ctx, 1, metric.WithAttributes(
		attribute.String("category", category),
		attribute.String("outcome", outcome),
	))
	if outcome == OutcomeCanceled {
		return
	}
	m.RecordDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("category", category),
	))
}

// RunFinished counts one category run.
func (m *Metrics) RunFinished(ctx context.Context, category, status string) {
	m.Runs.Add(ctx, 1, metric.WithAttributes(
		attribute.String("category", category),
		attribute.String("status", status),
	))
}
