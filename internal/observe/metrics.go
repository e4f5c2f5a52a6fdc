// Package observe provides OpenTelemetry metrics for parley and the HTTP
// middleware that records request latency.
//
// Instruments are created from a [metric.MeterProvider] passed to
// [NewMetrics], so tests can inspect them through a ManualReader. [InitProvider]
// installs an SDK provider backed by the Prometheus exporter for /metrics.
package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/MikeSquared-Agency/parley"

// Metrics holds the metric instruments. All fields are safe for concurrent use.
type Metrics struct {
	// LinesAnalyzed counts analyzed lines. Attribute: tone.
	LinesAnalyzed metric.Int64Counter

	// ClichesDetected counts matched clichés. Attribute: phrase.
	ClichesDetected metric.Int64Counter

	// AnalysisDuration tracks time spent analyzing one line.
	AnalysisDuration metric.Float64Histogram

	// ActiveSessions tracks open sessions.
	ActiveSessions metric.Int64UpDownCounter

	// BusMessages counts NATS messages handled. Attributes: subject, status.
	BusMessages metric.Int64Counter

	// ReportsArchived counts reports written to the archive.
	ReportsArchived metric.Int64Counter

	// HTTPRequestDuration tracks HTTP latency. Attributes: method, route, status.
	HTTPRequestDuration metric.Float64Histogram
}

var analysisBuckets = []float64{
	0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1,
}

// NewMetrics creates every instrument on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.LinesAnalyzed, err = m.Int64Counter("parley.lines.analyzed",
		metric.WithDescription("Dialogue lines analyzed by emotional tone."),
	); err != nil {
		return nil, err
	}
	if met.ClichesDetected, err = m.Int64Counter("parley.cliches.detected",
		metric.WithDescription("Clichés detected by phrase."),
	); err != nil {
		return nil, err
	}
	if met.AnalysisDuration, err = m.Float64Histogram("parley.analysis.duration",
		metric.WithDescription("Latency of analyzing one dialogue line."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(analysisBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("parley.active_sessions",
		metric.WithDescription("Number of open analysis sessions."),
	); err != nil {
		return nil, err
	}
	if met.BusMessages, err = m.Int64Counter("parley.bus.messages",
		metric.WithDescription("NATS messages handled by subject and status."),
	); err != nil {
		return nil, err
	}
	if met.ReportsArchived, err = m.Int64Counter("parley.reports.archived",
		metric.WithDescription("Session reports written to the archive."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("parley.http.request.duration",
		metric.WithDescription("HTTP request latency by method, route and status."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordAnalysis records one analyzed line.
func (m *Metrics) RecordAnalysis(ctx context.Context, tone string, cliches []string, seconds float64) {
	m.LinesAnalyzed.Add(ctx, 1, metric.WithAttributes(attribute.String("tone", tone)))
	for _, c := range cliches {
		m.ClichesDetected.Add(ctx, 1, metric.WithAttributes(attribute.String("phrase", c)))
	}
	m.AnalysisDuration.Record(ctx, seconds)
}

// RecordBusMessage records a handled NATS message.
func (m *Metrics) RecordBusMessage(ctx context.Context, subject, status string) {
	m.BusMessages.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("subject", subject),
			attribute.String("status", status),
		),
	)
}
