package server

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// metrics holds the service's OpenTelemetry instruments. They report to the
// global MeterProvider, which is a no-op unless the process installs an SDK.
type metrics struct {
	requests       metric.Int64Counter
	duration       metric.Float64Histogram
	habitOps       metric.Int64Counter
	pdfExtractions metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	requests, err := meter.Int64Counter("webtools.http.requests",
		metric.WithDescription("HTTP requests served"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("webtools.http.duration",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	habitOps, err := meter.Int64Counter("webtools.habit.operations",
		metric.WithDescription("Habit list mutations by operation"),
		metric.WithUnit("{operation}"))
	if err != nil {
		return nil, err
	}

	pdfExtractions, err := meter.Int64Counter("webtools.pdf.extractions",
		metric.WithDescription("PDF uploads by outcome"),
		metric.WithUnit("{upload}"))
	if err != nil {
		return nil, err
	}

	return &metrics{
		requests:       requests,
		duration:       duration,
		habitOps:       habitOps,
		pdfExtractions: pdfExtractions,
	}, nil
}

func (m *metrics) recordRequest(ctx context.Context, route, method string, status int, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("http.route", route),
		attribute.String("http.request.method", method),
		attribute.String("http.response.status_code", strconv.Itoa(status)),
	)
	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), attrs)
}

func (m *metrics) recordHabitOp(ctx context.Context, op string) {
	m.habitOps.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
}

// PDF extraction outcomes.
const (
	pdfOutcomeOK      = "ok"
	pdfOutcomeSkipped = "skipped"
	pdfOutcomeFailed  = "failed"
)

func (m *metrics) recordPDF(ctx context.Context, outcome string) {
	m.pdfExtractions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
