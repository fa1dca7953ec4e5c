package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
)

type Metrics struct {
	Operations        metric.Int64Counter
	OperationDuration metric.Float64Histogram
	HTTPRequests      metric.Int64Counter
	HTTPDuration      metric.Float64Histogram
}

// Setup installs a Prometheus-backed meter provider and returns the handler
// that serves it. Each call uses its own registry.
func Setup(serviceName string) (*Metrics, http.Handler, error) {
	registry := prom.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	m, err := New(provider.Meter(serviceName))
	if err != nil {
		return nil, nil, err
	}

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m, handler, nil
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.Operations, err = meter.Int64Counter(
		"repository_operations_total",
		metric.WithDescription("Total number of repository operations"),
	)
	if err != nil {
		return nil, err
	}

	m.OperationDuration, err = meter.Float64Histogram(
		"repository_operation_duration_seconds",
		metric.WithDescription("Repository operation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.HTTPRequests, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	m.HTTPDuration, err = meter.Float64Histogram(
		"http_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordOperation(ctx context.Context, collection, operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}

	labels := metric.WithAttributes(
		attribute.String("collection", collection),
		attribute.String("operation", operation),
		attribute.String("outcome", Outcome(err)),
	)

	ctx = context.WithoutCancel(ctx)
	m.Operations.Add(ctx, 1, labels)
	m.OperationDuration.Record(ctx, duration.Seconds(), labels)
}

func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	labels := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)

	ctx = context.WithoutCancel(ctx)
	m.HTTPRequests.Add(ctx, 1, labels)
	m.HTTPDuration.Record(ctx, duration.Seconds(), labels)
}

func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}
