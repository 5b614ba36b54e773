// Package observability sets up OpenTelemetry tracing and Prometheus-exported
// metrics and records the service's domain measurements.
package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
)

// Telemetry owns the tracer, the meter and every instrument the service records.
type Telemetry struct {
	Tracer trace.Tracer
	Meter  metric.Meter
	logger *zap.Logger

	shutdown []func(context.Context) error

	RequestCounter      metric.Int64Counter
	RequestDuration     metric.Float64Histogram
	ErrorCounter        metric.Int64Counter
	UpstreamCounter     metric.Int64Counter
	UpstreamDuration    metric.Float64Histogram
	CacheHitCounter     metric.Int64Counter
	CacheMissCounter    metric.Int64Counter
	RateLimitedRequests metric.Int64Counter
}

// Config holds the resource identity and exporter settings.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	SampleRate     float64
}

// InitTelemetry installs global OTLP trace and Prometheus metric providers.
func InitTelemetry(ctx context.Context, cfg Config, logger *zap.Logger) (*Telemetry, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			attribute.String("environment", cfg.Environment),
		),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tracerProvider, err := initTracerProvider(ctx, cfg, res)

	if err != nil {
		return nil, fmt.Errorf("failed to init tracer provider: %w", err)
	}

	meterProvider, err := initMeterProvider(res)

	if err != nil {
		_ = tracerProvider.Shutdown(ctx)

		return nil, fmt.Errorf("failed to init meter provider: %w", err)
	}

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t, err := New(tracerProvider, meterProvider, cfg.ServiceName, logger)

	if err != nil {
		return nil, err
	}

	t.shutdown = append(t.shutdown, tracerProvider.Shutdown, meterProvider.Shutdown)

	return t, nil
}

// New builds the instruments on the given providers without touching the
// global ones. Tests pass no-op providers.
func New(tp trace.TracerProvider, mp metric.MeterProvider, serviceName string, logger *zap.Logger) (*Telemetry, error) {
	meter := mp.Meter(serviceName)
	t := &Telemetry{
		Tracer: tp.Tracer(serviceName),
		Meter:  meter,
		logger: logger,
	}

	var err error

	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&t.RequestCounter, "http_requests_total", "Total number of HTTP requests"},
		{&t.ErrorCounter, "errors_total", "Total number of error responses"},
		{&t.UpstreamCounter, "upstream_requests_total", "Total number of provider calls by outcome"},
		{&t.CacheHitCounter, "cache_hits_total", "Total number of result cache hits"},
		{&t.CacheMissCounter, "cache_misses_total", "Total number of result cache misses"},
		{&t.RateLimitedRequests, "rate_limited_requests_total", "Total number of requests rejected by the rate limiter"},
	}

	for _, c := range counters {
		if *c.target, err = meter.Int64Counter(c.name, metric.WithDescription(c.description), metric.WithUnit("1")); err != nil {
			return nil, fmt.Errorf("create counter %s: %w", c.name, err)
		}
	}

	if t.RequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if t.UpstreamDuration, err = meter.Float64Histogram(
		"upstream_request_duration_seconds",
		metric.WithDescription("Provider call duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return t, nil
}

func initTracerProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptrace.New(
		ctx,
		otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))),
	), nil
}

func initMeterProvider(res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	exporter, err := prometheus.New()

	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	), nil
}

// RecordRequest counts an HTTP request under its route template.
func (t *Telemetry) RecordRequest(ctx context.Context, method, route string, statusCode int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status_code", statusCode),
	)

	t.RequestCounter.Add(ctx, 1, attrs)
	t.RequestDuration.Record(ctx, duration.Seconds(), attrs)

	if statusCode >= 400 {
		t.ErrorCounter.Add(ctx, 1, attrs)
	}
}

// RecordUpstreamCall counts a provider call; code is zero on success.
func (t *Telemetry) RecordUpstreamCall(ctx context.Context, provider string, code domain.ErrorCode, duration time.Duration) {
	outcome := "success"

	if code != 0 {
		outcome = code.String()
	}

	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	)

	t.UpstreamCounter.Add(ctx, 1, attrs)
	t.UpstreamDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordCacheHit counts a hit in the given key namespace ("weather", "geocode", "places").
func (t *Telemetry) RecordCacheHit(ctx context.Context, namespace string) {
	t.CacheHitCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("namespace", namespace)))
}

func (t *Telemetry) RecordCacheMiss(ctx context.Context, namespace string) {
	t.CacheMissCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("namespace", namespace)))
}

func (t *Telemetry) RecordRateLimited(ctx context.Context, route string) {
	t.RateLimitedRequests.Add(ctx, 1, metric.WithAttributes(attribute.String("route", route)))
}

// Shutdown flushes and stops the providers installed by InitTelemetry.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	for _, fn := range t.shutdown {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
