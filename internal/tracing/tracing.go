// Package tracing wires optional OpenTelemetry span emission around the
// parse -> enrich -> route -> sink-send path.
package tracing

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Config controls whether and how spans are exported.
type Config struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	Endpoint     string // OTLP/HTTP endpoint, passed to the exporter as-is
	SampleRate   float64
	BatchTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		ServiceName:  "wparse",
		Environment:  "production",
		Endpoint:     "http://localhost:4318/v1/traces",
		SampleRate:   1.0,
		BatchTimeout: 5 * time.Second,
	}
}

// Manager owns the tracer provider and exposes the tracer used by the
// engine's span helpers.
type Manager struct {
	config   Config
	provider *trace.TracerProvider
	tracer   oteltrace.Tracer
}

// New builds a Manager. With Enabled=false it returns a no-op tracer so
// callers never need to branch on whether tracing is on.
func New(cfg Config) (*Manager, error) {
	if !cfg.Enabled {
		return &Manager{config: cfg, tracer: otel.Tracer("noop")}, nil
	}

	m := &Manager{config: cfg}
	if err := m.initialize(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) initialize() error {
	exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient(
		otlptracehttp.WithEndpoint(m.config.Endpoint),
	))
	if err != nil {
		return fmt.Errorf("create trace exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(m.config.ServiceName),
			semconv.DeploymentEnvironment(m.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("create trace resource: %w", err)
	}

	m.provider = trace.NewTracerProvider(
		trace.WithBatcher(exporter, trace.WithBatchTimeout(m.config.BatchTimeout)),
		trace.WithResource(res),
		trace.WithSampler(trace.TraceIDRatioBased(m.config.SampleRate)),
	)
	otel.SetTracerProvider(m.provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	m.tracer = otel.Tracer(m.config.ServiceName)

	logrus.WithFields(logrus.Fields{
		"component": "tracing",
		"endpoint":  m.config.Endpoint,
	}).Info("distributed tracing initialized")
	return nil
}

func (m *Manager) Tracer() oteltrace.Tracer { return m.tracer }

func (m *Manager) Shutdown(ctx context.Context) error {
	if m.provider != nil {
		return m.provider.Shutdown(ctx)
	}
	return nil
}

// Span wraps a started span with the attribute/error helpers the parser and
// routing layers use.
type Span struct {
	ctx  context.Context
	span oteltrace.Span
}

// Start begins a span named op as a child of ctx.
func (m *Manager) Start(ctx context.Context, op string) (context.Context, *Span) {
	ctx, span := m.tracer.Start(ctx, op)
	return ctx, &Span{ctx: ctx, span: span}
}

func (s *Span) Context() context.Context { return s.ctx }

func (s *Span) SetString(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

func (s *Span) SetInt(key string, value int) {
	s.span.SetAttributes(attribute.Int(key, value))
}

func (s *Span) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func (s *Span) End() { s.span.End() }
