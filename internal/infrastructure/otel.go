package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"pvflash/internal/config"
)

// MeterName is the instrumentation scope for tracer and meter
const MeterName = "pvflash"

// Telemetry holds the tracer and meter for one batch run.
// Providers are private to the run; nothing is registered globally.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider // nil when tracing is off
	MeterProvider  *sdkmetric.MeterProvider
	Registry       *promclient.Registry
	Tracer         trace.Tracer
	Meter          metric.Meter
	Metrics        *BatchMetrics

	traceOut        io.Closer
	metricsTextfile string
	logger          *slog.Logger
}

// BatchMetrics are the instruments recorded while a batch runs
type BatchMetrics struct {
	EngineCalls    metric.Int64Counter
	RowsBuilt      metric.Int64Counter
	EngineDuration metric.Float64Histogram
	StepDuration   metric.Float64Histogram
	StepErrors     metric.Int64Counter
}

// InitializeOTel sets up span export (when cfg.TraceFile is set) and a
// Prometheus-backed meter on a private registry.
func InitializeOTel(cfg config.TelemetryConfig, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = GetLogger()
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = config.AppName
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(config.AppVersion),
	)

	t := &Telemetry{
		metricsTextfile: cfg.MetricsTextfile,
		logger:          logger,
	}

	if err := t.initializeTracing(cfg.TraceFile, res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := t.initializeMetrics(res); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.Info("Telemetry initialized",
		slog.String("service", serviceName),
		slog.Bool("tracing_enabled", t.TracerProvider != nil),
		slog.String("metrics_textfile", cfg.MetricsTextfile))

	return t, nil
}

func (t *Telemetry) initializeTracing(traceFile string, res *resource.Resource) error {
	if traceFile == "" {
		t.Tracer = noop.NewTracerProvider().Tracer(MeterName)
		return nil
	}

	var w io.Writer = os.Stderr
	if traceFile != "-" {
		f, err := os.Create(traceFile)
		if err != nil {
			return fmt.Errorf("failed to create trace file: %w", err)
		}
		t.traceOut = f
		w = f
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	t.TracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	t.Tracer = t.TracerProvider.Tracer(MeterName, trace.WithInstrumentationVersion(config.AppVersion))
	return nil
}

func (t *Telemetry) initializeMetrics(res *resource.Resource) error {
	t.Registry = promclient.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(t.Registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	t.MeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	t.Meter = t.MeterProvider.Meter(MeterName, metric.WithInstrumentationVersion(config.AppVersion))

	t.Metrics, err = CreateBatchMetrics(t.Meter)
	return err
}

// CreateBatchMetrics creates the batch instruments on meter
func CreateBatchMetrics(meter metric.Meter) (*BatchMetrics, error) {
	engineCalls, err := meter.Int64Counter(
		"pvflash_engine_calls_total",
		metric.WithDescription("Calls made to the IV analysis engine"),
	)
	if err != nil {
		return nil, err
	}

	rowsBuilt, err := meter.Int64Counter(
		"pvflash_rows_built_total",
		metric.WithDescription("Parameter table rows produced"),
	)
	if err != nil {
		return nil, err
	}

	engineDuration, err := meter.Float64Histogram(
		"pvflash_engine_call_duration_seconds",
		metric.WithDescription("IV analysis engine call duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"pvflash_stage_duration_seconds",
		metric.WithDescription("Pipeline step duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stepErrors, err := meter.Int64Counter(
		"pvflash_stage_errors_total",
		metric.WithDescription("Pipeline steps that failed"),
	)
	if err != nil {
		return nil, err
	}

	return &BatchMetrics{
		EngineCalls:    engineCalls,
		RowsBuilt:      rowsBuilt,
		EngineDuration: engineDuration,
		StepDuration:   stepDuration,
		StepErrors:     stepErrors,
	}, nil
}

// RecordStep records duration and failure of one pipeline step
func (m *BatchMetrics) RecordStep(ctx context.Context, step string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
		m.StepErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("step", step)))
	}
	m.StepDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("status", status),
	))
}

// RecordError records err on the span in ctx
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Shutdown flushes spans, writes the metrics textfile when configured and
// releases the trace file.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if t.metricsTextfile != "" {
		if err := promclient.WriteToTextfile(t.metricsTextfile, t.Registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics textfile: %w", err))
		}
	}

	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if t.traceOut != nil {
		if err := t.traceOut.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close trace file: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("telemetry shutdown: %w", err)
	}

	t.logger.Debug("Telemetry shutdown complete")
	return nil
}
