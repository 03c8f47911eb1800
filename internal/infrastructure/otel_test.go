package infrastructure

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvflash/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestInitializeOTel_MetricsTextfile(t *testing.T) {
	dir := t.TempDir()
	textfile := filepath.Join(dir, "pvflash.prom")

	tel, err := InitializeOTel(config.TelemetryConfig{MetricsTextfile: textfile}, quietLogger())
	require.NoError(t, err)
	assert.Nil(t, tel.TracerProvider)
	require.NotNil(t, tel.Metrics)

	ctx := context.Background()
	tel.Metrics.EngineCalls.Add(ctx, 2)
	tel.Metrics.RecordStep(ctx, "build", 150*time.Millisecond, nil)
	tel.Metrics.RecordStep(ctx, "degradation", time.Millisecond, errors.New("boom"))

	// tracer is a no-op but usable
	_, span := tel.Tracer.Start(ctx, "noop")
	span.End()

	require.NoError(t, tel.Shutdown(ctx))

	content, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "pvflash_engine_calls_total")
	assert.Contains(t, string(content), "pvflash_stage_errors_total")
	assert.Contains(t, string(content), `step="degradation"`)
}

func TestInitializeOTel_TraceFile(t *testing.T) {
	traceFile := filepath.Join(t.TempDir(), "spans.json")

	tel, err := InitializeOTel(config.TelemetryConfig{ServiceName: "flash-test", TraceFile: traceFile}, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, tel.TracerProvider)

	ctx, span := tel.Tracer.Start(context.Background(), "batch")
	RecordError(ctx, errors.New("missing control data"))
	span.End()

	require.NoError(t, tel.Shutdown(context.Background()))

	content, err := os.ReadFile(traceFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"Name":"batch"`)
	assert.Contains(t, string(content), "missing control data")
}

func TestInitializeOTel_BadTraceFile(t *testing.T) {
	_, err := InitializeOTel(config.TelemetryConfig{
		TraceFile: filepath.Join(t.TempDir(), "absent", "spans.json"),
	}, quietLogger())
	assert.Error(t, err)
}

func TestBatchMetrics_NilSafe(t *testing.T) {
	var m *BatchMetrics
	assert.NotPanics(t, func() {
		m.RecordStep(context.Background(), "build", time.Second, nil)
	})
}
