package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"pvflash/internal/engine"
	apperrors "pvflash/internal/errors"
	"pvflash/internal/infrastructure"
	"pvflash/internal/metadata"
	"pvflash/pkg/contracts/domain"
)

// Progress receives one tick per completed engine call.
// *progressbar.ProgressBar satisfies it.
type Progress interface {
	Add(num int) error
}

// BuilderConfig holds what the builder needs from the batch configuration
type BuilderConfig struct {
	Dir                       string
	InitialBasenameUnderscore bool
	Workers                   int

	RshVCell               float64
	Step                   int
	ReferenceConstant      float64
	VoltageTempCoefficient float64

	// Optional instrumentation
	Tracer   trace.Tracer
	Metrics  *infrastructure.BatchMetrics
	Progress Progress
}

// ParameterTableBuilder calls the IV analysis engine for every file and sun
// level and collects the scalar parameters into a ParameterTable.
type ParameterTableBuilder struct {
	analyzer engine.Analyzer
	parser   *metadata.Parser
	cfg      BuilderConfig
	logger   *slog.Logger
}

// NewParameterTableBuilder creates a builder
func NewParameterTableBuilder(analyzer engine.Analyzer, parser *metadata.Parser, cfg BuilderConfig, logger *slog.Logger) *ParameterTableBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Tracer == nil {
		cfg.Tracer = noop.NewTracerProvider().Tracer("")
	}
	return &ParameterTableBuilder{
		analyzer: analyzer,
		parser:   parser,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "table_builder")),
	}
}

// Build appends one row per (file, sun level) pair in file-then-level order.
// Engine calls run on up to Workers goroutines; each result is written to its
// own slot so completion order does not affect row order.
func (b *ParameterTableBuilder) Build(ctx context.Context, files []string, sunLevels []float64) (*domain.ParameterTable, error) {
	if len(sunLevels) == 0 {
		return nil, apperrors.NewAppValidationError("at least one sun level is required")
	}

	b.logger.InfoContext(ctx, "building parameter table",
		slog.Int("files", len(files)),
		slog.Int("sun_levels", len(sunLevels)),
		slog.Int("workers", b.cfg.Workers))

	// Filenames are validated before any engine call is made.
	records := make([]*domain.IVMetadata, len(files))
	for i, file := range files {
		rec, err := b.parser.Parse(file, domain.MeasurementIV)
		if err != nil {
			return nil, fmt.Errorf("file %s: %w", file, err)
		}
		iv, ok := rec.(domain.IVMetadata)
		if !ok {
			return nil, fmt.Errorf("file %s: unexpected metadata record %T", file, rec)
		}
		records[i] = &iv
	}

	rows := make([]domain.ParameterRow, len(files)*len(sunLevels))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Workers)
	for i, file := range files {
		for j, sun := range sunLevels {
			i, file, sun := i, file, sun
			slot := i*len(sunLevels) + j
			g.Go(func() error {
				row, err := b.buildRow(gctx, file, records[i], sun)
				if err != nil {
					return err
				}
				rows[slot] = row
				if b.cfg.Progress != nil {
					_ = b.cfg.Progress.Add(1)
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		b.logger.ErrorContext(ctx, "parameter table build failed",
			slog.String("error", err.Error()))
		return nil, err
	}

	if b.cfg.Metrics != nil {
		b.cfg.Metrics.RowsBuilt.Add(ctx, int64(len(rows)))
	}
	b.logger.InfoContext(ctx, "parameter table built", slog.Int("rows", len(rows)))

	return domain.NewParameterTable(rows), nil
}

func (b *ParameterTableBuilder) buildRow(ctx context.Context, file string, rec *domain.IVMetadata, sun float64) (domain.ParameterRow, error) {
	path := b.ResolvePath(file)

	ctx, span := b.cfg.Tracer.Start(ctx, "engine.analyze", trace.WithAttributes(
		attribute.String("file", filepath.Base(file)),
		attribute.Float64("sun", sun),
	))
	defer span.End()

	start := time.Now()
	res, err := b.analyzer.Analyze(ctx, engine.Request{
		FilePath:               path,
		ReferenceConstant:      b.cfg.ReferenceConstant,
		VoltageTempCoefficient: b.cfg.VoltageTempCoefficient,
		RshVCell:               b.cfg.RshVCell,
		Step:                   b.cfg.Step,
		TargetSun:              engine.Sun(sun),
	})
	if b.cfg.Metrics != nil {
		b.cfg.Metrics.EngineCalls.Add(ctx, 1)
		b.cfg.Metrics.EngineDuration.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(attribute.Bool("error", err != nil)))
	}
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return domain.ParameterRow{}, fmt.Errorf("analyze %s at %g suns: %w", path, sun, err)
	}

	intensity, params, err := res.Corrected.Nearest(sun)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return domain.ParameterRow{}, fmt.Errorf("analyze %s at %g suns: %w", path, sun, err)
	}

	b.logger.DebugContext(ctx, "engine call complete",
		slog.String("path", path),
		slog.Float64("sun", sun),
		slog.Float64("intensity", intensity),
		slog.Float64("pmp", params.Pmp))

	return domain.ParameterRow{
		File:      filepath.Base(file),
		SunLevel:  sun,
		Serial:    rec.SerialNumber,
		Date:      rec.Date,
		Time:      rec.Time,
		Intensity: intensity,
		Params:    params,
	}, nil
}

// ResolvePath returns the on-disk path of file inside the data directory,
// rewriting the first '-' to '_' when the batch uses that naming.
func (b *ParameterTableBuilder) ResolvePath(file string) string {
	if b.cfg.InitialBasenameUnderscore {
		file = strings.Replace(file, "-", "_", 1)
	}
	return filepath.Join(b.cfg.Dir, file)
}
