package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"pvflash/internal/infrastructure"
)

// Manager runs the registered steps in order over an OperationState and
// stops at the first failure.
type Manager struct {
	registry *Registry
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *infrastructure.BatchMetrics
}

// NewManager creates a manager. tracer and metrics may be nil.
func NewManager(logger *slog.Logger, tracer trace.Tracer, metrics *infrastructure.BatchMetrics) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return &Manager{
		registry: NewRegistry(),
		logger:   logger.With(slog.String("component", "pipeline")),
		tracer:   tracer,
		metrics:  metrics,
	}
}

// RegisterStage appends a step to the pipeline
func (m *Manager) RegisterStage(step Step) error {
	return m.registry.Register(step)
}

// GetRegistry returns the step registry
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Execute runs every step in registration order. On failure the remaining
// steps are marked skipped and the error is returned wrapped with the step ID.
func (m *Manager) Execute(ctx context.Context, state *OperationState) error {
	steps := m.registry.List()
	for _, s := range steps {
		state.SetStage(s.ID(), NewStepState(s.ID(), s.Name()))
	}

	ctx, span := m.tracer.Start(ctx, "batch", trace.WithAttributes(
		attribute.String("batch.id", state.ID),
		attribute.Int("batch.files", len(state.Files)),
	))
	defer span.End()

	state.Start()
	m.logOperationStart(ctx, state)

	for i, step := range steps {
		err := ctx.Err()
		if err == nil {
			err = m.executeStage(ctx, state, step)
		}
		if err != nil {
			for _, rest := range steps[i+1:] {
				state.GetStage(rest.ID()).Skip(fmt.Sprintf("step %s failed", step.ID()))
			}
			err = fmt.Errorf("step %s: %w", step.ID(), err)
			state.Fail(err)
			infrastructure.RecordError(ctx, err)
			m.logOperationError(ctx, state, err)
			return err
		}
	}

	state.Complete()
	m.logOperationComplete(ctx, state)
	return nil
}

func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())

	ctx, span := m.tracer.Start(ctx, "step."+step.ID())
	defer span.End()

	if err := step.Validate(state); err != nil {
		stepState.Fail(err)
		m.logStageError(ctx, state.ID, step.ID(), err)
		return err
	}

	m.logStageStart(ctx, state.ID, step.ID())
	stepState.Start()
	start := time.Now()

	err := step.Execute(ctx, state)
	m.metrics.RecordStep(ctx, step.ID(), time.Since(start), err)
	if err != nil {
		stepState.Fail(err)
		infrastructure.RecordError(ctx, err)
		m.logStageError(ctx, state.ID, step.ID(), err)
		return err
	}

	stepState.Complete()
	m.logStageComplete(ctx, state.ID, step.ID(), stepState.Duration())
	return nil
}
