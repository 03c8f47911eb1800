package operations

import (
	"context"
	"log/slog"

	"pvflash/internal/config"
	"pvflash/internal/dataprocessing"
	"pvflash/internal/engine"
	"pvflash/internal/infrastructure"
	"pvflash/internal/metadata"
	"pvflash/pkg/contracts/domain"
)

// LevelResult is the outcome of the pipeline at one sun level
type LevelResult struct {
	Sun     float64                  `json:"sun"`
	Table   *domain.ParameterTable   `json:"table"`
	Control *domain.ControlAggregate `json:"control,omitempty"`
	Summary *domain.SummaryTable     `json:"summary"`
}

// BatchResult is the outcome of one batch run
type BatchResult struct {
	ID         string                 `json:"id"`
	Identifier string                 `json:"identifier"`
	Table      *domain.ParameterTable `json:"table"`
	Levels     []LevelResult          `json:"levels"`
	Steps      []*StepState           `json:"steps"`
}

// PipelineOptions are the optional collaborators of a pipeline
type PipelineOptions struct {
	Logger    *slog.Logger
	Telemetry *infrastructure.Telemetry
	Progress  dataprocessing.Progress
}

// Pipeline wires the batch configuration into the ordered steps
type Pipeline struct {
	manager    *Manager
	identifier string
}

// NewBatchPipeline registers build, exclude, map_intensity, nameplate,
// degradation and levels for the batch described by cfg.
func NewBatchPipeline(cfg config.Config, analyzer engine.Analyzer, opts PipelineOptions) (*Pipeline, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var builderCfg dataprocessing.BuilderConfig
	var manager *Manager
	if t := opts.Telemetry; t != nil {
		builderCfg.Tracer = t.Tracer
		builderCfg.Metrics = t.Metrics
		manager = NewManager(logger, t.Tracer, t.Metrics)
	} else {
		manager = NewManager(logger, nil, nil)
	}

	batch := cfg.Batch
	builderCfg.Dir = batch.DataDir
	builderCfg.InitialBasenameUnderscore = batch.InitialBasenameUnderscore
	builderCfg.Workers = batch.Workers
	builderCfg.RshVCell = cfg.Engine.RshVCell
	builderCfg.Step = cfg.Engine.Step
	builderCfg.ReferenceConstant = cfg.Engine.ReferenceConstant
	builderCfg.VoltageTempCoefficient = cfg.Engine.VoltageTempCoefficient
	builderCfg.Progress = opts.Progress

	parser := metadata.NewParser(metadata.Options{HasBasenameComment: batch.HasBasenameComment}, logger)
	builder := dataprocessing.NewParameterTableBuilder(analyzer, parser, builderCfg, logger)

	params := batch.TrackedParameters()
	nameplate := batch.NameplateSpec()

	columns := batch.SummaryColumns
	if len(columns) == 0 {
		columns = dataprocessing.DefaultSummaryColumns(params, batch.Control != "")
	}
	summarizer, err := dataprocessing.NewSummarizer(logger, dataprocessing.SummarizerConfig{
		Columns: columns,
		Exclude: batch.UnderperformingSerials,
	})
	if err != nil {
		return nil, err
	}

	steps := []Step{
		NewBuildStage(builder, batch.SunLevels),
		NewExcludeStage(batch.ModulesToExclude),
		NewMapIntensityStage(batch.IntensityIncrement),
		NewNameplateStage(nameplate, params),
		NewDegradationStage(nameplate, params, batch.Years, batch.PLRReferenceSun, batch.IntensityMargin),
		NewLevelsStage(batch.SunLevels, batch.IntensityMargin, batch.PLRReferenceSun, batch.Control, params, summarizer, logger),
	}
	for _, s := range steps {
		if err := manager.RegisterStage(s); err != nil {
			return nil, err
		}
	}

	return &Pipeline{manager: manager, identifier: batch.Identifier}, nil
}

// Run processes files under the run id and returns the batch result. The
// first failing step aborts the run.
func (p *Pipeline) Run(ctx context.Context, id string, files []string) (*BatchResult, error) {
	state := NewOperationState(id, files)
	if err := p.manager.Execute(ctx, state); err != nil {
		return nil, err
	}

	result := &BatchResult{
		ID:         id,
		Identifier: p.identifier,
		Table:      state.Table(),
		Levels:     state.Levels(),
	}
	for _, s := range p.manager.GetRegistry().List() {
		result.Steps = append(result.Steps, state.GetStage(s.ID()))
	}
	return result, nil
}
