package operations

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"pvflash/internal/dataprocessing"
	apperrors "pvflash/internal/errors"
	"pvflash/pkg/contracts/domain"
)

// Step IDs, in pipeline order
const (
	StepBuild        = "build"
	StepExclude      = "exclude"
	StepMapIntensity = "map_intensity"
	StepNameplate    = "nameplate"
	StepDegradation  = "degradation"
	StepLevels       = "levels"
)

// tableStage is embedded by every step that consumes the current table
type tableStage struct {
	BaseStage
}

func (s tableStage) Validate(state *OperationState) error {
	if state.Table() == nil {
		return apperrors.NewAppValidationError(fmt.Sprintf("step %s needs a parameter table", s.ID()))
	}
	return nil
}

// BuildStage runs the engine over every file and sun level
type BuildStage struct {
	BaseStage
	builder   *dataprocessing.ParameterTableBuilder
	sunLevels []float64
}

// NewBuildStage creates the table building step
func NewBuildStage(builder *dataprocessing.ParameterTableBuilder, sunLevels []float64) *BuildStage {
	return &BuildStage{
		BaseStage: NewBaseStage(StepBuild, "Build parameter table"),
		builder:   builder,
		sunLevels: sunLevels,
	}
}

// Validate requires at least one file, each local to the data directory
func (s *BuildStage) Validate(state *OperationState) error {
	if len(state.Files) == 0 {
		return apperrors.NewAppValidationError("no measurement files given")
	}
	for _, f := range state.Files {
		if !filepath.IsLocal(f) {
			return apperrors.NewAppValidationError(fmt.Sprintf("file %q is not inside the data directory", f))
		}
	}
	return nil
}

func (s *BuildStage) Execute(ctx context.Context, state *OperationState) error {
	table, err := s.builder.Build(ctx, state.Files, s.sunLevels)
	if err != nil {
		return err
	}
	state.SetTable(table)
	return nil
}

// ExcludeStage drops the excluded modules
type ExcludeStage struct {
	tableStage
	serials []string
}

// NewExcludeStage creates the module exclusion step
func NewExcludeStage(serials []string) *ExcludeStage {
	return &ExcludeStage{
		tableStage: tableStage{NewBaseStage(StepExclude, "Exclude modules")},
		serials:    serials,
	}
}

func (s *ExcludeStage) Execute(_ context.Context, state *OperationState) error {
	state.SetTable(dataprocessing.ExcludeModules(state.Table(), s.serials))
	return nil
}

// MapIntensityStage fills mapped_intensity
type MapIntensityStage struct {
	tableStage
	increment float64
}

// NewMapIntensityStage creates the intensity rounding step
func NewMapIntensityStage(increment float64) *MapIntensityStage {
	return &MapIntensityStage{
		tableStage: tableStage{NewBaseStage(StepMapIntensity, "Map intensity")},
		increment:  increment,
	}
}

func (s *MapIntensityStage) Execute(_ context.Context, state *OperationState) error {
	table, err := dataprocessing.MapIntensity(state.Table(), s.increment)
	if err != nil {
		return err
	}
	state.SetTable(table)
	return nil
}

// NameplateStage adds the nameplate ratio columns
type NameplateStage struct {
	tableStage
	nameplate domain.Nameplate
	params    []domain.Parameter
}

// NewNameplateStage creates the nameplate normalization step
func NewNameplateStage(nameplate domain.Nameplate, params []domain.Parameter) *NameplateStage {
	return &NameplateStage{
		tableStage: tableStage{NewBaseStage(StepNameplate, "Normalize to nameplate")},
		nameplate:  nameplate,
		params:     params,
	}
}

func (s *NameplateStage) Execute(_ context.Context, state *OperationState) error {
	table, err := dataprocessing.NormalizeToNameplate(state.Table(), s.nameplate, s.params)
	if err != nil {
		return err
	}
	state.SetTable(table)
	return nil
}

// DegradationStage adds the PLR columns to the rows within margin of the
// PLR reference sun level
type DegradationStage struct {
	tableStage
	nameplate domain.Nameplate
	params    []domain.Parameter
	years     float64
	sun       float64
	margin    float64
}

// NewDegradationStage creates the performance loss rate step
func NewDegradationStage(nameplate domain.Nameplate, params []domain.Parameter, years, sun, margin float64) *DegradationStage {
	return &DegradationStage{
		tableStage: tableStage{NewBaseStage(StepDegradation, "Compute degradation")},
		nameplate:  nameplate,
		params:     params,
		years:      years,
		sun:        sun,
		margin:     margin,
	}
}

func (s *DegradationStage) Execute(_ context.Context, state *OperationState) error {
	table, err := dataprocessing.ApplyDegradation(state.Table(), s.nameplate, s.params, s.years,
		dataprocessing.NearSun(s.sun, s.margin))
	if err != nil {
		return err
	}
	state.SetTable(table)
	return nil
}

// LevelsStage subsets the table at each sun level, normalizes to the control
// module when one is configured and summarizes the subset. PLR columns are
// summarized at the PLR reference level only.
type LevelsStage struct {
	tableStage
	sunLevels  []float64
	margin     float64
	plrSun     float64
	control    string
	params     []domain.Parameter
	summarizer *dataprocessing.Summarizer
	logger     *slog.Logger
}

// NewLevelsStage creates the per-sun-level step
func NewLevelsStage(sunLevels []float64, margin, plrSun float64, control string, params []domain.Parameter, summarizer *dataprocessing.Summarizer, logger *slog.Logger) *LevelsStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &LevelsStage{
		tableStage: tableStage{NewBaseStage(StepLevels, "Summarize sun levels")},
		sunLevels:  sunLevels,
		margin:     margin,
		plrSun:     plrSun,
		control:    control,
		params:     params,
		summarizer: summarizer,
		logger:     logger,
	}
}

func (s *LevelsStage) Execute(ctx context.Context, state *OperationState) error {
	table := state.Table()
	for _, sun := range s.sunLevels {
		level := LevelResult{Sun: sun, Table: dataprocessing.SubsetByIntensity(table, sun, s.margin)}

		if s.control != "" {
			// control is averaged over the whole batch, not the subset
			agg, err := dataprocessing.ControlAt(table, sun, s.control, s.params)
			if err != nil {
				return err
			}
			level.Control = agg
			if level.Table, err = dataprocessing.NormalizeToControl(level.Table, agg, s.params); err != nil {
				return fmt.Errorf("sun %g: %w", sun, err)
			}
		}

		summarizer := s.summarizer
		if sun != s.plrSun {
			summarizer = summarizer.Without(dataprocessing.IsPLRColumn)
		}
		summary, err := summarizer.Summarize(ctx, level.Table)
		if err != nil {
			return fmt.Errorf("sun %g: %w", sun, err)
		}
		level.Summary = summary

		s.logger.InfoContext(ctx, "sun level summarized",
			slog.Float64("sun", sun),
			slog.Int("rows", level.Table.Len()))
		state.AddLevel(level)
	}
	return nil
}
