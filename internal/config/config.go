package config

import (
	"fmt"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"pvflash/pkg/contracts/domain"
)

// Config represents the complete application configuration
type Config struct {
	Batch     BatchConfig     `yaml:"batch" envconfig:"BATCH"`
	Engine    EngineConfig    `yaml:"engine" envconfig:"ENGINE"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// BatchConfig describes one batch of flash-test measurements.
// It is read once at startup and never modified afterwards.
type BatchConfig struct {
	Identifier                string          `yaml:"identifier" envconfig:"IDENTIFIER" validate:"required"`
	DataDir                   string          `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	InitialBasenameUnderscore bool            `yaml:"initial_basename_underscore" envconfig:"INITIAL_BASENAME_UNDERSCORE"`
	HasBasenameComment        bool            `yaml:"has_basename_comment" envconfig:"HAS_BASENAME_COMMENT"`
	Control                   string          `yaml:"control" envconfig:"CONTROL"`
	ModulesToExclude          []string        `yaml:"modules_to_exclude" envconfig:"MODULES_TO_EXCLUDE"`
	UnderperformingSerials    []string        `yaml:"underperforming_serials" envconfig:"UNDERPERFORMING_SERIALS"`
	Parameters                []string        `yaml:"parameters" envconfig:"PARAMETERS" validate:"min=1,dive,oneof=pmp imp vmp voc isc"`
	Nameplate                 NameplateConfig `yaml:"nameplate" envconfig:"NAMEPLATE"`
	Years                     float64         `yaml:"years" envconfig:"YEARS" validate:"gt=0"`
	SunLevels                 []float64       `yaml:"sun_levels" envconfig:"SUN_LEVELS" validate:"min=1,dive,gt=0"`
	PLRReferenceSun           float64         `yaml:"plr_reference_sun" envconfig:"PLR_REFERENCE_SUN" validate:"gt=0"`
	IntensityMargin           float64         `yaml:"intensity_margin" envconfig:"INTENSITY_MARGIN" validate:"gt=0"`
	IntensityIncrement        float64         `yaml:"intensity_increment" envconfig:"INTENSITY_INCREMENT" validate:"gt=0"`
	Workers                   int             `yaml:"workers" envconfig:"WORKERS" validate:"min=1"`
	SummaryColumns            []string        `yaml:"summary_columns" envconfig:"SUMMARY_COLUMNS"`
}

// NameplateConfig holds the rated values at 1 sun
type NameplateConfig struct {
	Pmp float64 `yaml:"pmp" envconfig:"PMP" validate:"gt=0"`
	Imp float64 `yaml:"imp" envconfig:"IMP" validate:"gt=0"`
	Vmp float64 `yaml:"vmp" envconfig:"VMP" validate:"gt=0"`
	Voc float64 `yaml:"voc" envconfig:"VOC" validate:"gt=0"`
	Isc float64 `yaml:"isc" envconfig:"ISC" validate:"gt=0"`
}

// EngineConfig contains the IV analysis engine invocation and tuning
type EngineConfig struct {
	Command                string   `yaml:"command" envconfig:"COMMAND"`
	Args                   []string `yaml:"args" envconfig:"ARGS"`
	RshVCell               float64  `yaml:"rsh_v_cell" envconfig:"RSH_V_CELL" validate:"gt=0"`
	Step                   int      `yaml:"step" envconfig:"STEP" validate:"min=1"`
	ReferenceConstant      float64  `yaml:"reference_constant" envconfig:"REFERENCE_CONSTANT"`
	VoltageTempCoefficient float64  `yaml:"voltage_temp_coefficient" envconfig:"VOLTAGE_TEMP_COEFFICIENT"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig controls span export and the metrics textfile
type TelemetryConfig struct {
	ServiceName     string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	TraceFile       string `yaml:"trace_file" envconfig:"TRACE_FILE"` // "" disables tracing, "-" is stderr
	MetricsTextfile string `yaml:"metrics_textfile" envconfig:"METRICS_TEXTFILE"`
}

// Load builds the configuration from defaults, the YAML file at path (or the
// first default location found when path is empty) and PVFLASH_* environment
// variables, in increasing order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

// Validate checks struct constraints and the cross-field rules
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}

	if c.Batch.Control != "" && slices.Contains(c.Batch.ModulesToExclude, c.Batch.Control) {
		return fmt.Errorf("control module %s is also listed in modules_to_exclude", c.Batch.Control)
	}

	if !slices.Contains(c.Batch.SunLevels, c.Batch.PLRReferenceSun) {
		return fmt.Errorf("plr_reference_sun %g is not one of sun_levels", c.Batch.PLRReferenceSun)
	}

	if (c.Logging.Output == "file" || c.Logging.Output == "both") && c.Logging.FilePath == "" {
		return fmt.Errorf("logging output %q requires file_path", c.Logging.Output)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"pvflash.yaml",
		"configs/pvflash.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// TrackedParameters returns the parameters the batch computes, in configured order
func (b BatchConfig) TrackedParameters() []domain.Parameter {
	out := make([]domain.Parameter, 0, len(b.Parameters))
	for _, s := range b.Parameters {
		if p, err := domain.ParseParameter(s); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// NameplateSpec returns the nameplate ratings keyed by parameter
func (b BatchConfig) NameplateSpec() domain.Nameplate {
	return domain.Nameplate{
		domain.ParamPmp: b.Nameplate.Pmp,
		domain.ParamImp: b.Nameplate.Imp,
		domain.ParamVmp: b.Nameplate.Vmp,
		domain.ParamVoc: b.Nameplate.Voc,
		domain.ParamIsc: b.Nameplate.Isc,
	}
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Batch: BatchConfig{
			HasBasenameComment: true,
			Parameters:         []string{"pmp", "imp", "vmp", "isc", "voc"},
			SunLevels:          []float64{1},
			PLRReferenceSun:    DefaultPLRReferenceSun,
			IntensityMargin:    DefaultIntensityMargin,
			IntensityIncrement: DefaultIntensityIncrement,
			Workers:            1,
		},
		Engine: EngineConfig{
			RshVCell: DefaultRshVCell,
			Step:     DefaultCorrectionStep,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "console",
		},
		Telemetry: TelemetryConfig{
			ServiceName: AppName,
		},
	}
}
