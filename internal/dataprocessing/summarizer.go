package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"

	apperrors "pvflash/internal/errors"
	"pvflash/pkg/contracts/domain"
)

// Summary row labels, in output order
const (
	LabelMean                      = "mean"
	LabelMeanWithoutUnderperform   = "mean (w/o underperforming)"
	LabelMedian                    = "median"
	LabelMedianWithoutUnderperform = "median (w/o underperforming)"
)

// SummaryDecimals is the rounding applied to every summary statistic
const SummaryDecimals = 3

// Summarizer computes the batch summary table for one sun level.
type Summarizer struct {
	logger  *slog.Logger
	columns []string
	exclude []string
}

// SummarizerConfig holds configuration options for the Summarizer.
type SummarizerConfig struct {
	Columns []string // columns to summarize, in output order
	Exclude []string // serials left out of the "w/o underperforming" rows
}

// NewSummarizer validates the column names and creates a summarizer.
func NewSummarizer(logger *slog.Logger, config SummarizerConfig) (*Summarizer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(config.Columns) == 0 {
		return nil, apperrors.NewAppValidationError("summary needs at least one column")
	}
	for _, c := range config.Columns {
		if !KnownColumn(c) {
			return nil, apperrors.NewAppValidationError(fmt.Sprintf("unknown summary column %q", c))
		}
	}

	return &Summarizer{
		logger:  logger.With(slog.String("component", "summarizer")),
		columns: slices.Clone(config.Columns),
		exclude: slices.Clone(config.Exclude),
	}, nil
}

// Columns returns the summarized columns in output order
func (s *Summarizer) Columns() []string {
	return slices.Clone(s.columns)
}

// Without returns a summarizer over the columns for which drop is false
func (s *Summarizer) Without(drop func(column string) bool) *Summarizer {
	out := *s
	out.columns = slices.DeleteFunc(slices.Clone(s.columns), drop)
	return &out
}

// Summarize computes mean and median over all rows and over the rows whose
// serial is not excluded, for every configured column.
func (s *Summarizer) Summarize(ctx context.Context, table *domain.ParameterTable) (*domain.SummaryTable, error) {
	s.logger.DebugContext(ctx, "summarizing table",
		slog.Int("rows", table.Len()),
		slog.Int("columns", len(s.columns)),
		slog.Int("excluded_serials", len(s.exclude)))

	specs := []struct {
		label   string
		kind    domain.Statistic
		exclude []string
	}{
		{LabelMean, domain.StatisticMean, nil},
		{LabelMeanWithoutUnderperform, domain.StatisticMean, s.exclude},
		{LabelMedian, domain.StatisticMedian, nil},
		{LabelMedianWithoutUnderperform, domain.StatisticMedian, s.exclude},
	}

	summary := &domain.SummaryTable{Columns: slices.Clone(s.columns)}
	for _, spec := range specs {
		row := domain.SummaryRow{Label: spec.label, Values: make([]float64, len(s.columns))}
		for i, col := range s.columns {
			v, err := ComputeStatistic(table, col, spec.kind, spec.exclude)
			if err != nil {
				return nil, fmt.Errorf("%s of %s: %w", spec.label, col, err)
			}
			row.Values[i] = v
		}
		summary.Rows = append(summary.Rows, row)
	}
	return summary, nil
}

// ComputeStatistic applies kind to column over the rows whose serial is not in
// exclude, rounded to SummaryDecimals.
func ComputeStatistic(table *domain.ParameterTable, column string, kind domain.Statistic, exclude []string) (float64, error) {
	var fn func([]float64) float64
	switch domain.Statistic(strings.ToLower(string(kind))) {
	case domain.StatisticMean:
		fn = func(v []float64) float64 { return stat.Mean(v, nil) }
	case domain.StatisticMedian:
		fn = median
	default:
		return 0, &apperrors.UnsupportedStatisticError{Kind: string(kind)}
	}

	rows := table
	if len(exclude) > 0 {
		rows = table.Filter(func(r domain.ParameterRow) bool {
			return !slices.Contains(exclude, r.Serial)
		})
	}

	values, err := rows.Column(column)
	if err != nil {
		return 0, apperrors.NewAppError(apperrors.ErrTypeValidation, "summary column unavailable", err)
	}
	if len(values) == 0 {
		return 0, &apperrors.DomainError{Operation: string(kind), Parameter: column, Reason: "no rows to summarize"}
	}
	return scalar.RoundEven(fn(values), SummaryDecimals), nil
}

// median averages the two middle values of an even-length input
func median(values []float64) float64 {
	sorted := slices.Clone(values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// KnownColumn reports whether name is a base or derived ParameterTable column
func KnownColumn(name string) bool {
	if name == domain.ColumnIntensity || name == domain.ColumnMappedIntensity {
		return true
	}
	base := name
	for _, suffix := range []string{domain.SuffixPctNameplate, domain.SuffixPctControl, domain.SuffixPLR} {
		if strings.HasSuffix(name, suffix) {
			base = strings.TrimSuffix(name, suffix)
			break
		}
	}
	p, err := domain.ParseParameter(base)
	return err == nil && string(p) == base
}

// IsPLRColumn reports whether name is a performance loss rate column
func IsPLRColumn(name string) bool {
	return strings.HasSuffix(name, domain.SuffixPLR)
}

// DefaultSummaryColumns returns each tracked parameter followed by its
// nameplate ratio, control ratio (when withControl) and PLR columns.
func DefaultSummaryColumns(params []domain.Parameter, withControl bool) []string {
	var cols []string
	for _, p := range params {
		cols = append(cols, string(p), p.PctNameplateColumn())
		if withControl {
			cols = append(cols, p.PctControlColumn())
		}
		cols = append(cols, p.PLRColumn())
	}
	return cols
}
