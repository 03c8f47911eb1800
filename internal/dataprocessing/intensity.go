package dataprocessing

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"

	apperrors "pvflash/internal/errors"
	"pvflash/pkg/contracts/domain"
)

// SubsetByIntensity keeps the rows with |intensity - target| < margin.
// The bound is strict. Row index is kept from the source table.
func SubsetByIntensity(table *domain.ParameterTable, target, margin float64) *domain.ParameterTable {
	return table.Filter(NearSun(target, margin))
}

// NearSun matches rows whose realized intensity is strictly within margin of
// target.
func NearSun(target, margin float64) func(domain.ParameterRow) bool {
	return func(r domain.ParameterRow) bool {
		return math.Abs(r.Intensity-target) < margin
	}
}

// RoundIntensity rounds each value to the nearest multiple of increment.
// The division happens in hundredths and ties go to the even multiple.
func RoundIntensity(values []float64, increment float64) ([]float64, error) {
	if increment <= 0 {
		return nil, &apperrors.DomainError{
			Operation: "round_intensity",
			Value:     increment,
			Reason:    "increment must be positive",
		}
	}
	scaled := increment * 100
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = scalar.RoundEven(v*100/scaled, 0) * scaled / 100
	}
	return out, nil
}

// MapIntensity writes RoundIntensity of each row's intensity into
// MappedIntensity on a copy of table.
func MapIntensity(table *domain.ParameterTable, increment float64) (*domain.ParameterTable, error) {
	intensities, err := table.Column(domain.ColumnIntensity)
	if err != nil {
		return nil, err
	}
	mapped, err := RoundIntensity(intensities, increment)
	if err != nil {
		return nil, err
	}
	out := table.Clone()
	for i := range out.Rows {
		out.Rows[i].SetMappedIntensity(mapped[i])
	}
	return out, nil
}
