package dataprocessing

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"

	apperrors "pvflash/internal/errors"
	"pvflash/pkg/contracts/domain"
)

// ComputePLR returns the annual performance loss rate implied by measured
// against the nameplate rating scaled to intensity:
//
//	plr = 1 - (measured / (intensity * nameplate))^(1/years)
//
// rounded to 6 decimals. A fraction outside (0, 1] is a DomainError.
func ComputePLR(intensity, nameplate, measured, years float64) (float64, error) {
	if years <= 0 {
		return 0, &apperrors.DomainError{Operation: "compute_plr", Value: years, Reason: "years must be positive"}
	}
	atSun := intensity * nameplate
	if atSun <= 0 {
		return 0, &apperrors.DomainError{Operation: "compute_plr", Value: atSun, Reason: "nameplate at sun must be positive"}
	}
	fraction := measured / atSun
	if fraction <= 0 || fraction > 1 {
		return 0, &apperrors.DomainError{Operation: "compute_plr", Value: fraction, Reason: "measured/nameplate fraction outside (0, 1]"}
	}
	return scalar.RoundEven(1-math.Pow(fraction, 1/years), 6), nil
}

// EstimateDegradedValue projects nameplate forward by years at a constant
// annual loss rate: (1 - rate)^years * nameplate. It inverts ComputePLR.
func EstimateDegradedValue(rate, years, nameplate float64) (float64, error) {
	if rate < 0 || rate >= 1 {
		return 0, &apperrors.DomainError{Operation: "estimate_degraded_value", Value: rate, Reason: "rate must be in [0, 1)"}
	}
	if years < 0 {
		return 0, &apperrors.DomainError{Operation: "estimate_degraded_value", Value: years, Reason: "years must not be negative"}
	}
	if nameplate <= 0 {
		return 0, &apperrors.DomainError{Operation: "estimate_degraded_value", Value: nameplate, Reason: "nameplate must be positive"}
	}
	return math.Pow(1-rate, years) * nameplate, nil
}

// ApplyDegradation adds <p>_plr for each tracked parameter to the rows
// selected by keep (all rows when keep is nil), using the row's mapped
// intensity. Other rows get no PLR columns. The first failing row aborts
// with its file in the error.
func ApplyDegradation(table *domain.ParameterTable, nameplate domain.Nameplate, params []domain.Parameter, years float64, keep func(domain.ParameterRow) bool) (*domain.ParameterTable, error) {
	out := table.Clone()
	for i := range out.Rows {
		row := &out.Rows[i]
		if keep != nil && !keep(*row) {
			continue
		}
		intensity, ok := row.Value(domain.ColumnMappedIntensity)
		if !ok {
			return nil, fmt.Errorf("row %d (%s, serial %s): %w", row.Index, row.File, row.Serial,
				apperrors.NewAppValidationError("mapped intensity is not set"))
		}
		for _, p := range params {
			measured, _ := row.Params.Get(p)
			plr, err := ComputePLR(intensity, nameplate[p], measured, years)
			if err != nil {
				var de *apperrors.DomainError
				if errors.As(err, &de) {
					de.Parameter = string(p)
				}
				return nil, fmt.Errorf("row %d (%s, serial %s): %w", row.Index, row.File, row.Serial, err)
			}
			row.SetColumn(p.PLRColumn(), plr)
		}
	}
	return out, nil
}
