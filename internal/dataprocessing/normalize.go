package dataprocessing

import (
	apperrors "pvflash/internal/errors"
	"pvflash/pkg/contracts/domain"
)

// NormalizeToNameplate adds <p>_pct_nameplate = p / nameplate[p] for each
// tracked parameter.
func NormalizeToNameplate(table *domain.ParameterTable, nameplate domain.Nameplate, params []domain.Parameter) (*domain.ParameterTable, error) {
	return normalize(table, "normalize_to_nameplate", nameplate, params, domain.Parameter.PctNameplateColumn)
}

// NormalizeToControl adds <p>_pct_control = p / control[p] for each tracked
// parameter.
func NormalizeToControl(table *domain.ParameterTable, control *domain.ControlAggregate, params []domain.Parameter) (*domain.ParameterTable, error) {
	return normalize(table, "normalize_to_control", control.Values, params, domain.Parameter.PctControlColumn)
}

// normalize checks every denominator before touching a row, then divides
// column-wise into a copy of table.
func normalize(table *domain.ParameterTable, op string, ref map[domain.Parameter]float64, params []domain.Parameter, column func(domain.Parameter) string) (*domain.ParameterTable, error) {
	for _, p := range params {
		v, ok := ref[p]
		if !ok {
			return nil, &apperrors.DomainError{Operation: op, Parameter: string(p), Reason: "no reference value"}
		}
		if v == 0 {
			return nil, &apperrors.DomainError{Operation: op, Parameter: string(p), Value: v, Reason: "reference value is zero"}
		}
	}

	out := table.Clone()
	for _, p := range params {
		name := column(p)
		for i := range out.Rows {
			v, _ := out.Rows[i].Params.Get(p)
			out.Rows[i].SetColumn(name, v/ref[p])
		}
	}
	return out, nil
}
