package dataprocessing

import (
	"gonum.org/v1/gonum/stat"

	apperrors "pvflash/internal/errors"
	"pvflash/pkg/contracts/domain"
)

// ControlMargin is the intensity window used to select control rows
const ControlMargin = 0.05

// ControlAt averages each tracked parameter over the control module's rows
// within ControlMargin of sun. It fails with MissingControlDataError when no
// such row exists.
func ControlAt(table *domain.ParameterTable, sun float64, controlSerial string, params []domain.Parameter) (*domain.ControlAggregate, error) {
	rows := SubsetByIntensity(table, sun, ControlMargin).Filter(func(r domain.ParameterRow) bool {
		return r.Serial == controlSerial
	})
	if rows.Len() == 0 {
		return nil, &apperrors.MissingControlDataError{Sun: sun, ControlSerial: controlSerial}
	}

	agg := &domain.ControlAggregate{
		Sun:    sun,
		Serial: controlSerial,
		Rows:   rows.Len(),
		Values: make(map[domain.Parameter]float64, len(params)),
	}
	for _, p := range params {
		values, err := rows.Column(string(p))
		if err != nil {
			return nil, err
		}
		agg.Values[p] = stat.Mean(values, nil)
	}
	return agg, nil
}
