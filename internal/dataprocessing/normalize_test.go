package dataprocessing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pvflash/internal/errors"
	"pvflash/internal/shared/testutil"
	"pvflash/pkg/contracts/domain"
)

var occcNameplate = domain.Nameplate{
	domain.ParamPmp: 175,
	domain.ParamVmp: 35.4,
	domain.ParamImp: 4.95,
	domain.ParamVoc: 44.6,
	domain.ParamIsc: 5.43,
}

func TestNormalizeToNameplate_RoundTrip(t *testing.T) {
	table := testutil.Table(
		testutil.Row("A", 1.0, 150),
		testutil.Row("B", 0.8, 121.7),
		testutil.Row("C", 0.4, 61.3),
	)

	out, err := NormalizeToNameplate(table, occcNameplate, domain.AllParameters)
	require.NoError(t, err)

	for i, r := range out.Rows {
		for _, p := range domain.AllParameters {
			ratio, ok := r.Value(p.PctNameplateColumn())
			require.True(t, ok, "%s missing on row %d", p.PctNameplateColumn(), i)
			measured, _ := table.Rows[i].Params.Get(p)
			assert.InDelta(t, measured, ratio*occcNameplate[p], 1e-9)
		}
	}
	assert.Nil(t, table.Rows[0].Columns, "input must not be modified")
}

func TestNormalizeToNameplate_BadReference(t *testing.T) {
	table := testutil.Table(testutil.Row("A", 1.0, 150))

	zero := domain.Nameplate{domain.ParamPmp: 0}
	_, err := NormalizeToNameplate(table, zero, []domain.Parameter{domain.ParamPmp})
	assert.True(t, errors.Is(err, apperrors.ErrDomain))

	_, err = NormalizeToNameplate(table, domain.Nameplate{domain.ParamPmp: 175}, domain.AllParameters)
	require.Error(t, err)
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "imp", de.Parameter)
}

func TestNormalizeToControl(t *testing.T) {
	table := controlTable()
	agg, err := ControlAt(table, 1.0, "CTRL", domain.AllParameters)
	require.NoError(t, err)

	out, err := NormalizeToControl(SubsetByIntensity(table, 1.0, 0.05), agg, domain.AllParameters)
	require.NoError(t, err)
	require.Equal(t, 3, out.Len())

	v, ok := out.Rows[1].Value("pmp_pct_control")
	require.True(t, ok)
	assert.InDelta(t, 150.0/165.0, v, 1e-12)

	zero := &domain.ControlAggregate{Values: map[domain.Parameter]float64{domain.ParamPmp: 0}}
	_, err = NormalizeToControl(table, zero, []domain.Parameter{domain.ParamPmp})
	assert.True(t, errors.Is(err, apperrors.ErrDomain))
}
