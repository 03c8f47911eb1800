package dataprocessing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pvflash/internal/errors"
	"pvflash/internal/shared/testutil"
	"pvflash/pkg/contracts/domain"
)

func TestComputePLR(t *testing.T) {
	tests := []struct {
		name      string
		intensity float64
		nameplate float64
		measured  float64
		years     float64
		want      float64
	}{
		{"one sun", 1.0, 175, 150, 19, 0.00808},
		{"no loss", 1.0, 175, 175, 19, 0},
		{"scaled to 0.8 suns", 0.8, 175, 120, 19, 0.008080},
		{"one year", 1.0, 100, 99, 1, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputePLR(tt.intensity, tt.nameplate, tt.measured, tt.years)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestComputePLR_MatchesFormula(t *testing.T) {
	got, err := ComputePLR(1.0, 175, 150, 19)
	require.NoError(t, err)

	want := math.Round((1-math.Pow(150.0/175.0, 1.0/19))*1e6) / 1e6
	assert.InDelta(t, want, got, 1e-12)
}

func TestComputePLR_DomainErrors(t *testing.T) {
	tests := []struct {
		name                                  string
		intensity, nameplate, measured, years float64
	}{
		{"zero measured", 1, 175, 0, 19},
		{"negative measured", 1, 175, -3, 19},
		{"above nameplate", 1, 175, 180, 19},
		{"zero intensity", 0, 175, 150, 19},
		{"zero years", 1, 175, 150, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputePLR(tt.intensity, tt.nameplate, tt.measured, tt.years)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrDomain))
		})
	}
}

func TestApplyDegradation(t *testing.T) {
	nameplate := domain.Nameplate{
		domain.ParamPmp: 175, domain.ParamImp: 6, domain.ParamVmp: 35, domain.ParamVoc: 44, domain.ParamIsc: 6,
	}
	table := testutil.Table(testutil.Row("A", 1.01, 150))
	table.Rows[0].SetMappedIntensity(1.0)

	out, err := ApplyDegradation(table, nameplate, domain.AllParameters, 19, nil)
	require.NoError(t, err)

	plr, ok := out.Rows[0].Value("pmp_plr")
	require.True(t, ok)
	assert.InDelta(t, 0.00808, plr, 1e-12)
	for _, p := range domain.AllParameters {
		_, ok := out.Rows[0].Value(p.PLRColumn())
		assert.True(t, ok, p)
	}
}

func TestApplyDegradation_ReportsRow(t *testing.T) {
	nameplate := domain.Nameplate{domain.ParamPmp: 100}
	table := testutil.Table(
		testutil.Row("A", 1.0, 90),
		testutil.Row("B", 1.0, 120),
	)
	table.Rows[0].SetMappedIntensity(1.0)
	table.Rows[1].SetMappedIntensity(1.0)

	_, err := ApplyDegradation(table, nameplate, []domain.Parameter{domain.ParamPmp}, 10, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serial B")

	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "pmp", de.Parameter)
	assert.InDelta(t, 1.2, de.Value, 1e-12)
}

func TestApplyDegradation_OnlySelectedRows(t *testing.T) {
	// Vmp and Voc stay near their 1-sun values at low light, so the
	// fraction at 0.4 suns is far above 1 and must not be computed.
	nameplate := domain.Nameplate{
		domain.ParamPmp: 175, domain.ParamImp: 4.95, domain.ParamVmp: 35.4, domain.ParamVoc: 44.6, domain.ParamIsc: 5.43,
	}
	table := testutil.Table(
		testutil.Row("A", 0.41, 56),
		testutil.Row("A", 0.99, 140),
	)
	table.Rows[0].SetMappedIntensity(0.4)
	table.Rows[1].SetMappedIntensity(1.0)

	_, err := ApplyDegradation(table, nameplate, domain.AllParameters, 19, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDomain))

	out, err := ApplyDegradation(table, nameplate, domain.AllParameters, 19, NearSun(1.0, 0.05))
	require.NoError(t, err)
	for _, p := range domain.AllParameters {
		_, ok := out.Rows[0].Value(p.PLRColumn())
		assert.False(t, ok, p)
		_, ok = out.Rows[1].Value(p.PLRColumn())
		assert.True(t, ok, p)
	}
}

func TestApplyDegradation_RequiresMappedIntensity(t *testing.T) {
	table := testutil.Table(testutil.Row("A", 1.0, 150))

	_, err := ApplyDegradation(table, domain.Nameplate{domain.ParamPmp: 175}, []domain.Parameter{domain.ParamPmp}, 19, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestEstimateDegradedValue(t *testing.T) {
	got, err := EstimateDegradedValue(0.01, 1, 100)
	require.NoError(t, err)
	assert.InDelta(t, 99, got, 1e-9)

	got, err = EstimateDegradedValue(0.005, 0, 175)
	require.NoError(t, err)
	assert.InDelta(t, 175, got, 1e-12)

	// inverse of the unrounded loss rate
	rate := 1 - math.Pow(150.0/175.0, 1.0/19)
	got, err = EstimateDegradedValue(rate, 19, 175)
	require.NoError(t, err)
	assert.InDelta(t, 150, got, 1e-9)
}

func TestEstimateDegradedValue_DomainErrors(t *testing.T) {
	tests := []struct {
		name                   string
		rate, years, nameplate float64
	}{
		{"negative rate", -0.01, 19, 175},
		{"total loss", 1, 19, 175},
		{"negative years", 0.01, -1, 175},
		{"zero nameplate", 0.01, 19, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EstimateDegradedValue(tt.rate, tt.years, tt.nameplate)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrDomain))
		})
	}
}
