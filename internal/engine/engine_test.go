package engine

import (
	"context"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pvflash/internal/errors"
	"pvflash/pkg/contracts/domain"
)

func sampleCorrected() CorrectedData {
	return CorrectedData{
		IntensityArray: []float64{0.39, 0.61, 0.8, 1.01},
		IntensityPmp:   []float64{60, 95, 128, 160},
		IntensityImp:   []float64{1.9, 2.9, 3.9, 4.8},
		IntensityVmp:   []float64{31.5, 32.7, 33.1, 33.3},
		IntensityVoc:   []float64{41.9, 42.8, 43.4, 43.9},
		IntensityIsc:   []float64{2.1, 3.3, 4.3, 5.4},
	}
}

func TestCorrectedData_Nearest(t *testing.T) {
	tests := []struct {
		name          string
		target        float64
		wantIntensity float64
		wantPmp       float64
	}{
		{"exact-ish low", 0.4, 0.39, 60},
		{"middle", 0.6, 0.61, 95},
		{"one sun", 1, 1.01, 160},
		{"above range", 2, 1.01, 160},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intensity, params, err := sampleCorrected().Nearest(tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIntensity, intensity)
			assert.Equal(t, tt.wantPmp, params.Pmp)
		})
	}
}

func TestCorrectedData_Nearest_TieTakesFirst(t *testing.T) {
	c := CorrectedData{
		IntensityArray: []float64{0.5, 1.5},
		IntensityPmp:   []float64{1, 2},
		IntensityImp:   []float64{1, 2},
		IntensityVmp:   []float64{1, 2},
		IntensityVoc:   []float64{1, 2},
		IntensityIsc:   []float64{1, 2},
	}
	intensity, params, err := c.Nearest(1.0)
	require.NoError(t, err)
	assert.Equal(t, 0.5, intensity)
	assert.Equal(t, domain.ParameterSet{Pmp: 1, Imp: 1, Vmp: 1, Voc: 1, Isc: 1}, params)
}

func TestCorrectedData_Nearest_Errors(t *testing.T) {
	_, _, err := CorrectedData{}.Nearest(1)
	assert.Error(t, err)

	c := sampleCorrected()
	c.IntensityVoc = c.IntensityVoc[:2]
	_, _, err = c.Nearest(1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "voc")
}

func TestRequestFlags(t *testing.T) {
	flags := requestFlags(Request{FilePath: "occc/a.mfr", RshVCell: 0.45, Step: 1, TargetSun: Sun(0.8)})
	assert.Equal(t, []string{"--file", "occc/a.mfr", "--rsh-v-cell", "0.45", "--step", "1", "--sun", "0.8"}, flags)

	flags = requestFlags(Request{FilePath: "a.mfr", RshVCell: 0.45, Step: 2, ReferenceConstant: 1.2, VoltageTempCoefficient: -0.0035})
	assert.NotContains(t, flags, "--sun")
	assert.Contains(t, flags, "--reference-constant")
	assert.Contains(t, flags, "-0.0035")
}

func TestDecodeResult(t *testing.T) {
	doc := `{"corrected_data":{"intensity_array":[1.0],"intensity_pmp":[150],"intensity_imp":[4.5],
		"intensity_vmp":[33],"intensity_voc":[43],"intensity_isc":[5.1]},"metadata":{"Temperature":25.1}}`

	res, err := decodeResult(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []float64{150}, res.Corrected.IntensityPmp)
	assert.Equal(t, 25.1, res.Metadata["Temperature"])

	_, err = decodeResult(strings.NewReader(`{"corrected_data":{}}`))
	assert.Error(t, err)

	_, err = decodeResult(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestExecAnalyzer_NoCommand(t *testing.T) {
	a := NewExecAnalyzer("", nil, nil)
	_, err := a.Analyze(context.Background(), Request{FilePath: "a.mfr"})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestExecAnalyzer_Analyze(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	script := `echo '{"corrected_data":{"intensity_array":[0.98],"intensity_pmp":[149],"intensity_imp":[4.4],"intensity_vmp":[33.8],"intensity_voc":[43.1],"intensity_isc":[5.2]}}'`
	a := NewExecAnalyzer("sh", []string{"-c", script, "engine"}, nil)

	res, err := a.Analyze(context.Background(), Request{FilePath: "a.mfr", RshVCell: 0.45, Step: 1, TargetSun: Sun(1)})
	require.NoError(t, err)

	intensity, params, err := res.Corrected.Nearest(1)
	require.NoError(t, err)
	assert.Equal(t, 0.98, intensity)
	assert.Equal(t, 149.0, params.Pmp)
}

func TestExecAnalyzer_CommandFails(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	a := NewExecAnalyzer("sh", []string{"-c", "echo boom >&2; exit 3", "engine"}, nil)
	_, err := a.Analyze(context.Background(), Request{FilePath: "a.mfr"})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeEngine))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "boom", appErr.Context["stderr"])
}

func TestAnalyzerFunc(t *testing.T) {
	var got Request
	f := AnalyzerFunc(func(_ context.Context, req Request) (*Result, error) {
		got = req
		return &Result{Corrected: sampleCorrected()}, nil
	})

	_, err := f.Analyze(context.Background(), Request{FilePath: "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", got.FilePath)
}
