// Package engine is the boundary to the external IV analysis engine, which
// performs curve fitting and temperature/irradiance correction of flash-test
// files. The core pipeline only consumes the scalar parameters it returns.
package engine

import (
	"context"
	"fmt"
	"math"

	"pvflash/pkg/contracts/domain"
)

// Request describes one engine call
type Request struct {
	FilePath               string
	ReferenceConstant      float64 // 0 lets the engine use its default
	VoltageTempCoefficient float64 // 0 lets the engine use its default
	RshVCell               float64
	Step                   int

	// TargetSun selects the nearest realized intensity; nil requests every
	// intensity in the file.
	TargetSun *float64
}

// Sun returns a TargetSun value for s
func Sun(s float64) *float64 {
	return &s
}

// CorrectedData is the engine's corrected output for one file
type CorrectedData struct {
	IntensityArray         []float64      `json:"intensity_array"`
	IntensityPmp           []float64      `json:"intensity_pmp"`
	IntensityImp           []float64      `json:"intensity_imp"`
	IntensityVmp           []float64      `json:"intensity_vmp"`
	IntensityVoc           []float64      `json:"intensity_voc"`
	IntensityIsc           []float64      `json:"intensity_isc"`
	IVCurveIntensity       [][][2]float64 `json:"iv_curve_intensity,omitempty"`
	PseudoIVCurveIntensity [][][2]float64 `json:"pseudo_iv_curve_intensity,omitempty"`
}

// Result is the engine output: corrected data plus the raw file metadata
type Result struct {
	Corrected CorrectedData          `json:"corrected_data"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// Analyzer runs the IV analysis engine. Each call is independent; nothing is
// cached between calls with identical arguments.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (*Result, error)
}

// AnalyzerFunc adapts a function to the Analyzer interface
type AnalyzerFunc func(ctx context.Context, req Request) (*Result, error)

// Analyze implements Analyzer
func (f AnalyzerFunc) Analyze(ctx context.Context, req Request) (*Result, error) {
	return f(ctx, req)
}

// Nearest returns the realized intensity and parameters at the index whose
// intensity is closest to target. The first index wins a tie.
func (c CorrectedData) Nearest(target float64) (float64, domain.ParameterSet, error) {
	n := len(c.IntensityArray)
	if n == 0 {
		return 0, domain.ParameterSet{}, fmt.Errorf("engine returned no intensities")
	}
	for name, arr := range map[string][]float64{
		"pmp": c.IntensityPmp,
		"imp": c.IntensityImp,
		"vmp": c.IntensityVmp,
		"voc": c.IntensityVoc,
		"isc": c.IntensityIsc,
	} {
		if len(arr) != n {
			return 0, domain.ParameterSet{}, fmt.Errorf("engine returned %d %s values for %d intensities", len(arr), name, n)
		}
	}

	best := 0
	for i := 1; i < n; i++ {
		if math.Abs(c.IntensityArray[i]-target) < math.Abs(c.IntensityArray[best]-target) {
			best = i
		}
	}

	return c.IntensityArray[best], domain.ParameterSet{
		Pmp: c.IntensityPmp[best],
		Imp: c.IntensityImp[best],
		Vmp: c.IntensityVmp[best],
		Voc: c.IntensityVoc[best],
		Isc: c.IntensityIsc[best],
	}, nil
}
