package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"pvflash/internal/engine"
	"pvflash/pkg/contracts/domain"
)

// IVFilename builds a flash-tester IV filename with a basename comment, e.g.
// IVT20190401-Mission_MSE175-20190401_103015_408106229_initial_3.mfr
func IVFilename(serial string, n int) string {
	return fmt.Sprintf("IVT20190401-Mission_MSE175-20190401_103015_%s_initial_%d.mfr", serial, n)
}

// Row builds a ParameterRow whose other parameters are derived from pmp
func Row(serial string, intensity, pmp float64) domain.ParameterRow {
	return domain.ParameterRow{
		File:      IVFilename(serial, 1),
		SunLevel:  intensity,
		Serial:    serial,
		Intensity: intensity,
		Params:    domain.ParameterSet{Pmp: pmp, Imp: pmp / 30, Vmp: 30, Voc: 36, Isc: pmp / 27},
	}
}

// Table builds an indexed ParameterTable from rows
func Table(rows ...domain.ParameterRow) *domain.ParameterTable {
	return domain.NewParameterTable(rows)
}

// ModuleResponse is the engine output for one module file: Pmp at 1 sun,
// scaled linearly with intensity, at each realized intensity.
type ModuleResponse struct {
	Pmp         float64
	Intensities []float64
}

// FakeEngine answers engine requests from canned per-file responses and
// records every request it sees.
type FakeEngine struct {
	mu        sync.Mutex
	responses map[string]ModuleResponse
	requests  []engine.Request
	Err       error
}

// NewFakeEngine creates an engine keyed by file base name
func NewFakeEngine(responses map[string]ModuleResponse) *FakeEngine {
	return &FakeEngine{responses: responses}
}

// Analyze implements engine.Analyzer
func (f *FakeEngine) Analyze(_ context.Context, req engine.Request) (*engine.Result, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	resp, ok := f.responses[filepath.Base(req.FilePath)]
	if !ok {
		return nil, fmt.Errorf("no canned response for %s", req.FilePath)
	}

	var c engine.CorrectedData
	for _, s := range resp.Intensities {
		c.IntensityArray = append(c.IntensityArray, s)
		c.IntensityPmp = append(c.IntensityPmp, resp.Pmp*s)
		c.IntensityImp = append(c.IntensityImp, resp.Pmp*s/30)
		c.IntensityVmp = append(c.IntensityVmp, 30)
		c.IntensityVoc = append(c.IntensityVoc, 36)
		c.IntensityIsc = append(c.IntensityIsc, resp.Pmp*s/27)
	}
	return &engine.Result{Corrected: c}, nil
}

// Requests returns the requests seen so far
func (f *FakeEngine) Requests() []engine.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]engine.Request, len(f.requests))
	copy(out, f.requests)
	return out
}
