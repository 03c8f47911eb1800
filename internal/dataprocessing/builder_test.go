package dataprocessing

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pvflash/internal/errors"
	"pvflash/internal/metadata"
	"pvflash/internal/shared/testutil"
)

type countingProgress struct{ n atomic.Int64 }

func (p *countingProgress) Add(n int) error {
	p.n.Add(int64(n))
	return nil
}

func newTestBuilder(t *testing.T, eng *testutil.FakeEngine, cfg BuilderConfig) *ParameterTableBuilder {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	parser := metadata.NewParser(metadata.Options{HasBasenameComment: true}, logger)
	return NewParameterTableBuilder(eng, parser, cfg, logger)
}

func TestParameterTableBuilder_Build(t *testing.T) {
	files := []string{
		testutil.IVFilename("408106229", 1),
		testutil.IVFilename("408203627", 1),
		testutil.IVFilename("408181737", 1),
	}
	eng := testutil.NewFakeEngine(map[string]testutil.ModuleResponse{
		files[0]: {Pmp: 150, Intensities: []float64{0.41, 0.79, 1.01}},
		files[1]: {Pmp: 160, Intensities: []float64{0.39, 0.81, 0.99}},
		files[2]: {Pmp: 90, Intensities: []float64{0.4, 0.8, 1.0}},
	})
	progress := &countingProgress{}

	b := newTestBuilder(t, eng, BuilderConfig{
		Dir:      "occc",
		Workers:  4,
		RshVCell: 0.45,
		Step:     1,
		Progress: progress,
	})

	table, err := b.Build(context.Background(), files, []float64{0.8, 1.0})
	require.NoError(t, err)
	require.Equal(t, 6, table.Len())

	want := []struct {
		serial    string
		sun       float64
		intensity float64
		ratedPmp  float64
	}{
		{"408106229", 0.8, 0.79, 150},
		{"408106229", 1.0, 1.01, 150},
		{"408203627", 0.8, 0.81, 160},
		{"408203627", 1.0, 0.99, 160},
		{"408181737", 0.8, 0.8, 90},
		{"408181737", 1.0, 1.0, 90},
	}
	for i, w := range want {
		r := table.Rows[i]
		assert.Equal(t, i, r.Index)
		assert.Equal(t, w.serial, r.Serial)
		assert.Equal(t, w.sun, r.SunLevel)
		assert.Equal(t, w.intensity, r.Intensity)
		assert.Equal(t, w.ratedPmp*w.intensity, r.Params.Pmp)
		assert.Equal(t, "20190401", r.Date)
		assert.Equal(t, "103015", r.Time)
	}

	assert.Equal(t, int64(6), progress.n.Load())

	reqs := eng.Requests()
	require.Len(t, reqs, 6)
	for _, req := range reqs {
		assert.Equal(t, "occc", filepath.Dir(req.FilePath))
		assert.Equal(t, 0.45, req.RshVCell)
		assert.Equal(t, 1, req.Step)
		require.NotNil(t, req.TargetSun)
	}
}

func TestParameterTableBuilder_ParseErrorBeforeEngine(t *testing.T) {
	eng := testutil.NewFakeEngine(nil)
	b := newTestBuilder(t, eng, BuilderConfig{Dir: "occc"})

	_, err := b.Build(context.Background(), []string{"not_a_flash_file.mfr"}, []float64{1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrParse))
	assert.Empty(t, eng.Requests())
}

func TestParameterTableBuilder_EngineError(t *testing.T) {
	eng := testutil.NewFakeEngine(nil)
	eng.Err = apperrors.NewEngineError("engine exited with status 3", nil)
	b := newTestBuilder(t, eng, BuilderConfig{Dir: "occc", Workers: 2})

	_, err := b.Build(context.Background(), []string{testutil.IVFilename("408106229", 1)}, []float64{1})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeEngine))
	assert.Contains(t, err.Error(), "at 1 suns")
}

func TestParameterTableBuilder_NoSunLevels(t *testing.T) {
	b := newTestBuilder(t, testutil.NewFakeEngine(nil), BuilderConfig{})
	_, err := b.Build(context.Background(), []string{testutil.IVFilename("408106229", 1)}, nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestParameterTableBuilder_ResolvePath(t *testing.T) {
	file := "IVT20190401-Mission_MSE175-20190401_103015_408106229_initial_1.mfr"

	plain := newTestBuilder(t, testutil.NewFakeEngine(nil), BuilderConfig{Dir: "occc"})
	assert.Equal(t, filepath.Join("occc", file), plain.ResolvePath(file))

	rewrite := newTestBuilder(t, testutil.NewFakeEngine(nil), BuilderConfig{Dir: "occc", InitialBasenameUnderscore: true})
	assert.Equal(t,
		filepath.Join("occc", "IVT20190401_Mission_MSE175-20190401_103015_408106229_initial_1.mfr"),
		rewrite.ResolvePath(file))
}
