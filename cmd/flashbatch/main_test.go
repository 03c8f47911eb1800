package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvflash/internal/operations"
	"pvflash/pkg/contracts/domain"
)

func TestPrintResult(t *testing.T) {
	result := &operations.BatchResult{
		ID:         "run-1",
		Identifier: "OCCC",
		Levels: []operations.LevelResult{{
			Sun:     1,
			Table:   domain.NewParameterTable(make([]domain.ParameterRow, 3)),
			Control: &domain.ControlAggregate{Serial: "408100001", Rows: 1},
			Summary: &domain.SummaryTable{
				Columns: []string{"pmp", "pmp_plr"},
				Rows: []domain.SummaryRow{
					{Label: "mean", Values: []float64{161.6, 0.004}},
					{Label: "median", Values: []float64{161.6, 0.0035}},
				},
			},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, result))

	out := buf.String()
	assert.Contains(t, out, "batch OCCC (run run-1)")
	assert.Contains(t, out, "1 suns")
	assert.Contains(t, out, "control 408100001")
	assert.Contains(t, out, "pmp_plr")
	assert.Contains(t, out, "161.6")
	assert.Contains(t, out, "0.0035")
}

func TestRun_MissingConfigFile(t *testing.T) {
	var buf bytes.Buffer
	err := run(t.TempDir()+"/absent.yaml", false, []string{"a.mfr"}, &buf)
	require.Error(t, err)
	assert.Empty(t, buf.String())
}
