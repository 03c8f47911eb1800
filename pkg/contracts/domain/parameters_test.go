package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterRow_MappedIntensityUnsetUntilMapped(t *testing.T) {
	row := ParameterRow{File: "a.mfr", Intensity: 0.98}

	_, ok := row.Value(ColumnMappedIntensity)
	assert.False(t, ok)

	table := NewParameterTable([]ParameterRow{row})
	_, err := table.Column(ColumnMappedIntensity)
	require.Error(t, err)

	row.SetMappedIntensity(0)
	v, ok := row.Value(ColumnMappedIntensity)
	require.True(t, ok)
	assert.Zero(t, v)
}

func TestParameterTable_CloneCopiesMappedIntensity(t *testing.T) {
	row := ParameterRow{File: "a.mfr"}
	row.SetMappedIntensity(1.0)
	table := NewParameterTable([]ParameterRow{row})

	clone := table.Clone()
	*clone.Rows[0].MappedIntensity = 0.6

	v, ok := table.Rows[0].Value(ColumnMappedIntensity)
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
}
