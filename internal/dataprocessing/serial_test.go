package dataprocessing

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pvflash/internal/errors"
	"pvflash/internal/shared/testutil"
)

func TestSerialFile(t *testing.T) {
	files := []string{
		testutil.IVFilename("408106229", 1),
		testutil.IVFilename("408203627", 1),
		testutil.IVFilename("408203627", 2),
	}

	got, err := SerialFile("408203627", files, "occc")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("occc", files[1]), got)

	_, err = SerialFile("408999999", files, "occc")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}
