package dataprocessing

import (
	"fmt"
	"path/filepath"
	"strings"

	apperrors "pvflash/internal/errors"
)

// SerialFile returns the path in dir of the first file whose name contains
// serial.
func SerialFile(serial string, files []string, dir string) (string, error) {
	for _, f := range files {
		if strings.Contains(f, serial) {
			return filepath.Join(dir, f), nil
		}
	}
	return "", apperrors.NewNotFoundError(fmt.Sprintf("measurement file for serial %s", serial))
}
