package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MeasurementType identifies the instrument that produced a measurement file
type MeasurementType string

const (
	MeasurementIV      MeasurementType = "iv"
	MeasurementEL      MeasurementType = "el"
	MeasurementIR      MeasurementType = "ir"
	MeasurementDarkIV  MeasurementType = "dark_iv"
	MeasurementUVF     MeasurementType = "uvf"
	MeasurementV10     MeasurementType = "v10"
	MeasurementScanner MeasurementType = "scanner"
)

// MeasurementTypes lists every supported measurement type in a stable order
var MeasurementTypes = []MeasurementType{
	MeasurementIV,
	MeasurementEL,
	MeasurementIR,
	MeasurementDarkIV,
	MeasurementUVF,
	MeasurementV10,
	MeasurementScanner,
}

// ParseMeasurementType converts a tag such as "dark_iv" into a MeasurementType
func ParseMeasurementType(s string) (MeasurementType, error) {
	tag := MeasurementType(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range MeasurementTypes {
		if t == tag {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown measurement type %q", s)
}

// String implements fmt.Stringer
func (t MeasurementType) String() string {
	return string(t)
}

// MeasurementFile is a measurement file path together with its type tag.
// It is created once at batch start and never modified.
type MeasurementFile struct {
	Path string          `json:"path"`
	Type MeasurementType `json:"type"`
}

// NewMeasurementFile creates a measurement file reference
func NewMeasurementFile(path string, t MeasurementType) MeasurementFile {
	return MeasurementFile{Path: path, Type: t}
}

// BaseName returns the final path element
func (f MeasurementFile) BaseName() string {
	return filepath.Base(f.Path)
}
