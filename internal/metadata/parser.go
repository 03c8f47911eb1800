// Package metadata parses the standardized flash-test filenames into typed
// metadata records. Each measurement type has a positional grammar over the
// underscore-delimited tokens of the base name; the token count is validated
// before any field is extracted.
package metadata

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	apperrors "pvflash/internal/errors"
	"pvflash/pkg/contracts/domain"
)

var errNoMake = errors.New("first token has no '-' separated make")

// Options toggles the optional parts of the grammars
type Options struct {
	// HasBasenameComment adds the comment token to non-txt IV filenames
	HasBasenameComment bool
}

// Parser turns filenames into metadata records
type Parser struct {
	opts   Options
	logger *slog.Logger
}

// NewParser creates a filename parser
func NewParser(opts Options, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		opts:   opts,
		logger: logger.With(slog.String("component", "metadata_parser")),
	}
}

// Parse extracts the metadata of filename according to the grammar of mt.
// It returns a *errors.ParseError when the token count does not match.
func (p *Parser) Parse(filename string, mt domain.MeasurementType) (domain.MetadataRecord, error) {
	g, ok := grammars[mt]
	if !ok {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("unsupported measurement type %q", mt))
	}

	t := tokenize(filename)
	want := g.count(t, p.opts)
	if len(t.parts) != want {
		return nil, &apperrors.ParseError{
			Type:           mt.String(),
			Filename:       filename,
			ExpectedTokens: want,
			ActualTokens:   len(t.parts),
		}
	}

	values := make(map[string]string)
	for _, f := range g.fields(t, p.opts) {
		v, err := f.extract(t)
		if err != nil {
			return nil, &apperrors.ParseError{
				Type:           mt.String(),
				Filename:       filename,
				ExpectedTokens: want,
				ActualTokens:   len(t.parts),
				Reason:         fmt.Sprintf("%s: %v", f.name, err),
			}
		}
		values[f.name] = v
	}

	rec := g.assemble(values, p.opts)
	p.logger.Debug("parsed filename metadata",
		slog.String("file", t.name),
		slog.String("type", mt.String()),
		slog.Any("fields", rec.Fields()))
	return rec, nil
}

// ParseFile parses a MeasurementFile with its own type tag
func (p *Parser) ParseFile(f domain.MeasurementFile) (domain.MetadataRecord, error) {
	return p.Parse(f.Path, f.Type)
}

// Serial returns the module serial carried by a record
func Serial(rec domain.MetadataRecord) string {
	return rec.Fields()["serial_number"]
}

func tokenize(filename string) tokens {
	base := filepath.Base(filename)
	return tokens{
		name:  base,
		ext:   strings.TrimPrefix(filepath.Ext(base), "."),
		parts: strings.Split(base, "_"),
	}
}
