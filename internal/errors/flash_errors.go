package errors

import (
	"errors"
	"fmt"
)

// Sentinels matched by the concrete pipeline errors through Is
var (
	ErrParse                = errors.New("filename parse failed")
	ErrMissingControlData   = errors.New("missing control data")
	ErrDomain               = errors.New("value outside domain")
	ErrUnsupportedStatistic = errors.New("unsupported statistic")
)

// ParseError reports a filename that does not fit its measurement-type grammar
type ParseError struct {
	Type           string
	Filename       string
	ExpectedTokens int
	ActualTokens   int
	Reason         string
}

func (e *ParseError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("parse %s filename %q: %s", e.Type, e.Filename, e.Reason)
	}
	return fmt.Sprintf("parse %s filename %q: expected %d tokens, got %d",
		e.Type, e.Filename, e.ExpectedTokens, e.ActualTokens)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// MissingControlDataError is returned when no control-module row exists at
// the requested intensity
type MissingControlDataError struct {
	Sun           float64
	ControlSerial string
}

func (e *MissingControlDataError) Error() string {
	return fmt.Sprintf("no rows for control module %q within margin of %.3g suns",
		e.ControlSerial, e.Sun)
}

func (e *MissingControlDataError) Is(target error) bool { return target == ErrMissingControlData }

// DomainError reports a non-positive denominator or an out-of-range ratio
type DomainError struct {
	Operation string
	Parameter string
	Value     float64
	Reason    string
}

func (e *DomainError) Error() string {
	if e.Parameter == "" {
		return fmt.Sprintf("%s: %s (value %g)", e.Operation, e.Reason, e.Value)
	}
	return fmt.Sprintf("%s %s: %s (value %g)", e.Operation, e.Parameter, e.Reason, e.Value)
}

func (e *DomainError) Is(target error) bool { return target == ErrDomain }

// UnsupportedStatisticError is returned for an unknown statistic kind
type UnsupportedStatisticError struct {
	Kind string
}

func (e *UnsupportedStatisticError) Error() string {
	return fmt.Sprintf("unsupported statistic %q (supported: mean, median)", e.Kind)
}

func (e *UnsupportedStatisticError) Is(target error) bool { return target == ErrUnsupportedStatistic }
