package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlashErrors_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"parse", &ParseError{Type: "el", Filename: "x.tif", ExpectedTokens: 9, ActualTokens: 4}, ErrParse},
		{"missing control", &MissingControlDataError{Sun: 1, ControlSerial: "c1"}, ErrMissingControlData},
		{"domain", &DomainError{Operation: "plr", Parameter: "pmp", Value: -1, Reason: "ratio must be positive"}, ErrDomain},
		{"unsupported statistic", &UnsupportedStatisticError{Kind: "mode"}, ErrUnsupportedStatistic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("batch: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.target))
			assert.False(t, errors.Is(wrapped, errors.New("other")))
		})
	}
}

func TestParseError_Message(t *testing.T) {
	err := &ParseError{Type: "ir", Filename: "a_b.tif", ExpectedTokens: 8, ActualTokens: 2}
	assert.Equal(t, `parse ir filename "a_b.tif": expected 8 tokens, got 2`, err.Error())

	err = &ParseError{Type: "iv", Filename: "a.txt", Reason: "first token has no make"}
	assert.Contains(t, err.Error(), "first token has no make")
}

func TestMissingControlDataError_Message(t *testing.T) {
	err := &MissingControlDataError{Sun: 0.4, ControlSerial: "408106229"}
	assert.Contains(t, err.Error(), "408106229")
	assert.Contains(t, err.Error(), "0.4")
}

func TestUnsupportedStatisticError_Message(t *testing.T) {
	err := &UnsupportedStatisticError{Kind: "mode"}
	assert.Contains(t, err.Error(), `"mode"`)
}
