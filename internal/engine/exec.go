package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	apperrors "pvflash/internal/errors"
)

// ExecAnalyzer runs the engine as an external command that prints a JSON
// Result on stdout.
type ExecAnalyzer struct {
	command string
	args    []string
	logger  *slog.Logger
}

// NewExecAnalyzer creates an analyzer that invokes command with the fixed
// args followed by the per-call flags.
func NewExecAnalyzer(command string, args []string, logger *slog.Logger) *ExecAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecAnalyzer{
		command: command,
		args:    append([]string(nil), args...),
		logger:  logger.With(slog.String("component", "exec_analyzer")),
	}
}

// Analyze implements Analyzer
func (a *ExecAnalyzer) Analyze(ctx context.Context, req Request) (*Result, error) {
	if a.command == "" {
		return nil, apperrors.NewConfigError("engine command is not configured", nil)
	}

	args := append(append([]string(nil), a.args...), requestFlags(req)...)
	cmd := exec.CommandContext(ctx, a.command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	a.logger.DebugContext(ctx, "invoking engine",
		slog.String("command", a.command),
		slog.String("args", strings.Join(args, " ")))

	if err := cmd.Run(); err != nil {
		return nil, apperrors.NewEngineError(fmt.Sprintf("analyze %s", req.FilePath), err).
			WithContext("stderr", strings.TrimSpace(stderr.String()))
	}

	res, err := decodeResult(&stdout)
	if err != nil {
		return nil, apperrors.NewEngineError(fmt.Sprintf("decode engine output for %s", req.FilePath), err)
	}
	return res, nil
}

func requestFlags(req Request) []string {
	flags := []string{
		"--file", req.FilePath,
		"--rsh-v-cell", formatFloat(req.RshVCell),
		"--step", strconv.Itoa(req.Step),
	}
	if req.TargetSun != nil {
		flags = append(flags, "--sun", formatFloat(*req.TargetSun))
	}
	if req.ReferenceConstant != 0 {
		flags = append(flags, "--reference-constant", formatFloat(req.ReferenceConstant))
	}
	if req.VoltageTempCoefficient != 0 {
		flags = append(flags, "--voltage-temp-coefficient", formatFloat(req.VoltageTempCoefficient))
	}
	return flags
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func decodeResult(r io.Reader) (*Result, error) {
	var res Result
	dec := json.NewDecoder(r)
	if err := dec.Decode(&res); err != nil {
		return nil, err
	}
	if len(res.Corrected.IntensityArray) == 0 {
		return nil, fmt.Errorf("corrected_data.intensity_array is empty")
	}
	return &res, nil
}
