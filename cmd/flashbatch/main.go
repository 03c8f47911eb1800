// Command flashbatch runs the flash-test analysis pipeline over one batch of
// IV measurement files and prints a summary table per sun level.
//
// Usage:
//
//	flashbatch -config occc.yaml file ...
//
// Files are named relative to the batch data directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/schollz/progressbar/v3"

	"pvflash/internal/config"
	"pvflash/internal/engine"
	"pvflash/internal/infrastructure"
	"pvflash/internal/operations"
)

func main() {
	configPath := flag.String("config", "", "path to the batch YAML file (defaults to pvflash.yaml or configs/pvflash.yaml)")
	showProgress := flag.Bool("progress", true, "show a progress bar on stderr")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: flashbatch [-config path] file ...")
		os.Exit(2)
	}

	if err := run(*configPath, *showProgress, flag.Args(), os.Stdout); err != nil {
		slog.Error("batch failed", slog.String("error", err.Error()))
		infrastructure.CloseLogFile()
		os.Exit(1)
	}
	infrastructure.CloseLogFile()
}

func run(configPath string, showProgress bool, files []string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runID := infrastructure.GenerateTraceID()
	ctx = infrastructure.WithTraceID(ctx, runID)

	telemetry, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	opts := operations.PipelineOptions{Logger: logger, Telemetry: telemetry}
	if showProgress {
		bar := progressbar.Default(int64(len(files)*len(cfg.Batch.SunLevels)), "analyzing")
		defer bar.Finish()
		opts.Progress = bar
	}

	analyzer := engine.NewExecAnalyzer(cfg.Engine.Command, cfg.Engine.Args, logger)
	pipeline, err := operations.NewBatchPipeline(*cfg, analyzer, opts)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "batch started",
		slog.String("identifier", cfg.Batch.Identifier),
		slog.String("data_dir", cfg.Batch.DataDir),
		slog.Int("files", len(files)))

	result, err := pipeline.Run(ctx, runID, files)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "batch finished",
		slog.String("identifier", result.Identifier),
		slog.Int("rows", result.Table.Len()))

	return printResult(out, result)
}

func printResult(out io.Writer, result *operations.BatchResult) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(w, "batch %s (run %s)\n", result.Identifier, result.ID)
	for _, level := range result.Levels {
		fmt.Fprintf(w, "\n%g suns\t%d rows\t\n", level.Sun, level.Table.Len())
		if level.Control != nil {
			fmt.Fprintf(w, "control %s\t%d rows\t\n", level.Control.Serial, level.Control.Rows)
		}

		fmt.Fprint(w, "\t")
		for _, c := range level.Summary.Columns {
			fmt.Fprintf(w, "%s\t", c)
		}
		fmt.Fprintln(w)

		for _, row := range level.Summary.Rows {
			fmt.Fprintf(w, "%s\t", row.Label)
			for _, v := range row.Values {
				fmt.Fprintf(w, "%s\t", strconv.FormatFloat(v, 'f', -1, 64))
			}
			fmt.Fprintln(w)
		}
	}
	return w.Flush()
}
