package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"log/slog"

	"github.com/spf13/cobra"

	"chapterize/internal/config"
	"chapterize/internal/logging"
	"chapterize/internal/pipeline"
)

func runSplit(cmd *cobra.Command, opts *rootOptions, input string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	result, err := pipeline.New(cfg, logger, nil).Run(ctx, pipeline.Request{
		Input:        input,
		ChaptersFile: opts.chaptersFile,
	})
	if err != nil {
		return err
	}

	renderResult(cmd.OutOrStdout(), result, opts.noColor)
	return nil
}

// newLogger builds the console logger. When a log file is configured, a JSON
// handler on that file is teed in so the file stays machine-readable whatever
// the console format is.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, err
	}
	if cfg.Logging.File == "" {
		return logger, nil
	}
	fileLogger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      "json",
		OutputPaths: []string{cfg.Logging.File},
	})
	if err != nil {
		return nil, err
	}
	return logging.TeeLogger(logger, fileLogger.Handler()), nil
}

func renderResult(out io.Writer, result pipeline.Result, noColor bool) {
	exported := result.Summary.Exported
	if len(exported) > 0 {
		fmt.Fprintln(out)
		if noColor || !shouldColorize(out) {
			for _, line := range chapterLines(exported) {
				fmt.Fprintln(out, line)
			}
		} else {
			fmt.Fprintln(out, chapterTable(exported))
		}
	}

	method := result.Outcome.Method
	if result.Outcome.FellBack {
		method += " fallback"
	}
	switch {
	case result.Stopped:
		fmt.Fprintf(out, "\nStopped after %d of %d chapters\n",
			len(exported), len(result.Outcome.Chapters))
	default:
		fmt.Fprintf(out, "\nExported %d chapters using %s detection\n",
			len(exported), method)
	}
	if result.Summary.SidecarPath != "" {
		fmt.Fprintf(out, "Chapter metadata: %s\n", result.Summary.SidecarPath)
	}
}
