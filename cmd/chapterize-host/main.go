// Command chapterize-host is the automation adapter for host applications
// that embed chapterize. It takes plain flags, relays progress as simple
// bracketed lines on stderr, and prints a single machine-readable
// CHAPTER_COUNT line on stdout when the run succeeds.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"log/slog"

	"chapterize/internal/config"
	"chapterize/internal/detect"
	"chapterize/internal/pipeline"
	"chapterize/internal/progress"
)

// pollInterval matches the cadence host UIs historically polled the worker
// queue at.
const pollInterval = 100 * time.Millisecond

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("chapterize-host", flag.ContinueOnError)
	fs.SetOutput(stderr)
	input := fs.String("input", "", "Audiobook file to split (required)")
	output := fs.String("output", "chapters", "Directory for exported chapters")
	method := fs.String("method", "metadata", "Detection method: metadata, silence, speech, or json")
	bitrate := fs.String("bitrate", "96k", "Audio bitrate for re-encoded chapters")
	format := fs.String("format", "mp3", "Output format")
	chaptersFile := fs.String("json", "", "Chapter timing file (implies -method json)")
	mono := fs.Bool("mono", false, "Downmix re-encoded chapters to mono")
	ffmpeg := fs.String("ffmpeg", "", "Path to the ffmpeg binary")
	ffprobe := fs.String("ffprobe", "", "Path to the ffprobe binary")
	transcriber := fs.String("transcriber", "", "Path to the speech-to-text binary")
	configPath := fs.String("config", "", "Configuration file path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		fs.Usage()
		return errors.New("-input is required")
	}

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	// The host contract is flag-driven: every run states its own output and
	// detection settings, the config file only supplies tool paths and
	// tuning.
	cfg.Output.Dir = *output
	cfg.Output.Format = *format
	cfg.Output.Bitrate = *bitrate
	cfg.Output.Mono = *mono
	cfg.Detection.Method = *method
	if *chaptersFile != "" {
		cfg.Detection.Method = detect.MethodJSON
	}
	if *ffmpeg != "" {
		cfg.Tools.FFmpeg = *ffmpeg
	}
	if *ffprobe != "" {
		cfg.Tools.FFprobe = *ffprobe
	}
	if *transcriber != "" {
		cfg.Tools.Transcriber = *transcriber
	}
	if err := cfg.Normalize(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Pipeline warnings ride the bus with the typed updates, so the relay
	// below is the only writer and lines come out in publish order.
	bus := progress.NewBus()
	logger := slog.New(progress.NewHandler(bus, slog.LevelWarn))

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			relayUpdates(stderr, bus.Drain())
			select {
			case <-done:
				relayUpdates(stderr, bus.Drain())
				return
			case <-ticker.C:
			}
		}
	}()

	result, runErr := pipeline.New(cfg, logger, bus).Run(ctx, pipeline.Request{
		Input:        *input,
		ChaptersFile: *chaptersFile,
	})
	close(done)
	wg.Wait()
	bus.Close()
	if runErr != nil {
		return runErr
	}

	fmt.Fprintf(stdout, "CHAPTER_COUNT:%d\n", len(result.Summary.Exported))
	return nil
}

// relayUpdates renders bus updates as one bracketed line each.
func relayUpdates(w io.Writer, updates []progress.Update) {
	for _, update := range updates {
		stage := update.Stage
		if stage == "" {
			stage = "run"
		}
		switch update.Kind {
		case progress.KindChapter:
			fmt.Fprintf(w, "[%s] %d/%d %s\n", stage, update.Index, update.Total, update.Message)
		default:
			fmt.Fprintf(w, "[%s] %s\n", stage, update.Message)
		}
	}
}
