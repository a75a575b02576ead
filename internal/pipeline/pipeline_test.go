package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chapterize/internal/detect"
	"chapterize/internal/logging"
	"chapterize/internal/progress"
	"chapterize/internal/services"
	"chapterize/internal/testsupport"
)

const embeddedChapters = `{"chapters": [
  {"id": 0, "start_time": "0.000000", "end_time": "300.000000", "tags": {"title": "Intro"}},
  {"id": 1, "start_time": "300.000000", "end_time": "600.000000", "tags": {"title": "The Road"}}
]}`

const silenceLines = `[silencedetect @ 0x5555] silence_start: 300.75
[silencedetect @ 0x5555] silence_end: 303.5 | silence_duration: 2.75`

func TestPipelineMetadataRun(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithChapters(embeddedChapters))
	input := testsupport.Audiobook(t, testsupport.BaseDir(cfg))

	bus := progress.NewBus()
	p := New(cfg, logging.NewNop(), bus)
	result, err := p.Run(context.Background(), Request{Input: input, Method: "metadata"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Stopped {
		t.Fatal("expected a completed run")
	}
	if result.Duration != 600 {
		t.Fatalf("duration = %v, want 600", result.Duration)
	}
	if result.Outcome.Method != detect.MethodMetadata || result.Outcome.FellBack {
		t.Fatalf("outcome = %+v, want metadata without fallback", result.Outcome)
	}
	if len(result.Summary.Exported) != 2 {
		t.Fatalf("exported %d chapters, want 2", len(result.Summary.Exported))
	}

	for _, name := range []string{"book_01_Intro.mp3", "book_02_The_Road.mp3"} {
		if _, err := os.Stat(filepath.Join(cfg.Output.Dir, name)); err != nil {
			t.Fatalf("missing chapter file %s: %v", name, err)
		}
	}

	raw, err := os.ReadFile(result.Summary.SidecarPath)
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		t.Fatalf("parse sidecar: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("sidecar has %d records, want 2", len(records))
	}

	var sawDone bool
	stages := map[string]bool{}
	for _, update := range bus.Drain() {
		switch update.Kind {
		case progress.KindDone:
			sawDone = true
		case progress.KindError:
			t.Fatalf("unexpected error update: %s", update.Message)
		case progress.KindStage:
			stages[update.Stage] = true
		}
	}
	if !sawDone {
		t.Fatal("expected a done update")
	}
	for _, stage := range []string{"preflight", "probe", "detect", "export"} {
		if !stages[stage] {
			t.Fatalf("missing stage update for %s", stage)
		}
	}
}

func TestPipelineFallsBackToSilence(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSilence(silenceLines))
	input := testsupport.Audiobook(t, testsupport.BaseDir(cfg))

	p := New(cfg, logging.NewNop(), nil)
	result, err := p.Run(context.Background(), Request{Input: input, Method: "metadata"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Outcome.FellBack || result.Outcome.Method != detect.MethodSilence {
		t.Fatalf("outcome = %+v, want silence fallback", result.Outcome)
	}
	if len(result.Outcome.Chapters) != 2 {
		t.Fatalf("detected %d chapters, want 2", len(result.Outcome.Chapters))
	}
	first, second := result.Outcome.Chapters[0], result.Outcome.Chapters[1]
	if first.Start != 0 || first.End != 300.75 {
		t.Fatalf("first chapter = %+v", first)
	}
	if second.Start != 303.5 || second.End != 600 {
		t.Fatalf("second chapter = %+v", second)
	}
	if len(result.Summary.Exported) != 2 {
		t.Fatalf("exported %d chapters, want 2", len(result.Summary.Exported))
	}
}

func TestPipelineSpeechFallsBackWhenTranscriberMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSilence(silenceLines))
	cfg.Tools.Transcriber = filepath.Join(testsupport.BaseDir(cfg), "no-such-transcriber")
	input := testsupport.Audiobook(t, testsupport.BaseDir(cfg))

	p := New(cfg, logging.NewNop(), nil)
	result, err := p.Run(context.Background(), Request{Input: input, Method: "speech"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Outcome.FellBack || result.Outcome.Method != detect.MethodSilence {
		t.Fatalf("outcome = %+v, want silence fallback", result.Outcome)
	}
	if len(result.Summary.Exported) != 2 {
		t.Fatalf("exported %d chapters, want 2", len(result.Summary.Exported))
	}
}

func TestPipelinePreflightFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	bus := progress.NewBus()
	p := New(cfg, logging.NewNop(), bus)
	_, err := p.Run(context.Background(), Request{
		Input:  filepath.Join(testsupport.BaseDir(cfg), "missing.m4b"),
		Method: "metadata",
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if !strings.Contains(err.Error(), "Input file") {
		t.Fatalf("err = %v, want input file detail", err)
	}

	var sawError bool
	for _, update := range bus.Drain() {
		if update.Kind == progress.KindError {
			sawError = true
		}
	}
	if !sawError {
		t.Fatal("expected an error update on the bus")
	}
}

func TestPipelineBadTimingFileIsTerminal(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSilence(silenceLines))
	input := testsupport.Audiobook(t, testsupport.BaseDir(cfg))
	chaptersFile := filepath.Join(testsupport.BaseDir(cfg), "chapters.json")
	if err := os.WriteFile(chaptersFile, []byte("not json"), 0o644); err != nil {
		t.Fatalf("write chapters file: %v", err)
	}

	p := New(cfg, logging.NewNop(), nil)
	result, err := p.Run(context.Background(), Request{
		Input:        input,
		Method:       "json",
		ChaptersFile: chaptersFile,
	})
	if !errors.Is(err, services.ErrFormat) {
		t.Fatalf("err = %v, want format error", err)
	}
	if result.Outcome.FellBack {
		t.Fatal("timing file errors must not fall back to silence")
	}
	if len(result.Summary.Exported) != 0 {
		t.Fatalf("exported %d chapters, want none", len(result.Summary.Exported))
	}
}

func TestPipelineStopBeforeDetection(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithChapters(embeddedChapters))
	input := testsupport.Audiobook(t, testsupport.BaseDir(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bus := progress.NewBus()
	p := New(cfg, logging.NewNop(), bus)
	result, err := p.Run(ctx, Request{Input: input, Method: "metadata"})
	if err != nil {
		t.Fatalf("Run after stop: %v", err)
	}
	if !result.Stopped {
		t.Fatal("expected a stopped result")
	}
	if result.Summary.SidecarPath != "" {
		t.Fatalf("sidecar written for a run stopped before export: %s", result.Summary.SidecarPath)
	}
	for _, update := range bus.Drain() {
		if update.Kind == progress.KindDone {
			t.Fatal("stopped run must not publish done")
		}
		if update.Kind == progress.KindError {
			t.Fatalf("stopped run must not publish an error: %s", update.Message)
		}
	}
}
