// Package pipeline drives one full chapterize run: preflight checks, media
// probing, chapter detection, segment export, and the metadata sidecar.
// Stages run strictly in sequence; a cooperative stop observed at a stage
// boundary ends the run cleanly with whatever was already produced.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"github.com/google/uuid"

	"chapterize/internal/config"
	"chapterize/internal/detect"
	"chapterize/internal/export"
	"chapterize/internal/logging"
	"chapterize/internal/media/ffprobe"
	"chapterize/internal/preflight"
	"chapterize/internal/progress"
	"chapterize/internal/services"
	"chapterize/internal/services/transcribe"
	"chapterize/internal/timecode"
)

// Request describes one run.
type Request struct {
	// Input is the audiobook file to split.
	Input string
	// Method overrides the configured detection method when set.
	Method string
	// ChaptersFile is the user-supplied timing file for the json method.
	ChaptersFile string
}

// Result collects everything a caller needs to render the run.
type Result struct {
	// Probe is the container inspection used for the banner.
	Probe ffprobe.Result
	// Duration is the probed total duration in seconds.
	Duration float64
	// Outcome is the normalised detection result.
	Outcome detect.Outcome
	// Summary lists the exported chapters and the sidecar path.
	Summary export.Summary
	// Stopped reports a clean cooperative stop.
	Stopped bool
}

// Pipeline wires the detection orchestrator and the exporter against one
// configuration.
type Pipeline struct {
	cfg          *config.Config
	logger       *slog.Logger
	bus          *progress.Bus
	orchestrator *detect.Orchestrator
	exporter     *export.Exporter
}

// New builds a Pipeline. The bus may be nil when no consumer polls progress.
func New(cfg *config.Config, logger *slog.Logger, bus *progress.Bus) *Pipeline {
	recognizer := transcribe.NewClient(cfg.TranscriberBinary())
	exporter := export.New(export.Options{
		OutputDir: cfg.Output.Dir,
		Format:    cfg.Output.Format,
		Bitrate:   cfg.Output.Bitrate,
		Mono:      cfg.Output.Mono,
		FFmpeg:    cfg.FFmpegBinary(),
		Progress: func(index, total int, ch detect.Chapter) {
			bus.Chapter(index, total, ch.Title)
		},
	}, logger)
	return &Pipeline{
		cfg:          cfg,
		logger:       logging.NewComponentLogger(logger, "pipeline"),
		bus:          bus,
		orchestrator: detect.NewOrchestrator(cfg, recognizer, logger),
		exporter:     exporter,
	}
}

// Run executes the full pipeline for one audiobook.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	var result Result
	if p == nil || p.cfg == nil {
		return result, services.Wrap(services.ErrConfiguration, "pipeline", "run", "Pipeline is not configured", nil)
	}

	ctx = services.WithRunID(ctx, uuid.NewString())
	method := strings.ToLower(strings.TrimSpace(req.Method))
	if method == "" {
		method = p.cfg.Detection.Method
	}

	if err := p.runPreflight(ctx, req, method); err != nil {
		return result, err
	}

	stageCtx := services.WithStage(ctx, "probe")
	logger := logging.WithContext(stageCtx, p.logger)
	p.bus.Stage("probe", "inspecting media")
	duration, err := ffprobe.Duration(stageCtx, p.cfg.FFprobeBinary(), req.Input)
	if err != nil {
		if ctx.Err() != nil {
			return p.stop(ctx, result), nil
		}
		wrapped := services.Wrap(services.ErrProbe, "pipeline", "probe", "Could not read media duration", err)
		p.bus.Error("probe", wrapped)
		return result, wrapped
	}
	info, err := ffprobe.Inspect(stageCtx, p.cfg.FFprobeBinary(), req.Input)
	if err != nil {
		if ctx.Err() != nil {
			return p.stop(ctx, result), nil
		}
		wrapped := services.Wrap(services.ErrProbe, "pipeline", "probe", "Could not inspect media", err)
		p.bus.Error("probe", wrapped)
		return result, wrapped
	}
	result.Probe = info
	result.Duration = duration
	logBanner(logger, req.Input, duration, info)

	stageCtx = services.WithStage(ctx, "detect")
	logger = logging.WithContext(stageCtx, p.logger)
	p.bus.Stagef("detect", "detecting chapters using %s", method)
	outcome, err := p.orchestrator.Detect(stageCtx, method, detect.Input{
		Path:          req.Input,
		TotalDuration: duration,
		ChaptersFile:  req.ChaptersFile,
	})
	if err != nil {
		if ctx.Err() != nil {
			return p.stop(ctx, result), nil
		}
		p.bus.Error("detect", err)
		return result, err
	}
	result.Outcome = outcome
	logger.Info("detected chapters",
		logging.Int("chapters", len(outcome.Chapters)),
		logging.String(logging.FieldMethod, outcome.Method),
		logging.Bool("fell_back", outcome.FellBack))
	for i, ch := range outcome.Chapters {
		logger.Debug("chapter",
			logging.Int(logging.FieldChapter, i+1),
			logging.String("title", ch.Title),
			logging.String("start", timecode.Format(ch.Start)),
			logging.String("end", timecode.Format(ch.End)),
			logging.String("duration", timecode.Duration(ch.Start, ch.End)))
	}

	stageCtx = services.WithStage(ctx, "export")
	logger = logging.WithContext(stageCtx, p.logger)
	p.bus.Stagef("export", "exporting %d chapters", len(outcome.Chapters))
	summary, err := p.exporter.Export(stageCtx, req.Input, outcome.Chapters)
	if err != nil {
		p.bus.Error("export", err)
		result.Summary = summary
		return result, err
	}

	sidecar, err := p.exporter.WriteSidecar(req.Input, summary.Exported)
	if err != nil {
		p.bus.Error("export", err)
		result.Summary = summary
		return result, err
	}
	summary.SidecarPath = sidecar
	result.Summary = summary
	logger.Info("metadata saved", logging.String("file", sidecar))

	if summary.Stopped {
		result.Stopped = true
		p.bus.Stagef("export", "stopped after %d of %d chapters",
			len(summary.Exported), len(outcome.Chapters))
		logger.Info("run stopped cooperatively",
			logging.Int("exported", len(summary.Exported)),
			logging.Int("detected", len(outcome.Chapters)))
		return result, nil
	}

	p.bus.Done(fmt.Sprintf("%d chapters exported", len(summary.Exported)))
	logger.Info("run complete",
		logging.Int("chapters", len(summary.Exported)),
		logging.String("sidecar", sidecar))
	return result, nil
}

// runPreflight verifies the input, output directory, and tool set. A missing
// transcriber is reported but never fatal here: the speech strategy degrades
// to the silence fallback on its own.
func (p *Pipeline) runPreflight(ctx context.Context, req Request, method string) error {
	stageCtx := services.WithStage(ctx, "preflight")
	logger := logging.WithContext(stageCtx, p.logger)
	p.bus.Stage("preflight", "checking input and tools")

	results := preflight.RunAll(p.cfg, preflight.Request{
		Input:     req.Input,
		OutputDir: p.cfg.Output.Dir,
		Method:    method,
	})
	var fatal []preflight.Result
	for _, res := range preflight.Failures(results) {
		if res.Name == "Transcriber" {
			logger.Warn("transcriber unavailable, speech detection will fall back to silence",
				logging.String("detail", res.Detail))
			continue
		}
		fatal = append(fatal, res)
	}
	if len(fatal) > 0 {
		err := services.Wrap(services.ErrValidation, "pipeline", "preflight", preflight.Summarize(fatal), nil)
		p.bus.Error("preflight", err)
		return err
	}
	logger.Debug("preflight passed", logging.Int("checks", len(results)))
	return nil
}

// stop finalises a run ended by a cooperative stop request.
func (p *Pipeline) stop(ctx context.Context, result Result) Result {
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("stop requested, ending run")
	result.Stopped = true
	return result
}

// logBanner logs the loaded file's duration, size, and the first audio
// stream's shape.
func logBanner(logger *slog.Logger, input string, duration float64, info ffprobe.Result) {
	logger.Info("audiobook loaded",
		logging.String("input", input),
		logging.String("duration", timecode.Format(duration)),
		logging.Float64("size_mb", float64(info.SizeBytes())/(1024*1024)))
	if stream, ok := info.FirstAudioStream(); ok {
		logger.Info("audio stream",
			logging.String("codec", stream.CodecName),
			logging.String("sample_rate", stream.SampleRate),
			logging.Int("channels", stream.Channels))
	}
}
