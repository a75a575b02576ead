package detect

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"

	"log/slog"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"chapterize/internal/config"
	"chapterize/internal/logging"
	"chapterize/internal/media/ffmpegx"
	"chapterize/internal/services"
	"chapterize/internal/services/transcribe"
	"chapterize/internal/timecode"
)

// announcementPattern matches a spoken chapter announcement: "chapter",
// "part", or "section" followed by a digit string, a number word, or a Roman
// numeral.
var announcementPattern = regexp.MustCompile(
	`(?i)\b(?:chapter|part|section)\s+(\d+|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|[ivxlcdm]+)\b`)

// progressEvery controls how many samples pass between progress lines.
const progressEvery = 5

// SpeechDetector samples the audio at a fixed interval and listens for
// chapter announcements with an external speech-to-text tool.
type SpeechDetector struct {
	cfg        *config.Config
	recognizer transcribe.Recognizer
	titler     cases.Caser
	logger     *slog.Logger
}

// NewSpeechDetector constructs the speech-sampling strategy. The recognizer
// is injected so tests can supply a fake.
func NewSpeechDetector(cfg *config.Config, recognizer transcribe.Recognizer, logger *slog.Logger) *SpeechDetector {
	return &SpeechDetector{
		cfg:        cfg,
		recognizer: recognizer,
		titler:     cases.Title(language.English),
		logger:     logging.NewComponentLogger(logger, "detect"),
	}
}

func (d *SpeechDetector) Name() string { return MethodSpeech }

type speechMarker struct {
	position float64
	title    string
}

// Detect extracts a short mono window every interval seconds, transcribes
// it, and records a chapter marker wherever an announcement is heard. Each
// marker's chapter runs to the next marker, the last to the end of the file.
// A failed sample is skipped, never fatal; an unavailable transcriber fails
// the whole strategy. Zero markers return (nil, nil).
func (d *SpeechDetector) Detect(ctx context.Context, in Input) ([]Chapter, error) {
	if d == nil || d.cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "detect", "speech", "Speech detector is not configured", nil)
	}
	if d.recognizer == nil {
		return nil, services.Wrap(services.ErrRecognition, "detect", "speech", "No speech recognizer configured", nil)
	}
	det := d.cfg.Detection
	logger := logging.WithContext(ctx, d.logger)
	logger.Info("sampling audio for chapter announcements",
		logging.Float64("interval", det.SpeechInterval),
		logging.Float64("window", det.SpeechWindow))

	workDir, err := os.MkdirTemp("", "chapterize-speech-")
	if err != nil {
		return nil, services.Wrap(services.ErrExtraction, "detect", "speech", "Could not create sample workspace", err)
	}
	defer os.RemoveAll(workDir)

	totalSamples := int(math.Ceil(in.TotalDuration / det.SpeechInterval))
	var markers []speechMarker
	sample := 0
	for position := 0.0; position < in.TotalDuration; position += det.SpeechInterval {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sample++
		if sample%progressEvery == 0 {
			logger.Info("speech scan progress",
				logging.Int("sample", sample),
				logging.Int("total_samples", totalSamples),
				logging.Float64("percent", math.Round(position/in.TotalDuration*1000)/10))
		}

		wavPath := filepath.Join(workDir, fmt.Sprintf("sample_%04d.wav", sample))
		if err := ffmpegx.ExtractSample(ctx, d.cfg.FFmpegBinary(), in.Path, position, det.SpeechWindow, wavPath); err != nil {
			logger.Warn("sample extraction failed",
				logging.String("position", timecode.Format(position)),
				logging.Error(err))
			continue
		}

		text, err := d.recognizer.Recognize(ctx, wavPath)
		os.Remove(wavPath)
		if err != nil {
			if errors.Is(err, transcribe.ErrUnavailable) {
				return nil, services.Wrap(services.ErrRecognition, "detect", "speech", "Speech recognition is unavailable", err)
			}
			logger.Debug("sample recognition failed",
				logging.String("position", timecode.Format(position)),
				logging.Error(err))
			continue
		}

		if match := announcementPattern.FindString(text); match != "" {
			title := d.titler.String(match)
			logger.Info("chapter announcement found",
				logging.String("title", title),
				logging.String("position", timecode.Format(position)))
			markers = append(markers, speechMarker{position: position, title: title})
		}
	}

	if len(markers) == 0 {
		logger.Info("no chapter announcements detected")
		return nil, nil
	}

	chapters := make([]Chapter, len(markers))
	for i, m := range markers {
		end := in.TotalDuration
		if i+1 < len(markers) {
			end = markers[i+1].position
		}
		chapters[i] = Chapter{Start: m.position, End: end, Title: m.title}
	}
	logger.Info("detected chapters from speech", logging.Int("chapters", len(chapters)))
	return chapters, nil
}
