package detect

import (
	"context"
	"fmt"

	"log/slog"

	"chapterize/internal/config"
	"chapterize/internal/logging"
	"chapterize/internal/media/ffmpegx"
	"chapterize/internal/services"
)

// SilenceDetector cuts chapters at long silent gaps. It always produces at
// least one chapter, which makes it the fallback target for the strategies
// that can come up empty.
type SilenceDetector struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewSilenceDetector constructs the silence-gap strategy.
func NewSilenceDetector(cfg *config.Config, logger *slog.Logger) *SilenceDetector {
	return &SilenceDetector{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "detect"),
	}
}

func (d *SilenceDetector) Name() string { return MethodSilence }

// Detect scans the whole file for silent spans and converts them into
// chapter boundaries.
func (d *SilenceDetector) Detect(ctx context.Context, in Input) ([]Chapter, error) {
	if d == nil || d.cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "detect", "silence", "Silence detector is not configured", nil)
	}
	det := d.cfg.Detection
	logger := logging.WithContext(ctx, d.logger)
	logger.Info("detecting silence",
		logging.Float64("threshold_db", det.SilenceThresholdDB),
		logging.Float64("min_silence", det.SilenceMinDuration))

	spans, err := ffmpegx.ScanSilence(ctx, d.cfg.FFmpegBinary(), in.Path, ffmpegx.ScanOptions{
		ThresholdDB: det.SilenceThresholdDB,
		MinSilence:  det.SilenceMinDuration,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrExtraction, "detect", "silence", "Silence scan failed", err)
	}
	for _, span := range spans {
		logger.Debug("silence span",
			logging.Float64("start", span.Start),
			logging.Float64("seconds", span.Duration()))
	}

	chapters := chaptersFromSilences(spans, in.TotalDuration, det.MinChapterSeconds)
	logger.Info("silence scan complete",
		logging.Int("silences", len(spans)),
		logging.Int("chapters", len(chapters)))
	return chapters, nil
}

// chaptersFromSilences walks the silent spans in order and cuts a boundary
// at each span that begins at least minChapter seconds after the previous
// cut. The silence itself belongs to no chapter: a chapter ends where its
// trailing silence starts and the next begins where that silence ends. A
// short tail is merged into the previous chapter; a file with no usable cuts
// comes back as one chapter covering everything.
func chaptersFromSilences(spans []ffmpegx.Silence, totalDuration, minChapter float64) []Chapter {
	var chapters []Chapter
	lastEnd := 0.0
	for _, span := range spans {
		if span.Start-lastEnd >= minChapter {
			chapters = append(chapters, Chapter{
				Start: lastEnd,
				End:   span.Start,
				Title: fmt.Sprintf("Chapter %d", len(chapters)+1),
			})
			lastEnd = span.End
		}
	}

	switch {
	case totalDuration-lastEnd >= minChapter:
		chapters = append(chapters, Chapter{
			Start: lastEnd,
			End:   totalDuration,
			Title: fmt.Sprintf("Chapter %d", len(chapters)+1),
		})
	case len(chapters) > 0:
		chapters[len(chapters)-1].End = totalDuration
	default:
		chapters = []Chapter{{Start: 0, End: totalDuration, Title: "Chapter 1"}}
	}
	return chapters
}
