// Package export cuts detected chapters out of the source file, one external
// tool invocation per chapter in order, and records what it wrote in a JSON
// sidecar. Cancellation is honored between chapters only; files already
// written always stay on disk.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"github.com/gofrs/flock"

	"chapterize/internal/detect"
	"chapterize/internal/logging"
	"chapterize/internal/media/ffmpegx"
	"chapterize/internal/services"
	"chapterize/internal/textutil"
)

// lockFileName guards the output directory against concurrent runs.
const lockFileName = ".chapterize.lock"

// Options configures one export run.
type Options struct {
	OutputDir string
	Format    string
	Bitrate   string
	Mono      bool
	FFmpeg    string
	// Progress, when set, is called before each chapter extraction with the
	// 1-based index.
	Progress func(index, total int, ch detect.Chapter)
}

// Exported pairs a chapter with the file it was written to.
type Exported struct {
	Chapter detect.Chapter
	File    string
}

// Summary reports what an export run produced.
type Summary struct {
	Exported    []Exported
	Stopped     bool
	SidecarPath string
}

// Exporter writes chapter files sequentially through the external media
// tool.
type Exporter struct {
	opts   Options
	logger *slog.Logger
}

// New constructs an Exporter.
func New(opts Options, logger *slog.Logger) *Exporter {
	return &Exporter{
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "export"),
	}
}

// Plan returns the output path for one chapter: base name, 2-digit 1-based
// index, and the sanitized title. Untitled chapters drop the title segment
// rather than ending in a bare underscore.
func Plan(outputDir, baseName string, index int, ch detect.Chapter, format string) string {
	safe := textutil.SafeTitle(ch.Title)
	name := fmt.Sprintf("%s_%02d.%s", baseName, index, format)
	if safe != "" {
		name = fmt.Sprintf("%s_%02d_%s.%s", baseName, index, safe, format)
	}
	return filepath.Join(outputDir, name)
}

// BaseName strips the directory and extension from a media path.
func BaseName(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Export cuts each chapter into its own file under the output directory. A
// stop request observed between chapters ends the run cleanly with
// Summary.Stopped set; an extraction failure aborts with an error. In both
// cases Summary.Exported lists everything already written.
func (e *Exporter) Export(ctx context.Context, input string, chapters []detect.Chapter) (Summary, error) {
	var summary Summary
	if e == nil {
		return summary, services.Wrap(services.ErrConfiguration, "export", "run", "Exporter is not configured", nil)
	}
	if strings.TrimSpace(input) == "" {
		return summary, services.Wrap(services.ErrValidation, "export", "run", "Input path required", nil)
	}
	if len(chapters) == 0 {
		return summary, services.Wrap(services.ErrValidation, "export", "run", "No chapters to export", nil)
	}

	if err := os.MkdirAll(e.opts.OutputDir, 0o755); err != nil {
		return summary, services.Wrap(services.ErrValidation, "export", "run", "Could not create output directory", err)
	}

	lock := flock.New(filepath.Join(e.opts.OutputDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return summary, services.Wrap(services.ErrValidation, "export", "lock", "Could not lock output directory", err)
	}
	if !locked {
		return summary, services.Wrap(services.ErrValidation, "export", "lock", "Output directory is in use by another run", nil)
	}
	defer lock.Unlock()

	logger := logging.WithContext(ctx, e.logger)
	baseName := BaseName(input)
	total := len(chapters)
	codec := ffmpegx.CodecArgs(e.opts.Format, e.opts.Bitrate, e.opts.Mono)
	logger.Info("exporting chapters",
		logging.Int("chapters", total),
		logging.String("dir", e.opts.OutputDir),
		logging.String("format", e.opts.Format))

	for i, ch := range chapters {
		if ctx.Err() != nil {
			logger.Info("stop requested, keeping chapters already exported",
				logging.Int("exported", len(summary.Exported)))
			summary.Stopped = true
			return summary, nil
		}

		outPath := Plan(e.opts.OutputDir, baseName, i+1, ch, e.opts.Format)
		logger.Info("exporting chapter",
			logging.Int(logging.FieldChapter, i+1),
			logging.Int("total", total),
			logging.String("title", ch.Title))
		if e.opts.Progress != nil {
			e.opts.Progress(i+1, total, ch)
		}

		if err := ffmpegx.ExtractSegment(ctx, e.opts.FFmpeg, input, ch.Start, ch.Duration(), codec, outPath); err != nil {
			return summary, services.Wrap(services.ErrExtraction, "export", "extract",
				fmt.Sprintf("Chapter %d of %d failed", i+1, total), err)
		}
		summary.Exported = append(summary.Exported, Exported{Chapter: ch, File: outPath})
	}
	return summary, nil
}
