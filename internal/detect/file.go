package detect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"log/slog"

	"chapterize/internal/config"
	"chapterize/internal/logging"
	"chapterize/internal/services"
	"chapterize/internal/timecode"
)

// FileDetector loads chapter definitions from a user-supplied JSON file. The
// file is authoritative: its errors are fatal, never absorbed into the
// silence fallback.
type FileDetector struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewFileDetector constructs the timing-file strategy.
func NewFileDetector(cfg *config.Config, logger *slog.Logger) *FileDetector {
	return &FileDetector{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "detect"),
	}
}

func (d *FileDetector) Name() string { return MethodJSON }

// fileEntry is one chapter definition. Timing comes from either the
// millisecond pair or the start/end pair, where start/end accept numeric
// seconds or clock text.
type fileEntry struct {
	Title   string `json:"title"`
	Name    string `json:"name"`
	StartMS *int64 `json:"start_ms"`
	EndMS   *int64 `json:"end_ms"`
	Start   any    `json:"start"`
	End     any    `json:"end"`
}

// Detect reads the timing file and validates each entry against the probed
// duration. Entries with out-of-range times are dropped with a warning; an
// entry missing both timing pairs, an undecodable file, or a file whose
// entries were all dropped is a format error.
func (d *FileDetector) Detect(ctx context.Context, in Input) ([]Chapter, error) {
	if d == nil || d.cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "detect", "json", "File detector is not configured", nil)
	}
	if strings.TrimSpace(in.ChaptersFile) == "" {
		return nil, services.Wrap(services.ErrValidation, "detect", "json", "Chapter timing file required for the json method", nil)
	}
	logger := logging.WithContext(ctx, d.logger)
	logger.Info("loading chapters from timing file", logging.String("file", in.ChaptersFile))

	data, err := os.ReadFile(in.ChaptersFile)
	if err != nil {
		return nil, services.Wrap(services.ErrFormat, "detect", "json", "Could not read chapter timing file", err)
	}
	entries, err := decodeEntries(data)
	if err != nil {
		return nil, services.Wrap(services.ErrFormat, "detect", "json", "Could not parse chapter timing file", err)
	}

	chapters := make([]Chapter, 0, len(entries))
	for i, entry := range entries {
		start, end, err := entry.times()
		if err != nil {
			return nil, services.Wrap(services.ErrFormat, "detect", "json",
				fmt.Sprintf("Invalid timing entry %d", i+1), err)
		}
		if start < 0 || end <= start || end > in.TotalDuration {
			logger.Warn("dropping chapter entry with out-of-range times",
				logging.Int("entry", i+1),
				logging.Float64("start", start),
				logging.Float64("end", end))
			continue
		}
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			title = strings.TrimSpace(entry.Name)
		}
		if title == "" {
			title = fmt.Sprintf("Chapter %d", len(chapters)+1)
		}
		chapters = append(chapters, Chapter{Start: start, End: end, Title: title})
	}

	if len(chapters) == 0 {
		return nil, services.Wrap(services.ErrFormat, "detect", "json", "Timing file contains no usable chapters", nil)
	}
	logger.Info("loaded chapters from file", logging.Int("chapters", len(chapters)))
	return chapters, nil
}

// decodeEntries accepts either a bare array or an object with a chapters
// field.
func decodeEntries(data []byte) ([]fileEntry, error) {
	var entries []fileEntry
	if err := json.Unmarshal(data, &entries); err == nil {
		return entries, nil
	}
	var wrapper struct {
		Chapters []fileEntry `json:"chapters"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, err
	}
	if wrapper.Chapters == nil {
		return nil, errors.New("expected a chapter array or a chapters field")
	}
	return wrapper.Chapters, nil
}

func (e fileEntry) times() (float64, float64, error) {
	if e.StartMS != nil && e.EndMS != nil {
		return float64(*e.StartMS) / 1000.0, float64(*e.EndMS) / 1000.0, nil
	}
	if e.Start != nil && e.End != nil {
		start, err := timeValue(e.Start)
		if err != nil {
			return 0, 0, err
		}
		end, err := timeValue(e.End)
		if err != nil {
			return 0, 0, err
		}
		return start, end, nil
	}
	return 0, 0, errors.New("entry carries neither start_ms/end_ms nor start/end")
}

// timeValue interprets a JSON timestamp: numbers are seconds, strings go
// through the timecode parser.
func timeValue(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case string:
		return timecode.Parse(v)
	default:
		return 0, fmt.Errorf("unsupported timestamp value %v", value)
	}
}
