package detect

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"chapterize/internal/config"
	"chapterize/internal/logging"
	"chapterize/internal/media/ffprobe"
	"chapterize/internal/services"
)

// MetadataDetector reads chapter marks embedded in the media container.
type MetadataDetector struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewMetadataDetector constructs the embedded-metadata strategy.
func NewMetadataDetector(cfg *config.Config, logger *slog.Logger) *MetadataDetector {
	return &MetadataDetector{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "detect"),
	}
}

func (d *MetadataDetector) Name() string { return MethodMetadata }

// Detect queries the container's chapter list. Files without embedded
// chapters return (nil, nil). When the first chapter is an opening-credits
// entry it is merged into the chapter that follows: its own record is
// dropped and the next chapter's start is forced to 0.
func (d *MetadataDetector) Detect(ctx context.Context, in Input) ([]Chapter, error) {
	if d == nil || d.cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "detect", "metadata", "Metadata detector is not configured", nil)
	}
	logger := logging.WithContext(ctx, d.logger)
	logger.Info("checking for embedded chapter metadata")

	embedded, err := ffprobe.InspectChapters(ctx, d.cfg.FFprobeBinary(), in.Path)
	if err != nil {
		return nil, services.Wrap(services.ErrProbe, "detect", "metadata", "Chapter metadata query failed", err)
	}
	if len(embedded) == 0 {
		logger.Info("no embedded chapters found")
		return nil, nil
	}

	startIndex := 0
	if isOpeningCredits(embedded[0].Title()) {
		logger.Info("merging opening credits into the first chapter")
		startIndex = 1
	}

	chapters := make([]Chapter, 0, len(embedded)-startIndex)
	for i := startIndex; i < len(embedded); i++ {
		mark := embedded[i]
		start := mark.StartSeconds()
		if startIndex == 1 && i == startIndex {
			start = 0
		}
		title := mark.Title()
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1-startIndex)
		}
		chapters = append(chapters, Chapter{Start: start, End: mark.EndSeconds(), Title: title})
	}

	logger.Info("found embedded chapters", logging.Int("chapters", len(chapters)))
	return chapters, nil
}

// isOpeningCredits reports whether a title names an opening-credits chapter,
// matched case-insensitively on both words so "Opening Credits" and
// "opening credit roll" qualify.
func isOpeningCredits(title string) bool {
	lower := strings.ToLower(title)
	return strings.Contains(lower, "opening") && strings.Contains(lower, "credit")
}
