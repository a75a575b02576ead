package detect

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"log/slog"

	"chapterize/internal/logging"
)

// Normalize orders a detected chapter list by start time, clamps every
// chapter into [0, totalDuration], drops anything empty or inverted after
// clamping, and fills in default titles. Every strategy's output passes
// through here before export.
func Normalize(chapters []Chapter, totalDuration float64, logger *slog.Logger) []Chapter {
	if logger == nil {
		logger = logging.NewNop()
	}
	ordered := make([]Chapter, len(chapters))
	copy(ordered, chapters)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	result := make([]Chapter, 0, len(ordered))
	for _, ch := range ordered {
		if math.IsNaN(ch.Start) || math.IsNaN(ch.End) {
			logger.Warn("dropping chapter with unparsable times", logging.String("title", ch.Title))
			continue
		}
		if ch.Start < 0 {
			ch.Start = 0
		}
		if totalDuration > 0 && ch.End > totalDuration {
			ch.End = totalDuration
		}
		if ch.End <= ch.Start {
			logger.Warn("dropping empty chapter",
				logging.String("title", ch.Title),
				logging.Float64("start", ch.Start),
				logging.Float64("end", ch.End))
			continue
		}
		result = append(result, ch)
	}

	for i := range result {
		if strings.TrimSpace(result[i].Title) == "" {
			result[i].Title = fmt.Sprintf("Chapter %d", i+1)
		}
	}
	return result
}
