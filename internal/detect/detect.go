// Package detect turns a single long-form audio file into an ordered list of
// chapter time ranges. Four strategies exist: embedded container metadata,
// silence-gap heuristics, speech-pattern sampling, and an externally
// supplied timing file. The orchestrator selects one, applies the silence
// fallback when the primary finds nothing, and normalises the result.
package detect

import (
	"context"
)

// Detection method names accepted on the command line.
const (
	MethodMetadata = "metadata"
	MethodSilence  = "silence"
	MethodSpeech   = "speech"
	MethodJSON     = "json"
)

// Chapter is one half-open time range [Start, End) designated as a single
// output unit. Times are seconds from the start of the source file.
type Chapter struct {
	Start float64
	End   float64
	Title string
}

// Duration returns the chapter length in seconds.
func (c Chapter) Duration() float64 {
	return c.End - c.Start
}

// Input carries everything a strategy needs for one detection run.
type Input struct {
	// Path is the source media file.
	Path string
	// TotalDuration is the probed container duration in seconds.
	TotalDuration float64
	// ChaptersFile is the user-supplied timing file, json method only.
	ChaptersFile string
}

// Detector is one boundary-detection strategy. Returning (nil, nil) means
// the input carries none of the feature the strategy looks for; whether that
// triggers the silence fallback is the orchestrator's call, not the
// detector's.
type Detector interface {
	Name() string
	Detect(ctx context.Context, in Input) ([]Chapter, error)
}
