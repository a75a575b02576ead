package detect

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"chapterize/internal/config"
	"chapterize/internal/logging"
	"chapterize/internal/services"
	"chapterize/internal/services/transcribe"
)

// Outcome is the orchestrator's normalised result.
type Outcome struct {
	// Chapters is the ordered, validated chapter list.
	Chapters []Chapter
	// Method is the strategy that actually produced the chapters, which
	// differs from the requested one after a fallback.
	Method string
	// FellBack reports that the silence fallback ran.
	FellBack bool
}

// Orchestrator selects a detection strategy by name, applies the silence
// fallback when metadata or speech comes up empty, and normalises whatever
// the winning strategy produced.
type Orchestrator struct {
	detectors map[string]Detector
	fallback  Detector
	logger    *slog.Logger
}

// NewOrchestrator wires the four strategies against one configuration. The
// recognizer backs the speech strategy; tests inject fakes through it.
func NewOrchestrator(cfg *config.Config, recognizer transcribe.Recognizer, logger *slog.Logger) *Orchestrator {
	silence := NewSilenceDetector(cfg, logger)
	return &Orchestrator{
		detectors: map[string]Detector{
			MethodMetadata: NewMetadataDetector(cfg, logger),
			MethodSilence:  silence,
			MethodSpeech:   NewSpeechDetector(cfg, recognizer, logger),
			MethodJSON:     NewFileDetector(cfg, logger),
		},
		fallback: silence,
		logger:   logging.NewComponentLogger(logger, "detect"),
	}
}

// WithDetector replaces one strategy, used by tests to substitute fakes.
func (o *Orchestrator) WithDetector(method string, detector Detector) *Orchestrator {
	o.detectors[method] = detector
	if method == MethodSilence {
		o.fallback = detector
	}
	return o
}

// Detect runs the requested strategy and returns a normalised outcome. The
// metadata and speech strategies fall back to silence when they find nothing
// or fail recoverably; json is authoritative and silence cannot come up
// empty, so neither falls back.
func (o *Orchestrator) Detect(ctx context.Context, method string, in Input) (Outcome, error) {
	method = strings.ToLower(strings.TrimSpace(method))
	detector, ok := o.detectors[method]
	if !ok {
		return Outcome{}, services.Wrap(services.ErrValidation, "detect", "select",
			fmt.Sprintf("Unknown detection method %q", method), nil)
	}
	logger := logging.WithContext(ctx, o.logger)

	chapters, err := detector.Detect(ctx, in)
	fellBack := false
	switch {
	case err != nil:
		if !fallsBack(method) || !services.Recoverable(err) || ctx.Err() != nil {
			return Outcome{}, err
		}
		logger.Warn("detection failed, falling back to silence detection",
			logging.String(logging.FieldMethod, method),
			logging.Error(err))
		fellBack = true
	case len(chapters) == 0:
		if !fallsBack(method) {
			return Outcome{}, services.Wrap(services.ErrValidation, "detect", method, "Detection produced no chapters", nil)
		}
		logger.Warn("no chapters found, falling back to silence detection",
			logging.String(logging.FieldMethod, method))
		fellBack = true
	}

	if fellBack {
		method = MethodSilence
		chapters, err = o.fallback.Detect(ctx, in)
		if err != nil {
			return Outcome{}, err
		}
	}

	normalized := Normalize(chapters, in.TotalDuration, logger)
	if len(normalized) == 0 {
		return Outcome{}, services.Wrap(services.ErrValidation, "detect", method, "No usable chapters after validation", nil)
	}
	return Outcome{Chapters: normalized, Method: method, FellBack: fellBack}, nil
}

// fallsBack reports whether a strategy escalates to silence detection. File
// input is an explicit instruction that must not be second-guessed, and
// silence is already the fallback.
func fallsBack(method string) bool {
	return method == MethodMetadata || method == MethodSpeech
}
