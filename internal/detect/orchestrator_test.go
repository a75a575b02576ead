package detect

import (
	"context"
	"errors"
	"testing"

	"chapterize/internal/services"
)

type fakeDetector struct {
	name     string
	chapters []Chapter
	err      error
	calls    int
}

func (f *fakeDetector) Name() string { return f.name }

func (f *fakeDetector) Detect(ctx context.Context, in Input) ([]Chapter, error) {
	f.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.chapters, f.err
}

func newTestOrchestrator(t *testing.T, primary map[string]*fakeDetector, silence *fakeDetector) *Orchestrator {
	t.Helper()
	o := NewOrchestrator(testConfig(t, "", ""), nil, nil)
	for method, d := range primary {
		o.WithDetector(method, d)
	}
	if silence != nil {
		o.WithDetector(MethodSilence, silence)
	}
	return o
}

func TestOrchestratorPrimarySucceeds(t *testing.T) {
	meta := &fakeDetector{name: MethodMetadata, chapters: []Chapter{{Start: 0, End: 90, Title: "Ch1"}}}
	silence := &fakeDetector{name: MethodSilence}
	o := newTestOrchestrator(t, map[string]*fakeDetector{MethodMetadata: meta}, silence)

	out, err := o.Detect(context.Background(), "metadata", Input{TotalDuration: 90})
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if out.FellBack || out.Method != MethodMetadata {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if silence.calls != 0 {
		t.Fatalf("fallback should not run, saw %d calls", silence.calls)
	}
}

func TestOrchestratorFallsBackOnEmptyMetadata(t *testing.T) {
	meta := &fakeDetector{name: MethodMetadata}
	silence := &fakeDetector{name: MethodSilence, chapters: []Chapter{{Start: 0, End: 600, Title: "Chapter 1"}}}
	o := newTestOrchestrator(t, map[string]*fakeDetector{MethodMetadata: meta}, silence)

	out, err := o.Detect(context.Background(), "metadata", Input{TotalDuration: 600})
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if !out.FellBack || out.Method != MethodSilence {
		t.Fatalf("expected silence fallback, got %+v", out)
	}
	if len(out.Chapters) != 1 {
		t.Fatalf("fallback chapters missing: %+v", out)
	}
}

func TestOrchestratorFallsBackOnRecoverableError(t *testing.T) {
	speech := &fakeDetector{
		name: MethodSpeech,
		err:  services.Wrap(services.ErrRecognition, "detect", "speech", "Speech recognition is unavailable", nil),
	}
	silence := &fakeDetector{name: MethodSilence, chapters: []Chapter{{Start: 0, End: 600, Title: "Chapter 1"}}}
	o := newTestOrchestrator(t, map[string]*fakeDetector{MethodSpeech: speech}, silence)

	out, err := o.Detect(context.Background(), "speech", Input{TotalDuration: 600})
	if err != nil {
		t.Fatalf("recoverable failure should fall back: %v", err)
	}
	if !out.FellBack || out.Method != MethodSilence {
		t.Fatalf("expected silence fallback, got %+v", out)
	}
}

func TestOrchestratorFileErrorsAreTerminal(t *testing.T) {
	file := &fakeDetector{
		name: MethodJSON,
		err:  services.Wrap(services.ErrFormat, "detect", "json", "Timing file contains no usable chapters", nil),
	}
	silence := &fakeDetector{name: MethodSilence, chapters: []Chapter{{Start: 0, End: 600}}}
	o := newTestOrchestrator(t, map[string]*fakeDetector{MethodJSON: file}, silence)

	_, err := o.Detect(context.Background(), "json", Input{TotalDuration: 600})
	if !errors.Is(err, services.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
	if silence.calls != 0 {
		t.Fatalf("json must never fall back, silence ran %d times", silence.calls)
	}
}

func TestOrchestratorNonRecoverableSpeechError(t *testing.T) {
	speech := &fakeDetector{
		name: MethodSpeech,
		err:  services.Wrap(services.ErrConfiguration, "detect", "speech", "Speech detector is not configured", nil),
	}
	silence := &fakeDetector{name: MethodSilence, chapters: []Chapter{{Start: 0, End: 600}}}
	o := newTestOrchestrator(t, map[string]*fakeDetector{MethodSpeech: speech}, silence)

	_, err := o.Detect(context.Background(), "speech", Input{TotalDuration: 600})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if silence.calls != 0 {
		t.Fatalf("non-recoverable errors must not fall back, silence ran %d times", silence.calls)
	}
}

func TestOrchestratorUnknownMethod(t *testing.T) {
	o := newTestOrchestrator(t, nil, nil)

	_, err := o.Detect(context.Background(), "psychic", Input{TotalDuration: 600})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestOrchestratorNormalizesOutcome(t *testing.T) {
	meta := &fakeDetector{name: MethodMetadata, chapters: []Chapter{
		{Start: 300, End: 700, Title: "Late"},
		{Start: 0, End: 120},
	}}
	o := newTestOrchestrator(t, map[string]*fakeDetector{MethodMetadata: meta}, nil)

	out, err := o.Detect(context.Background(), "metadata", Input{TotalDuration: 600})
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if out.Chapters[0].Start != 0 || out.Chapters[0].Title != "Chapter 1" {
		t.Fatalf("outcome not normalised: %+v", out.Chapters)
	}
	if out.Chapters[1].End != 600 {
		t.Fatalf("end not clamped to duration: %+v", out.Chapters[1])
	}
}

func TestOrchestratorCancellationIsNotAbsorbed(t *testing.T) {
	meta := &fakeDetector{name: MethodMetadata}
	silence := &fakeDetector{name: MethodSilence, chapters: []Chapter{{Start: 0, End: 600}}}
	o := newTestOrchestrator(t, map[string]*fakeDetector{MethodMetadata: meta}, silence)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.Detect(ctx, "metadata", Input{TotalDuration: 600})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if silence.calls != 0 {
		t.Fatalf("cancellation must not trigger fallback, silence ran %d times", silence.calls)
	}
}
