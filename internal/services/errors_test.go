package services_test

import (
	"errors"
	"strings"
	"testing"

	"chapterize/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExtraction, "export", "extract", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"export", "extract", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrProbe, "probe", "inspect", "ffprobe missing", nil)
	if !errors.Is(err, services.ErrProbe) {
		t.Fatalf("expected probe marker, got %v", err)
	}
	if strings.Contains(err.Error(), "<nil>") {
		t.Fatalf("nil cause leaked into message: %q", err.Error())
	}
}

func TestWrapNilMarkerDefaultsToExtraction(t *testing.T) {
	err := services.Wrap(nil, "export", "extract", "failed", nil)
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected extraction marker for nil input, got %v", err)
	}
}

func TestRecoverable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"probe", services.Wrap(services.ErrProbe, "detect", "metadata", "probe failed", nil), true},
		{"recognition", services.Wrap(services.ErrRecognition, "detect", "speech", "transcriber missing", nil), true},
		{"format", services.Wrap(services.ErrFormat, "detect", "file", "bad chapter file", nil), false},
		{"validation", services.Wrap(services.ErrValidation, "detect", "dispatch", "unknown method", nil), false},
		{"configuration", services.Wrap(services.ErrConfiguration, "pipeline", "run", "missing config", nil), false},
		{"plain", errors.New("io failure"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.Recoverable(tc.err); got != tc.want {
				t.Fatalf("Recoverable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
