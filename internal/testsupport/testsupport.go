// Package testsupport provides shared fixtures for tests that drive the
// pipeline against fake external tools.
package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"chapterize/internal/config"
)

// Script writes an executable shell script into dir and returns its path.
func Script(t testing.TB, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write script %s: %v", name, err)
	}
	return path
}

// Audiobook writes a placeholder audiobook file and returns its path. The
// fake tools never read it, preflight only needs it to exist.
func Audiobook(t testing.TB, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "book.m4b")
	if err := os.WriteFile(path, []byte("not really audio"), 0o644); err != nil {
		t.Fatalf("write audiobook: %v", err)
	}
	return path
}

// FakeFFprobe writes an ffprobe stand-in that reports a ten-minute file. It
// answers the three query shapes the pipeline issues: the bare duration
// query, the chapter listing (with the given JSON), and the stream/format
// inspection.
func FakeFFprobe(t testing.TB, dir, chaptersJSON string) string {
	t.Helper()
	body := fmt.Sprintf(`#!/bin/sh
case "$*" in
*noprint_wrappers*) echo "600.000000" ;;
*show_chapters*) cat <<'EOF'
%s
EOF
;;
*) cat <<'EOF'
{"streams": [{"index": 0, "codec_name": "aac", "codec_type": "audio", "sample_rate": "44100", "channels": 2}], "format": {"duration": "600.000000", "size": "1048576", "format_name": "mov,mp4,m4a"}}
EOF
;;
esac
`, chaptersJSON)
	return Script(t, dir, "ffprobe", body)
}

// FakeFFmpeg writes an ffmpeg stand-in. Silencedetect scans print the given
// lines on stderr; every other invocation touches its final argument, which
// is where ffmpeg puts the output file.
func FakeFFmpeg(t testing.TB, dir, silenceLines string) string {
	t.Helper()
	body := fmt.Sprintf(`#!/bin/sh
case "$*" in
*silencedetect*) cat >&2 <<'EOF'
%s
EOF
;;
*)
for last; do :; done
: > "$last"
;;
esac
`, silenceLines)
	return Script(t, dir, "ffmpeg", body)
}

// ConfigOption customizes a generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose tools point at fake scripts under a
// fresh temp directory. The default ffprobe reports no embedded chapters and
// the default ffmpeg finds no silence.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Output.Dir = filepath.Join(base, "chapters")
	cfgVal.Tools.FFmpeg = FakeFFmpeg(t, base, "")
	cfgVal.Tools.FFprobe = FakeFFprobe(t, base, `{"chapters": []}`)

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithChapters swaps in an ffprobe that reports the given chapter JSON.
func WithChapters(chaptersJSON string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tools.FFprobe = FakeFFprobe(b.t, b.baseDir, chaptersJSON)
	}
}

// WithSilence swaps in an ffmpeg whose silencedetect scan emits the given
// lines.
func WithSilence(lines string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tools.FFmpeg = FakeFFmpeg(b.t, b.baseDir, lines)
	}
}

// BaseDir returns the temp directory backing a generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Output.Dir)
}
