package detect

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"chapterize/internal/config"
)

// testConfig returns defaults with the tool paths pointed at the given fake
// binaries.
func testConfig(t *testing.T, ffmpeg, ffprobe string) *config.Config {
	t.Helper()
	cfg := config.Default()
	if ffmpeg != "" {
		cfg.Tools.FFmpeg = ffmpeg
	}
	if ffprobe != "" {
		cfg.Tools.FFprobe = ffprobe
	}
	return &cfg
}

// writeScript drops an executable shell script into a temp dir and returns
// its path.
func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write %s script: %v", name, err)
	}
	return path
}

// echoTool fakes a tool that prints fixed output and exits with the given
// code.
func echoTool(t *testing.T, name, output string, exitCode int) string {
	t.Helper()
	body := fmt.Sprintf("#!/bin/sh\ncat <<'EOF'\n%s\nEOF\nexit %d\n", output, exitCode)
	return writeScript(t, name, body)
}

// scriptedRecognizer replays a fixed sequence of transcripts, one per call.
type scriptedRecognizer struct {
	texts []string
	errs  []error
	calls int
}

func (r *scriptedRecognizer) Recognize(ctx context.Context, wavPath string) (string, error) {
	i := r.calls
	r.calls++
	var text string
	if i < len(r.texts) {
		text = r.texts[i]
	}
	var err error
	if i < len(r.errs) {
		err = r.errs[i]
	}
	return text, err
}
