package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrUnavailable reports that the transcriber binary cannot run at all, as
// opposed to a single sample failing. Callers use it to distinguish "give up
// on speech recognition" from "skip this sample".
var ErrUnavailable = errors.New("transcriber unavailable")

// Recognizer converts one audio sample into plain text. An empty string with
// a nil error means the sample carried no recognizable speech.
type Recognizer interface {
	Recognize(ctx context.Context, wavPath string) (string, error)
}

// Client shells out to a configured speech-to-text binary.
type Client struct {
	binary string
}

// NewClient returns a Client for the given binary. An empty binary defaults
// to "whisper".
func NewClient(binary string) *Client {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "whisper"
	}
	return &Client{binary: binary}
}

// Binary returns the configured transcriber command for logging.
func (c *Client) Binary() string {
	return c.binary
}

// Recognize transcribes a single WAV sample. The tool's stdout is preferred;
// when it prints nothing, the .txt sidecar some tools write next to the
// input is read instead. A missing binary reports ErrUnavailable.
func (c *Client) Recognize(ctx context.Context, wavPath string) (string, error) {
	if strings.TrimSpace(wavPath) == "" {
		return "", errors.New("transcribe: empty sample path")
	}
	if _, err := exec.LookPath(c.binary); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnavailable, c.binary, err)
	}

	cmd := exec.CommandContext(ctx, c.binary, wavPath)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("transcribe: %s: %w", c.binary, err)
	}

	text := strings.TrimSpace(string(output))
	if text == "" {
		text = readSidecar(wavPath)
	}
	return text, nil
}

// readSidecar loads <sample>.txt when the tool writes its transcript to a
// file instead of stdout. Absence is not an error; it just means no speech.
func readSidecar(wavPath string) string {
	base := strings.TrimSuffix(filepath.Base(wavPath), filepath.Ext(wavPath))
	txtPath := filepath.Join(filepath.Dir(wavPath), base+".txt")
	data, err := os.ReadFile(txtPath)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
