// Package ffmpegx wraps the ffmpeg CLI for silence scanning and audio
// segment extraction.
//
// Every invocation runs under context.WithoutCancel: a pipeline stop request
// must never truncate an in-flight write, so cancellation takes effect
// between invocations, not during one.
package ffmpegx

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// Silence is one detected span of quiet audio, in seconds from file start.
type Silence struct {
	Start float64
	End   float64
}

// Duration returns the span length in seconds.
func (s Silence) Duration() float64 {
	return s.End - s.Start
}

// ScanOptions tunes the silencedetect filter.
type ScanOptions struct {
	// ThresholdDB is the noise floor in dBFS; audio below it counts as silence.
	ThresholdDB float64
	// MinSilence is the minimum quiet span length in seconds.
	MinSilence float64
}

var (
	silenceStartRe = regexp.MustCompile(`silence_start:\s*(-?[\d.]+)`)
	silenceEndRe   = regexp.MustCompile(`silence_end:\s*(-?[\d.]+)`)
)

// ScanSilence decodes the whole file through the silencedetect filter and
// returns the spans it reports. The filter logs to stderr; spans are scraped
// from the combined output. A nonzero exit is tolerated when spans were still
// produced.
func ScanSilence(ctx context.Context, binary, path string, opts ScanOptions) ([]Silence, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("ffmpeg silence scan: empty path")
	}

	filter := fmt.Sprintf("silencedetect=noise=%sdB:d=%s",
		formatNumber(opts.ThresholdDB), formatNumber(opts.MinSilence))
	args := []string{
		"-hide_banner",
		"-nostats",
		"-i", path,
		"-af", filter,
		"-f", "null", "-",
	}

	cmd := exec.CommandContext(context.WithoutCancel(ctx), binary, args...)
	output, runErr := cmd.CombinedOutput()

	spans := parseSilence(string(output))
	if len(spans) == 0 && runErr != nil {
		return nil, fmt.Errorf("ffmpeg silence scan: %w: %s", runErr, tail(string(output)))
	}
	return spans, nil
}

// parseSilence pairs the i-th silence_start with the i-th silence_end. An
// unterminated final span (file ends while silent) is dropped.
func parseSilence(output string) []Silence {
	starts := silenceStartRe.FindAllStringSubmatch(output, -1)
	ends := silenceEndRe.FindAllStringSubmatch(output, -1)

	count := len(starts)
	if len(ends) < count {
		count = len(ends)
	}

	spans := make([]Silence, 0, count)
	for i := 0; i < count; i++ {
		start, err1 := strconv.ParseFloat(starts[i][1], 64)
		end, err2 := strconv.ParseFloat(ends[i][1], 64)
		if err1 != nil || err2 != nil || end < start {
			continue
		}
		if start < 0 {
			start = 0
		}
		spans = append(spans, Silence{Start: start, End: end})
	}
	return spans
}

// ExtractSegment copies one chapter span into its own file. codecArgs selects
// re-encode or stream copy; the caller builds them from the output format.
func ExtractSegment(ctx context.Context, binary, input string, start, duration float64, codecArgs []string, output string) error {
	if duration <= 0 {
		return fmt.Errorf("ffmpeg extract: invalid duration %v", duration)
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(start),
		"-i", input,
		"-t", formatSeconds(duration),
	}
	args = append(args, codecArgs...)
	args = append(args, "-vn", output)

	cmd := exec.CommandContext(context.WithoutCancel(ctx), binary, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg extract: %w: %s", err, tail(string(out)))
	}
	return nil
}

// ExtractSample renders a short mono 16kHz PCM window for speech recognition.
func ExtractSample(ctx context.Context, binary, input string, start, window float64, wavPath string) error {
	if window <= 0 {
		return fmt.Errorf("ffmpeg sample: invalid window %v", window)
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(start),
		"-i", input,
		"-t", formatSeconds(window),
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		wavPath,
	}
	cmd := exec.CommandContext(context.WithoutCancel(ctx), binary, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg sample: %w: %s", err, tail(string(out)))
	}
	return nil
}

// CodecArgs maps an output format to ffmpeg encoding arguments. mp3 and
// m4a/m4b re-encode at the requested bitrate; any other format stream-copies
// and ignores bitrate and mono.
func CodecArgs(format, bitrate string, mono bool) []string {
	var args []string
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "mp3":
		args = []string{"-c:a", "libmp3lame", "-b:a", bitrate}
	case "m4a", "m4b":
		args = []string{"-c:a", "aac", "-b:a", bitrate}
	default:
		return []string{"-c", "copy"}
	}
	if mono {
		args = append(args, "-ac", "1")
	}
	return args
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 3, 64)
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// tail trims tool output to its last few lines so wrapped errors stay
// readable.
func tail(output string) string {
	trimmed := strings.TrimSpace(output)
	lines := strings.Split(trimmed, "\n")
	if len(lines) <= 4 {
		return trimmed
	}
	return strings.Join(lines[len(lines)-4:], "\n")
}
