package preflight

import (
	"fmt"
	"strings"

	"chapterize/internal/config"
	"chapterize/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Request scopes the checks to one pipeline run.
type Request struct {
	Input     string
	OutputDir string
	Method    string
}

// RunAll executes the checks a run depends on: the input file, the output
// directory, and the external tool set for the chosen detection method.
func RunAll(cfg *config.Config, req Request) []Result {
	if cfg == nil {
		return []Result{{Name: "Configuration", Detail: "missing configuration"}}
	}

	results := []Result{
		CheckInputFile(req.Input),
		CheckOutputDirectory(req.OutputDir),
	}

	for _, status := range CheckTools(cfg, req.Method) {
		result := Result{Name: status.Name, Passed: status.Available, Detail: status.Command}
		if !status.Available {
			result.Detail = status.Detail
			if status.Optional {
				result.Passed = true
				result.Detail = status.Detail + " (optional)"
			}
		}
		results = append(results, result)
	}

	return results
}

// CheckTools evaluates tool availability for the chosen detection method.
// The transcriber is only required for speech detection.
func CheckTools(cfg *config.Config, method string) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for silence scanning and chapter extraction",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for media inspection",
		},
		{
			Name:        "Transcriber",
			Command:     cfg.TranscriberBinary(),
			Description: "Required for speech-based chapter detection",
			Optional:    !strings.EqualFold(method, "speech"),
		},
	}
	return deps.CheckBinaries(requirements)
}

// Failures returns the subset of results that did not pass.
func Failures(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}

// Summarize renders failed checks as a single message for error wrapping.
func Summarize(failed []Result) string {
	if len(failed) == 0 {
		return ""
	}
	parts := make([]string, 0, len(failed))
	for _, result := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", result.Name, result.Detail))
	}
	return strings.Join(parts, "; ")
}
