package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeTools()
	c.normalizeDetection()
	if err := c.normalizeOutput(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

// Normalize applies the same cleanup Load performs. Callers that modify a
// loaded config, such as CLI flag overrides, use it before re-validating.
func (c *Config) Normalize() error {
	return c.normalize()
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobeBinary
	}
	c.Tools.Transcriber = strings.TrimSpace(c.Tools.Transcriber)
	if c.Tools.Transcriber == "" {
		c.Tools.Transcriber = defaultTranscriberBinary
	}
}

func (c *Config) normalizeDetection() {
	c.Detection.Method = strings.ToLower(strings.TrimSpace(c.Detection.Method))
	if c.Detection.Method == "" {
		c.Detection.Method = defaultMethod
	}
	if c.Detection.SilenceThresholdDB == 0 {
		c.Detection.SilenceThresholdDB = defaultSilenceThresholdDB
	}
	if c.Detection.SilenceMinDuration <= 0 {
		c.Detection.SilenceMinDuration = defaultSilenceMinDuration
	}
	if c.Detection.MinChapterSeconds <= 0 {
		c.Detection.MinChapterSeconds = defaultMinChapterSeconds
	}
	if c.Detection.SpeechInterval <= 0 {
		c.Detection.SpeechInterval = defaultSpeechInterval
	}
	if c.Detection.SpeechWindow <= 0 {
		c.Detection.SpeechWindow = defaultSpeechWindow
	}
}

func (c *Config) normalizeOutput() error {
	c.Output.Dir = strings.TrimSpace(c.Output.Dir)
	if c.Output.Dir == "" {
		c.Output.Dir = defaultOutputDir
	}
	// Only home-relative paths are expanded; a plain relative dir stays
	// relative to the working directory.
	if strings.HasPrefix(c.Output.Dir, "~") {
		expanded, err := expandPath(c.Output.Dir)
		if err != nil {
			return fmt.Errorf("output.dir: %w", err)
		}
		c.Output.Dir = expanded
	}
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = defaultOutputFormat
	}
	c.Output.Format = strings.TrimPrefix(c.Output.Format, ".")
	c.Output.Bitrate = strings.ToLower(strings.TrimSpace(c.Output.Bitrate))
	if c.Output.Bitrate == "" {
		c.Output.Bitrate = defaultOutputBitrate
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.File = strings.TrimSpace(c.Logging.File)
	if c.Logging.File != "" {
		expanded, err := expandPath(c.Logging.File)
		if err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
		c.Logging.File = expanded
	}
	return nil
}
