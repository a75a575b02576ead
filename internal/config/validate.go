package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var knownMethods = map[string]struct{}{
	"metadata": {},
	"silence":  {},
	"speech":   {},
	"json":     {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDetection(); err != nil {
		return err
	}
	return c.validateOutput()
}

func (c *Config) validateDetection() error {
	if _, ok := knownMethods[c.Detection.Method]; !ok {
		return fmt.Errorf("detection.method must be one of metadata, silence, speech, json (got %q)", c.Detection.Method)
	}
	if c.Detection.SilenceThresholdDB >= 0 {
		return errors.New("detection.silence_threshold_db must be negative (decibels relative to full scale)")
	}
	if err := ensurePositiveMap(map[string]float64{
		"detection.silence_min_duration": c.Detection.SilenceMinDuration,
		"detection.min_chapter_seconds":  c.Detection.MinChapterSeconds,
		"detection.speech_interval":      c.Detection.SpeechInterval,
		"detection.speech_window":        c.Detection.SpeechWindow,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateOutput() error {
	if c.Output.Dir == "" {
		return errors.New("output.dir must be set")
	}
	if c.Output.Format == "" {
		return errors.New("output.format must be set")
	}
	if strings.ContainsAny(c.Output.Format, "/\\.") {
		return fmt.Errorf("output.format must be a bare extension like mp3 (got %q)", c.Output.Format)
	}
	if err := validateBitrate(c.Output.Bitrate); err != nil {
		return err
	}
	return nil
}

// validateBitrate accepts ffmpeg bitrate notation: digits with an optional
// k or m suffix.
func validateBitrate(value string) error {
	if value == "" {
		return errors.New("output.bitrate must be set")
	}
	digits := value
	switch value[len(value)-1] {
	case 'k', 'm':
		digits = value[:len(value)-1]
	}
	if _, err := strconv.Atoi(digits); err != nil || digits == "" {
		return fmt.Errorf("output.bitrate must look like 128k or 96k (got %q)", value)
	}
	return nil
}

func ensurePositiveMap(values map[string]float64) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
