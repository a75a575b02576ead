// Package services defines shared utilities consumed by the pipeline stages
// and external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and stage names for logging
//     and progress correlation.
//   - Structured error markers plus the Wrap helper that classify failures
//     (probe, format, extraction, recognition) for fallback decisions and
//     user-facing reporting.
//
// Use these helpers when wiring new stage logic so operational behaviour
// stays uniform across the pipeline.
package services
