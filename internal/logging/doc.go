// Package logging configures slog-based logging for the chapter pipeline.
//
// Two handler formats are provided: a console handler that renders compact
// human-readable lines for terminal use, and a JSON handler for log files.
// TeeHandler fans a single record out to several handlers, which is how
// pipeline logs are mirrored into the progress update channel.
package logging
