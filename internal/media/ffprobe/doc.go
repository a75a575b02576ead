// Package ffprobe wraps the ffprobe CLI for media inspection: stream layout,
// container duration and size, and embedded chapter marks.
package ffprobe
