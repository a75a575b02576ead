// Package timecode converts between clock-style timestamps and seconds.
//
// Chapter files and tool output use a mix of representations: bare second
// counts ("930.5"), MM:SS ("15:30"), and HH:MM:SS ("01:02:03.5"). Parse
// accepts all of them; Format always renders HH:MM:SS with whole seconds.
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse converts a timestamp string to seconds.
//
// Accepted forms, in order of preference:
//   - a bare number ("930", "930.5")
//   - MM:SS ("15:30")
//   - HH:MM:SS ("1:02:03"), fractional seconds allowed in the final field
//
// Anything else falls back to scanning for a leading number; input with no
// usable number at all is an error.
func Parse(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, fmt.Errorf("timecode: empty timestamp")
	}
	if value, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return validate(value, trimmed)
	}
	if strings.Contains(trimmed, ":") {
		if value, err := parseClock(trimmed); err == nil {
			return validate(value, trimmed)
		}
	}
	if value, ok := leadingNumber(trimmed); ok {
		return validate(value, trimmed)
	}
	return 0, fmt.Errorf("timecode: unrecognized timestamp %q", text)
}

// Format renders seconds as zero-padded HH:MM:SS. Fractional seconds are
// truncated toward zero and hours are unbounded.
func Format(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	total := int64(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

// Duration renders the span between start and end as HH:MM:SS.
func Duration(start, end float64) string {
	if end < start {
		return Format(0)
	}
	return Format(end - start)
}

func parseClock(text string) (float64, error) {
	fields := strings.Split(text, ":")
	if len(fields) < 2 || len(fields) > 3 {
		return 0, fmt.Errorf("timecode: expected MM:SS or HH:MM:SS, got %q", text)
	}
	values := make([]float64, 0, len(fields))
	for i, field := range fields {
		field = strings.TrimSpace(field)
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return 0, fmt.Errorf("timecode: bad field %q in %q", field, text)
		}
		if value < 0 {
			return 0, fmt.Errorf("timecode: negative field in %q", text)
		}
		if i < len(fields)-1 && value != math.Trunc(value) {
			return 0, fmt.Errorf("timecode: fractional value outside seconds field in %q", text)
		}
		values = append(values, value)
	}
	if len(values) == 2 {
		return values[0]*60 + values[1], nil
	}
	return values[0]*3600 + values[1]*60 + values[2], nil
}

// leadingNumber extracts a number from the start of junk-suffixed input such
// as "95s" or "120 seconds".
func leadingNumber(text string) (float64, bool) {
	end := 0
	seenDot := false
	for end < len(text) {
		c := text[end]
		if c >= '0' && c <= '9' {
			end++
			continue
		}
		if c == '.' && !seenDot && end > 0 {
			seenDot = true
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.TrimSuffix(text[:end], "."), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func validate(value float64, original string) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("timecode: non-finite timestamp %q", original)
	}
	if value < 0 {
		return 0, fmt.Errorf("timecode: negative timestamp %q", original)
	}
	return value, nil
}
