package timecode_test

import (
	"math"
	"testing"

	"chapterize/internal/timecode"
)

func TestParseAcceptedForms(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want float64
	}{
		{"integer seconds", "930", 930},
		{"fractional seconds", "930.5", 930.5},
		{"minutes seconds", "15:30", 930},
		{"hours minutes seconds", "1:02:03", 3723},
		{"fractional final field", "1:02:03.5", 3723.5},
		{"zero padded", "00:00:05", 5},
		{"surrounding whitespace", "  12:00 ", 720},
		{"whitespace around fields", "1 : 02 : 03", 3723},
		{"junk suffix fallback", "95s", 95},
		{"zero", "0", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := timecode.Parse(tc.in)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tc.in, err)
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", ":", "::", "a:b:c", "-5", "-1:30"} {
		if _, err := timecode.Parse(in); err == nil {
			t.Fatalf("Parse(%q) succeeded, want error", in)
		}
	}
}

func TestParseRejectsFourFields(t *testing.T) {
	// 1:2:3:4 has no clock meaning; the leading-number fallback still
	// recovers the first field.
	got, err := timecode.Parse("1:2:3:4")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got != 1 {
		t.Fatalf("Parse(\"1:2:3:4\") = %v, want leading-number fallback 1", got)
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00"},
		{59.999, "00:00:59"},
		{60, "00:01:00"},
		{3723.5, "01:02:03"},
		{7325, "02:02:05"},
		{90000, "25:00:00"},
		{-3, "00:00:00"},
	}
	for _, tc := range cases {
		if got := timecode.Format(tc.in); got != tc.want {
			t.Errorf("Format(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDuration(t *testing.T) {
	if got := timecode.Duration(30, 210.7); got != "00:03:00" {
		t.Fatalf("Duration(30, 210.7) = %q, want 00:03:00", got)
	}
	if got := timecode.Duration(100, 50); got != "00:00:00" {
		t.Fatalf("Duration with inverted span = %q, want 00:00:00", got)
	}
}

func TestFormatRoundTripsParse(t *testing.T) {
	for _, seconds := range []float64{0, 5, 930, 3723, 86400 + 125} {
		text := timecode.Format(seconds)
		back, err := timecode.Parse(text)
		if err != nil {
			t.Fatalf("Parse(Format(%v)) returned error: %v", seconds, err)
		}
		if back != seconds {
			t.Fatalf("round trip %v -> %q -> %v", seconds, text, back)
		}
	}
}
