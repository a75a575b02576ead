package detect

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"chapterize/internal/services"
)

func writeChapterFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chapters.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write chapter file: %v", err)
	}
	return path
}

func fileDetector(t *testing.T) *FileDetector {
	t.Helper()
	return NewFileDetector(testConfig(t, "", ""), nil)
}

func TestFileDetectorSecondsAndClockForms(t *testing.T) {
	path := writeChapterFile(t, `[
  {"start": 0, "end": 300, "title": "Intro"},
  {"start": "5:00", "end": "0:12:30", "name": "Middle"},
  {"start": 750, "end": 900}
]`)
	d := fileDetector(t)

	chapters, err := d.Detect(context.Background(), Input{Path: "/tmp/b.mp3", TotalDuration: 900, ChaptersFile: path})
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	want := []Chapter{
		{Start: 0, End: 300, Title: "Intro"},
		{Start: 300, End: 750, Title: "Middle"},
		{Start: 750, End: 900, Title: "Chapter 3"},
	}
	if !reflect.DeepEqual(chapters, want) {
		t.Fatalf("chapters = %+v, want %+v", chapters, want)
	}
}

func TestFileDetectorMillisecondForm(t *testing.T) {
	path := writeChapterFile(t, `[
  {"start_ms": 0, "end_ms": 120500, "title": "One"},
  {"start_ms": 120500, "end_ms": 240000, "title": "Two"}
]`)
	d := fileDetector(t)

	chapters, err := d.Detect(context.Background(), Input{Path: "/tmp/b.mp3", TotalDuration: 240, ChaptersFile: path})
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if len(chapters) != 2 || chapters[0].End != 120.5 {
		t.Fatalf("milliseconds not converted: %+v", chapters)
	}
}

func TestFileDetectorChaptersWrapper(t *testing.T) {
	path := writeChapterFile(t, `{"chapters": [{"start": 0, "end": 60, "title": "Only"}]}`)
	d := fileDetector(t)

	chapters, err := d.Detect(context.Background(), Input{Path: "/tmp/b.mp3", TotalDuration: 60, ChaptersFile: path})
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if len(chapters) != 1 || chapters[0].Title != "Only" {
		t.Fatalf("wrapper form not accepted: %+v", chapters)
	}
}

func TestFileDetectorDropsOutOfRangeEntry(t *testing.T) {
	path := writeChapterFile(t, `[
  {"start": 0, "end": 300, "title": "Valid"},
  {"start": 700, "end": 650, "title": "Backwards"}
]`)
	d := fileDetector(t)

	chapters, err := d.Detect(context.Background(), Input{Path: "/tmp/b.mp3", TotalDuration: 600, ChaptersFile: path})
	if err != nil {
		t.Fatalf("a partially valid file should still load: %v", err)
	}
	if len(chapters) != 1 || chapters[0].Title != "Valid" {
		t.Fatalf("invalid entry should be dropped alone: %+v", chapters)
	}
}

func TestFileDetectorMissingBothPairsIsFatal(t *testing.T) {
	path := writeChapterFile(t, `[
  {"start": 0, "end": 300, "title": "Valid"},
  {"title": "No Times"}
]`)
	d := fileDetector(t)

	_, err := d.Detect(context.Background(), Input{Path: "/tmp/b.mp3", TotalDuration: 600, ChaptersFile: path})
	if !errors.Is(err, services.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestFileDetectorUnparsableTimestampIsFatal(t *testing.T) {
	path := writeChapterFile(t, `[{"start": "abc", "end": 300}]`)
	d := fileDetector(t)

	_, err := d.Detect(context.Background(), Input{Path: "/tmp/b.mp3", TotalDuration: 600, ChaptersFile: path})
	if !errors.Is(err, services.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestFileDetectorUndecodableFile(t *testing.T) {
	path := writeChapterFile(t, `{not json`)
	d := fileDetector(t)

	_, err := d.Detect(context.Background(), Input{Path: "/tmp/b.mp3", TotalDuration: 600, ChaptersFile: path})
	if !errors.Is(err, services.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestFileDetectorAllEntriesDropped(t *testing.T) {
	path := writeChapterFile(t, `[{"start": 700, "end": 650}]`)
	d := fileDetector(t)

	_, err := d.Detect(context.Background(), Input{Path: "/tmp/b.mp3", TotalDuration: 600, ChaptersFile: path})
	if !errors.Is(err, services.ErrFormat) {
		t.Fatalf("expected format error when nothing survives, got %v", err)
	}
}

func TestFileDetectorMissingPath(t *testing.T) {
	d := fileDetector(t)

	_, err := d.Detect(context.Background(), Input{Path: "/tmp/b.mp3", TotalDuration: 600})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFileDetectorIdempotent(t *testing.T) {
	path := writeChapterFile(t, `[
  {"start": 0, "end": 300, "title": "One"},
  {"start": "5:00", "end": "10:00", "title": "Two"}
]`)
	d := fileDetector(t)
	in := Input{Path: "/tmp/b.mp3", TotalDuration: 600, ChaptersFile: path}

	first, err := d.Detect(context.Background(), in)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := d.Detect(context.Background(), in)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("runs differ: %+v vs %+v", first, second)
	}
}
