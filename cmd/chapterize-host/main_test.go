package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chapterize/internal/progress"
	"chapterize/internal/services"
	"chapterize/internal/testsupport"
)

const embeddedChapters = `{"chapters": [
  {"id": 0, "start_time": "0.000000", "end_time": "300.000000", "tags": {"title": "Intro"}},
  {"id": 1, "start_time": "300.000000", "end_time": "600.000000", "tags": {"title": "The Road"}}
]}`

func hostArgs(t *testing.T, dir string, extra ...string) []string {
	t.Helper()
	args := []string{
		"-input", testsupport.Audiobook(t, dir),
		"-output", filepath.Join(dir, "out"),
		"-ffmpeg", testsupport.FakeFFmpeg(t, dir, ""),
		"-ffprobe", testsupport.FakeFFprobe(t, dir, embeddedChapters),
		"-config", filepath.Join(dir, "no-config.toml"),
	}
	return append(args, extra...)
}

func TestHostPrintsChapterCount(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer

	if err := run(hostArgs(t, dir), &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := stdout.String(); got != "CHAPTER_COUNT:2\n" {
		t.Fatalf("stdout = %q, want exactly CHAPTER_COUNT:2", got)
	}
	for _, fragment := range []string{"[detect]", "[export]", "1/2 Intro", "2/2 The Road"} {
		if !strings.Contains(stderr.String(), fragment) {
			t.Fatalf("stderr missing %q:\n%s", fragment, stderr.String())
		}
	}
	for _, name := range []string{"book_01_Intro.mp3", "book_02_The_Road.mp3", "book_chapters.json"} {
		if _, err := os.Stat(filepath.Join(dir, "out", name)); err != nil {
			t.Fatalf("missing output %s: %v", name, err)
		}
	}
}

func TestHostRequiresInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(nil, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "-input") {
		t.Fatalf("err = %v, want missing -input", err)
	}
	if stdout.Len() != 0 {
		t.Fatalf("stdout should stay empty, got %q", stdout.String())
	}
}

func TestHostBadTimingFileFails(t *testing.T) {
	dir := t.TempDir()
	timingPath := filepath.Join(dir, "chapters.json")
	if err := os.WriteFile(timingPath, []byte("not json"), 0o644); err != nil {
		t.Fatalf("write timing file: %v", err)
	}

	var stdout, stderr bytes.Buffer
	err := run(hostArgs(t, dir, "-json", timingPath), &stdout, &stderr)
	if !errors.Is(err, services.ErrFormat) {
		t.Fatalf("err = %v, want format error", err)
	}
	if stdout.Len() != 0 {
		t.Fatalf("failed run must not print a chapter count, got %q", stdout.String())
	}
}

func TestRelayUpdates(t *testing.T) {
	var buf bytes.Buffer
	relayUpdates(&buf, []progress.Update{
		{Kind: progress.KindStage, Stage: "detect", Message: "detecting chapters using metadata"},
		{Kind: progress.KindChapter, Stage: "export", Index: 1, Total: 3, Message: "Intro"},
		{Kind: progress.KindDone, Message: "3 chapters exported"},
	})

	want := "[detect] detecting chapters using metadata\n" +
		"[export] 1/3 Intro\n" +
		"[run] 3 chapters exported\n"
	if buf.String() != want {
		t.Fatalf("relay output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestRelayChapterNumbersMatchExportOrder(t *testing.T) {
	var buf bytes.Buffer
	for i := 1; i <= 3; i++ {
		relayUpdates(&buf, []progress.Update{{
			Kind:    progress.KindChapter,
			Stage:   "export",
			Index:   i,
			Total:   3,
			Message: fmt.Sprintf("Chapter %d", i),
		}})
	}
	for i := 1; i <= 3; i++ {
		if !strings.Contains(buf.String(), fmt.Sprintf("[export] %d/3 Chapter %d", i, i)) {
			t.Fatalf("missing chapter %d line:\n%s", i, buf.String())
		}
	}
}
