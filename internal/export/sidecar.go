package export

import (
	"encoding/json"
	"os"
	"path/filepath"

	"chapterize/internal/services"
	"chapterize/internal/timecode"
)

// Record is one sidecar entry. Clock fields carry HH:MM:SS text for human
// readers; the raw seconds ride alongside for host applications.
type Record struct {
	Chapter      int     `json:"chapter"`
	Title        string  `json:"title"`
	File         string  `json:"file"`
	Start        string  `json:"start"`
	End          string  `json:"end"`
	Duration     string  `json:"duration"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
}

// WriteSidecar persists {base}_chapters.json next to the exported files. The
// sidecar lists only chapters that were actually written, so a stopped run
// produces a truthful, shorter list.
func (e *Exporter) WriteSidecar(input string, exported []Exported) (string, error) {
	records := make([]Record, 0, len(exported))
	for i, item := range exported {
		ch := item.Chapter
		records = append(records, Record{
			Chapter:      i + 1,
			Title:        ch.Title,
			File:         item.File,
			Start:        timecode.Format(ch.Start),
			End:          timecode.Format(ch.End),
			Duration:     timecode.Format(ch.Duration()),
			StartSeconds: ch.Start,
			EndSeconds:   ch.End,
		})
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", services.Wrap(services.ErrExtraction, "export", "sidecar", "Could not encode chapter metadata", err)
	}
	path := filepath.Join(e.opts.OutputDir, BaseName(input)+"_chapters.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", services.Wrap(services.ErrExtraction, "export", "sidecar", "Could not write chapter metadata", err)
	}
	return path, nil
}
