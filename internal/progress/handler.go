package progress

import (
	"context"
	"log/slog"

	"chapterize/internal/logging"
)

// Handler is a slog.Handler that mirrors log records into a Bus as KindLog
// updates. Composed with the console or file handler through logging.TeeLogger
// it gives consumers one ordered stream of logs and progress events.
type Handler struct {
	bus   *Bus
	level slog.Level
	attrs []slog.Attr
}

// NewHandler wraps bus in a slog bridge that forwards records at or above
// level.
func NewHandler(bus *Bus, level slog.Level) *Handler {
	return &Handler{bus: bus, level: level}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle publishes the record as a KindLog update. The update's stage is the
// stage attr when one is present on the record or the logger; the component
// attr stands in for loggers that never entered a stage.
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	stage := findAttr(h.attrs, logging.FieldStage)
	component := findAttr(h.attrs, logging.FieldComponent)
	record.Attrs(func(attr slog.Attr) bool {
		switch attr.Key {
		case logging.FieldStage:
			stage = attr.Value.Resolve().String()
		case logging.FieldComponent:
			component = attr.Value.Resolve().String()
		}
		return true
	})
	if stage == "" {
		stage = component
	}
	h.bus.Publish(Update{
		Kind:    KindLog,
		Time:    record.Time,
		Level:   record.Level,
		Stage:   stage,
		Message: record.Message,
	})
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &Handler{bus: h.bus, level: h.level}
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return next
}

func (h *Handler) WithGroup(string) slog.Handler {
	return h
}

// findAttr returns the last value for key, so the most recent With wins.
func findAttr(attrs []slog.Attr, key string) string {
	value := ""
	for _, attr := range attrs {
		if attr.Key == key {
			value = attr.Value.Resolve().String()
		}
	}
	return value
}
