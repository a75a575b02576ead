// Package progress carries ordered pipeline updates to interactive consumers.
//
// The pipeline publishes typed updates (stage transitions, per-chapter export
// progress, completion, errors) into a Bus. Consumers poll Drain on their own
// cadence; updates arrive in publish order, interleaved with any log records
// mirrored through the slog bridge in handler.go. Nothing blocks: the bus is
// an unbounded in-memory queue, matching the decoupling between the worker
// and the UI thread this replaces.
package progress

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Kind labels an update for consumers that render different event shapes.
type Kind string

const (
	KindLog     Kind = "log"
	KindStage   Kind = "stage"
	KindChapter Kind = "chapter"
	KindDone    Kind = "done"
	KindError   Kind = "error"
)

// Update is a single progress event. Seq increases by one per published
// update, so consumers can detect ordering without relying on timestamps.
type Update struct {
	Seq     uint64
	Kind    Kind
	Time    time.Time
	Level   slog.Level
	Stage   string
	Message string
	Index   int
	Total   int
	Percent float64
}

// Bus is an unbounded FIFO of updates, safe for concurrent publishers.
type Bus struct {
	mu      sync.Mutex
	pending []Update
	seq     uint64
	closed  bool
}

func NewBus() *Bus {
	return &Bus{}
}

// Publish appends an update, stamping Seq and a wall-clock Time when unset.
// Publishing to a closed bus is a no-op.
func (b *Bus) Publish(update Update) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.seq++
	update.Seq = b.seq
	if update.Time.IsZero() {
		update.Time = time.Now()
	}
	b.pending = append(b.pending, update)
}

// Drain returns all pending updates in publish order and clears the queue.
func (b *Bus) Drain() []Update {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.pending) == 0 {
		return nil
	}
	out := b.pending
	b.pending = nil
	return out
}

// Close marks the bus closed. Pending updates remain drainable.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

// Closed reports whether the bus has been closed.
func (b *Bus) Closed() bool {
	if b == nil {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Stage publishes a stage-transition update.
func (b *Bus) Stage(stage, message string) {
	b.Publish(Update{Kind: KindStage, Level: slog.LevelInfo, Stage: stage, Message: message})
}

// Chapter publishes per-chapter export progress. Index is 1-based.
func (b *Bus) Chapter(index, total int, message string) {
	percent := 0.0
	if total > 0 {
		percent = float64(index) / float64(total) * 100
	}
	b.Publish(Update{
		Kind:    KindChapter,
		Level:   slog.LevelInfo,
		Stage:   "export",
		Message: message,
		Index:   index,
		Total:   total,
		Percent: percent,
	})
}

// Done publishes a completion update.
func (b *Bus) Done(message string) {
	b.Publish(Update{Kind: KindDone, Level: slog.LevelInfo, Message: message, Percent: 100})
}

// Error publishes a failure update.
func (b *Bus) Error(stage string, err error) {
	if err == nil {
		return
	}
	b.Publish(Update{Kind: KindError, Level: slog.LevelError, Stage: stage, Message: err.Error()})
}

// Stagef publishes a formatted stage update.
func (b *Bus) Stagef(stage, format string, args ...any) {
	b.Stage(stage, fmt.Sprintf(format, args...))
}
