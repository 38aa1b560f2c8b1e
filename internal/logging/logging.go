package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

// A slog handler that can be reconfigured after creation.
//
// The handler starts in a buffered state: records are held in memory so
// that output produced before flag parsing still honors the final level,
// formatter, and stream. Flush commits the configuration and replays the
// backlog.
type Handler interface {
	slog.Handler

	// Sets the minimum level a record must have to be emitted.
	SetLevel(level slog.Level)

	// Sets the formatter used to render records.
	SetFormatter(formatter Formatter)

	// Sets the stream records are written to.
	SetStream(stream io.Writer)

	// Replays buffered records and switches to direct writes.
	Flush()
}

// Returns a buffered handler writing to stderr at the info level.
func NewHandler() Handler {
	return &handler{
		shared: &shared{
			level:     slog.LevelInfo,
			formatter: NewPrettyFormatter(false),
			stream:    os.Stderr,
			buffered:  true,
		},
	}
}

// Configuration and backlog shared by a handler and its WithAttrs and
// WithGroup derivatives.
type shared struct {
	mu        sync.Mutex
	level     slog.Level
	formatter Formatter
	stream    io.Writer
	buffered  bool
	backlog   []entry
}

// A record captured while the handler is buffered.
type entry struct {
	record slog.Record
	group  string
	attrs  []slog.Attr
}

type handler struct {
	shared *shared
	group  string
	attrs  []slog.Attr
}

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	h.shared.mu.Lock()
	defer h.shared.mu.Unlock()

	// Buffer everything; the final level is applied on Flush.
	return h.shared.buffered || level >= h.shared.level
}

func (h *handler) Handle(_ context.Context, record slog.Record) error {
	h.shared.mu.Lock()
	defer h.shared.mu.Unlock()

	if h.shared.buffered {
		h.shared.backlog = append(h.shared.backlog, entry{
			record: record.Clone(),
			group:  h.group,
			attrs:  h.attrs,
		})
		return nil
	}

	return h.write(entry{record: record, group: h.group, attrs: h.attrs})
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = append(clone.attrs[:len(clone.attrs):len(clone.attrs)], attrs...)
	return &clone
}

func (h *handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if clone.group != "" {
		clone.group += "."
	}
	clone.group += name
	return &clone
}

func (h *handler) SetLevel(level slog.Level) {
	h.shared.mu.Lock()
	defer h.shared.mu.Unlock()
	h.shared.level = level
}

func (h *handler) SetFormatter(formatter Formatter) {
	h.shared.mu.Lock()
	defer h.shared.mu.Unlock()
	h.shared.formatter = formatter
}

func (h *handler) SetStream(stream io.Writer) {
	h.shared.mu.Lock()
	defer h.shared.mu.Unlock()
	h.shared.stream = stream
}

func (h *handler) Flush() {
	h.shared.mu.Lock()
	defer h.shared.mu.Unlock()

	for _, e := range h.shared.backlog {
		if e.record.Level < h.shared.level {
			continue
		}
		_ = h.write(e)
	}
	h.shared.backlog = nil
	h.shared.buffered = false
}

// Renders and writes a single entry. Callers hold the mutex.
func (h *handler) write(e entry) error {
	line := h.shared.formatter.Format(e.record, e.group, e.attrs)
	_, err := io.WriteString(h.shared.stream, line)
	return err
}
