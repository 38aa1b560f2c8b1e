package logging

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fatih/color"
)

// Renders a log record to the line written to the stream, including the
// trailing newline.
type Formatter interface {
	Format(record slog.Record, group string, attrs []slog.Attr) string
}

// Renders records for human consumption: a colored level tag, the
// message, and key=value attributes. Verbose mode adds the timestamp and
// the handler group.
type PrettyFormatter struct {
	color   bool
	verbose bool
}

// Returns a pretty formatter. Color should be enabled only when the
// stream is an interactive terminal.
func NewPrettyFormatter(color bool) *PrettyFormatter {
	return &PrettyFormatter{color: color}
}

// Enables or disables verbose rendering.
func (f *PrettyFormatter) SetVerbose(verbose bool) {
	f.verbose = verbose
}

func (f *PrettyFormatter) Format(record slog.Record, group string, attrs []slog.Attr) string {
	var b strings.Builder

	if f.verbose {
		b.WriteString(record.Time.Format("15:04:05.000"))
		b.WriteByte(' ')
	}

	b.WriteString(f.tag(record.Level))
	b.WriteByte(' ')

	if f.verbose && group != "" {
		b.WriteString(group)
		b.WriteString(": ")
	}

	b.WriteString(record.Message)

	for _, attr := range attrs {
		writeAttr(&b, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		writeAttr(&b, attr)
		return true
	})

	b.WriteByte('\n')
	return b.String()
}

// Returns the level tag, colored when enabled.
func (f *PrettyFormatter) tag(level slog.Level) string {
	name, paint := levelStyle(level)
	if !f.color {
		return name
	}
	return paint.Sprint(name)
}

func levelStyle(level slog.Level) (string, *color.Color) {
	switch {
	case level >= slog.LevelError:
		return "ERROR", color.New(color.FgRed, color.Bold)
	case level >= slog.LevelWarn:
		return "WARN ", color.New(color.FgYellow)
	case level >= slog.LevelInfo:
		return "INFO ", color.New(color.FgGreen)
	default:
		return "DEBUG", color.New(color.FgCyan)
	}
}

func writeAttr(b *strings.Builder, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	fmt.Fprintf(b, " %s=%v", attr.Key, attr.Value.Resolve())
}
