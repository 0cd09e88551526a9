// Package logging provides the slog setup shared by the CLI and parser
// internals: format selection and context-based logger injection.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// ErrUnknownFormat is returned when an unrecognized log format is requested.
var ErrUnknownFormat = errors.New("unknown log format")

type _ctxKey struct{}

// WithLogger returns a new context carrying the given logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, _ctxKey{}, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default() if none.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(_ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// NewLogger creates a logger for the given format and level.
// Supported formats: "pretty", "json", "text".
func NewLogger(out io.Writer, format string, level slog.Level) (*slog.Logger, error) {
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	case "text":
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	case "pretty":
		handler = NewPrettyHandler(out, level)
	default:
		return nil, fmt.Errorf("unknown format %q: %w", format, ErrUnknownFormat)
	}
	return slog.New(handler), nil
}

// Compile-time interface check.
var _ slog.Handler = (*PrettyHandler)(nil)

// PrettyHandler writes colored one-line output to an io.Writer. Attributes
// registered via WithAttrs and WithGroup accumulate in the prefix field;
// Handle prepends the prefix to every message. The "file" attribute of a
// record is appended in cyan when present, since nearly every warning this
// project emits is about a specific script file; other inline attributes are
// suppressed in pretty mode (json/text modes carry them via stdlib handlers).
type PrettyHandler struct {
	out    io.Writer
	level  slog.Leveler
	mu     *sync.Mutex
	prefix string
}

// NewPrettyHandler returns a PrettyHandler that writes to out at the given level.
func NewPrettyHandler(out io.Writer, level slog.Leveler) *PrettyHandler {
	return &PrettyHandler{
		out:   out,
		level: level,
		mu:    &sync.Mutex{},
	}
}

var (
	_warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow
	_errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red
	_debugStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // dim
	_cyanStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // cyan
)

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes the record's message with ANSI color based on level.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	msg := h.prefix + r.Message

	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "file" {
			msg += " " + _cyanStyle.Render(a.Value.String())
			return false
		}
		return true
	})

	var line string
	switch {
	case r.Level >= slog.LevelError:
		line = _errorStyle.Render(msg)
	case r.Level >= slog.LevelWarn:
		line = _warnStyle.Render(msg)
	case r.Level < slog.LevelInfo:
		line = _debugStyle.Render(msg)
	default:
		line = msg
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, line+"\n")
	return err
}

// WithAttrs returns a new handler that prepends the given attributes to messages.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	buf := make([]byte, 0, len(h.prefix)+len(attrs)*16)
	buf = append(buf, h.prefix...)
	for _, a := range attrs {
		buf = append(buf, a.Key...)
		buf = append(buf, '=')
		buf = append(buf, a.Value.String()...)
		buf = append(buf, ' ')
	}
	return &PrettyHandler{out: h.out, level: h.level, mu: h.mu, prefix: string(buf)}
}

// WithGroup returns a new handler that prepends the group name to messages.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &PrettyHandler{out: h.out, level: h.level, mu: h.mu, prefix: h.prefix + name + "."}
}
