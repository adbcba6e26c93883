package logger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// persistenceWords mark info messages about storage, which are shown in
// green.
var persistenceWords = []string{"saved", "loaded", "snapshot", "persist", "pushed", "restored"}

// ColorHandler is a slog.Handler writing one colored line per record:
// time, level, message and key=value attributes. Warnings are yellow,
// errors red and storage messages green.
type ColorHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	prefix string // preformatted attrs from WithAttrs
	group  string
	color  bool
}

// NewColorHandler creates a ColorHandler writing to w. opts may be nil.
func NewColorHandler(w io.Writer, opts *slog.HandlerOptions) *ColorHandler {
	h := &ColorHandler{mu: &sync.Mutex{}, w: w, color: true}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

// WithoutColor disables ANSI escapes, for files and tests.
func (h *ColorHandler) WithoutColor() *ColorHandler {
	c := *h
	c.color = false
	return &c
}

func (h *ColorHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.opts.Level != nil {
		min = h.opts.Level.Level()
	}
	return level >= min
}

func (h *ColorHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	if !r.Time.IsZero() {
		buf.WriteString(h.paint(colorGray, r.Time.Format(time.DateTime)))
		buf.WriteByte(' ')
	}
	buf.WriteString(h.paint(levelColor(r.Level, ""), fmt.Sprintf("%-5s", r.Level.String())))
	buf.WriteByte(' ')
	buf.WriteString(h.paint(levelColor(r.Level, r.Message), r.Message))
	buf.WriteString(h.prefix)
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&buf, h.group, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	c := *h
	var buf bytes.Buffer
	buf.WriteString(h.prefix)
	for _, a := range attrs {
		h.appendAttr(&buf, h.group, a)
	}
	c.prefix = buf.String()
	return &c
}

func (h *ColorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	if c.group != "" {
		c.group += "." + name
	} else {
		c.group = name
	}
	return &c
}

func (h *ColorHandler) appendAttr(buf *bytes.Buffer, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			h.appendAttr(buf, key, ga)
		}
		return
	}
	val := a.Value.String()
	if strings.ContainsAny(val, " \t\"=") {
		val = fmt.Sprintf("%q", val)
	}
	buf.WriteByte(' ')
	buf.WriteString(h.paint(colorGray, key+"="))
	buf.WriteString(val)
}

func (h *ColorHandler) paint(color, s string) string {
	if !h.color || color == "" {
		return s
	}
	return color + s + colorReset
}

// levelColor picks the color for a level, or for an info message when msg
// is non-empty.
func levelColor(level slog.Level, msg string) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	case level >= slog.LevelInfo && msg != "":
		lower := strings.ToLower(msg)
		for _, w := range persistenceWords {
			if strings.Contains(lower, w) {
				return colorGreen
			}
		}
	}
	return ""
}
