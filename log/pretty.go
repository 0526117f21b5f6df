package log

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/mattn/go-isatty"
)

// ANSI color codes for pretty printing.
const (
	colorReset   = "\033[0m"
	colorGray    = "\033[90m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// prettyHandler renders records for humans. In text format each record is
// one line of key=value pairs; in JSON format each record is an indented
// object. Nested groups, including those produced by [slog.LogValuer]
// values, are flattened into dotted keys. Colors are used only when the
// output is a terminal.
type prettyHandler struct {
	opts   slog.HandlerOptions
	format Format
	color  bool
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr // from WithAttrs, keys already qualified
	prefix string      // from WithGroup, with trailing dot
}

func newPrettyHandler(
	w io.Writer,
	format Format,
	opts *slog.HandlerOptions,
) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		format: format,
		color:  isTerminal(w),
		mu:     &sync.Mutex{},
		w:      w,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}

	return level >= minLevel
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		fields = h.appendAttr(fields, "", slog.Time(slog.TimeKey, r.Time))
	}

	fields = h.appendAttr(fields, "", slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			fields = append(fields, slog.String(
				slog.SourceKey,
				src.File+":"+strconv.Itoa(src.Line),
			))
		}
	}

	fields = append(fields, slog.String(slog.MessageKey, r.Message))
	fields = append(fields, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		fields = h.appendAttr(fields, h.prefix, a)

		return true
	})

	buf := new(bytes.Buffer)

	if h.format == FormatJSON {
		h.writeJSON(buf, r.Level, fields)
	} else {
		h.writeText(buf, r.Level, fields)
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(c.attrs, h.attrs)

	for _, a := range attrs {
		c.attrs = h.appendAttr(c.attrs, h.prefix, a)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

// appendAttr resolves a, applies ReplaceAttr, and appends it to dst with its
// key qualified by prefix. Groups are expanded recursively.
func (h *prettyHandler) appendAttr(
	dst []slog.Attr,
	prefix string,
	a slog.Attr,
) []slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if len(group) == 0 {
			return dst
		}

		sub := prefix
		if a.Key != "" {
			sub = prefix + a.Key + "."
		}

		for _, ga := range group {
			dst = h.appendAttr(dst, sub, ga)
		}

		return dst
	}

	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
		if a.Equal(slog.Attr{}) {
			return dst
		}
	}

	a.Key = prefix + a.Key

	return append(dst, a)
}

func (h *prettyHandler) paint(buf *bytes.Buffer, color, s string) {
	if h.color {
		buf.WriteString(color)
		buf.WriteString(s)
		buf.WriteString(colorReset)

		return
	}

	buf.WriteString(s)
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	case level >= slog.LevelInfo:
		return colorGreen
	default:
		return colorBlue
	}
}

func valueColor(v slog.Value) string {
	switch v.Kind() {
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return colorYellow

	case slog.KindBool:
		if v.Bool() {
			return colorGreen
		}

		return colorRed

	case slog.KindDuration:
		return colorMagenta

	case slog.KindTime:
		return colorBlue

	default:
		return colorCyan
	}
}

func (h *prettyHandler) writeText(
	buf *bytes.Buffer,
	level slog.Level,
	fields []slog.Attr,
) {
	for i, a := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}

		h.paint(buf, colorGray, a.Key)
		buf.WriteByte('=')

		color := valueColor(a.Value)
		if a.Key == slog.LevelKey {
			color = levelColor(level)
		}

		h.paint(buf, color, textValue(a.Value))
	}
}

// textValue renders v, quoting strings that would be ambiguous on one line.
func textValue(v slog.Value) string {
	s := v.String()
	if v.Kind() != slog.KindString {
		return s
	}

	for _, r := range s {
		if r == ' ' || r == '=' || r == '"' || r < 0x20 {
			return strconv.Quote(s)
		}
	}

	if s == "" {
		return `""`
	}

	return s
}

func (h *prettyHandler) writeJSON(
	buf *bytes.Buffer,
	level slog.Level,
	fields []slog.Attr,
) {
	buf.WriteString("{\n")

	for i, a := range fields {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString("  ")
		h.paint(buf, colorGray, strconv.Quote(a.Key))
		buf.WriteString(": ")

		color := valueColor(a.Value)
		if a.Key == slog.LevelKey {
			color = levelColor(level)
		}

		h.paint(buf, color, jsonValue(a.Value))
	}

	buf.WriteString("\n}")
}

func jsonValue(v slog.Value) string {
	var x any

	switch v.Kind() {
	case slog.KindInt64:
		x = v.Int64()
	case slog.KindUint64:
		x = v.Uint64()
	case slog.KindFloat64:
		x = v.Float64()
	case slog.KindBool:
		x = v.Bool()
	case slog.KindAny:
		x = v.Any()
		if err, ok := x.(error); ok {
			x = err.Error()
		}
	default:
		x = v.String()
	}

	b, err := json.Marshal(x)
	if err != nil {
		return strconv.Quote(v.String())
	}

	return string(b)
}
