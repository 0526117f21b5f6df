package log

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestMakeFormatTimeFunc(t *testing.T) {
	at := time.Date(2025, 3, 9, 7, 5, 4, 120000000, time.UTC)

	tests := []struct {
		layout string
		want   string
	}{
		{"rfc3339", "2025-03-09T07:05:04Z"},
		{"RFC3339", "2025-03-09T07:05:04Z"},
		{"RFC-3339-Nano", "2025-03-09T07:05:04.12Z"},
		{"kitchen", "7:05AM"},
		{"DateTime", "2025-03-09 07:05:04"},
		{"ms", "Mar  9 07:05:04.120"},
		{"15:04", "07:05"},
		{"none", ""},
		{"", ""},
		{" \t", ""},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			if got := makeFormatTimeFunc(tt.layout)(at); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestConfig_ReplaceAttr(t *testing.T) {
	c := makeConfig(io.Discard, WithTimeLayout("timeonly"))
	at := time.Date(2025, 1, 1, 13, 14, 15, 0, time.UTC)

	tests := []struct {
		name string
		in   slog.Attr
		want string
	}{
		{"time", slog.Time(slog.TimeKey, at), "13:14:15"},
		{"trace level", slog.Any(slog.LevelKey, slog.Level(LevelTrace)), "TRACE"},
		{"offset level", slog.Any(slog.LevelKey, slog.Level(LevelWarn+1)), "WARN+1"},
		{"other key", slog.String("time-ish", "x"), "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.replaceAttr(nil, tt.in).Value.String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}

	off := makeConfig(io.Discard, WithTimeLayout("none"))
	if a := off.replaceAttr(nil, slog.Time(slog.TimeKey, at)); !a.Equal(slog.Attr{}) {
		t.Errorf("expected timestamp to be dropped, got %v", a)
	}
}

func TestConfig_Handler(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{"pretty text", nil, "*log.prettyHandler"},
		{"pretty json", []Option{WithFormat(FormatJSON)}, "*log.prettyHandler"},
		{"plain text", []Option{WithPretty(false)}, "*slog.TextHandler"},
		{"plain json", []Option{WithPretty(false), WithFormat(FormatJSON)}, "*slog.JSONHandler"},
		{"unknown format", []Option{WithPretty(false), WithFormat(Format(9))}, "slog.discardHandler"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := makeConfig(io.Discard, tt.opts...).handler()

			if got := fmt.Sprintf("%T", h); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestConfig_HandlerOverride(t *testing.T) {
	c := makeConfig(io.Discard, WithLevel(LevelError))

	h := c.handler(WithLevel(LevelDebug))
	if !h.Enabled(t.Context(), slog.LevelDebug) {
		t.Error("expected override to lower the handler level")
	}

	if c.level != LevelError {
		t.Errorf("expected receiver level %v to be unchanged, got %v", LevelError, c.level)
	}
}

func TestConfig_CloneSeparatesLock(t *testing.T) {
	c := makeConfig(io.Discard)
	d := c.clone(WithLevel(LevelWarn))

	if c.mutex == d.mutex {
		t.Error("expected clone to own a separate mutex")
	}

	if c.level != DefaultLevel || d.level != LevelWarn {
		t.Errorf("expected levels %v and %v, got %v and %v", DefaultLevel, LevelWarn, c.level, d.level)
	}
}

func TestWithDefaults(t *testing.T) {
	c := apply(config{}, WithLevel(LevelTrace), WithCaller(true), WithDefaults(nil))

	if c.output != io.Discard {
		t.Errorf("expected nil writer to become io.Discard, got %T", c.output)
	}

	if c.level != DefaultLevel || c.format != DefaultFormat ||
		c.caller != DefaultCaller || c.pretty != DefaultPretty {
		t.Errorf("expected defaults, got level=%v format=%v caller=%v pretty=%v",
			c.level, c.format, c.caller, c.pretty)
	}

	if c.mutex == nil {
		t.Error("expected update to allocate a mutex")
	}
}

func BenchmarkMakeFormatTimeFunc(b *testing.B) {
	format := makeFormatTimeFunc("rfc3339nano")
	now := time.Now()

	for b.Loop() {
		_ = format(now)
	}
}
