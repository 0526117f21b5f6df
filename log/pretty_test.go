package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type point struct{ x, y int }

func (p point) LogValue() slog.Value {
	return slog.GroupValue(slog.Int("x", p.x), slog.Int("y", p.y))
}

func TestPrettyHandler_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithTimeLayout("none"))

	logger.Info("hello world", slog.String("name", "tomlc"), slog.Int("n", 3))

	want := `level=INFO msg="hello world" name=tomlc n=3` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPrettyHandler_NoColorInBuffer(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithTimeLayout("none"))

	logger.Warn("careful")

	if strings.Contains(buf.String(), "\033[") {
		t.Errorf("expected no escape sequences, got %q", buf.String())
	}
}

func TestPrettyHandler_FlattensGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithTimeLayout("none"))

	logger.WithGroup("req").
		With(slog.String("id", "7")).
		Info("done", slog.Any("at", point{1, 2}))

	want := `level=INFO msg=done req.id=7 req.at.x=1 req.at.y=2` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPrettyHandler_QuotesAmbiguousStrings(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"plain", "plain"},
		{"", `""`},
		{"a b", `"a b"`},
		{"k=v", `"k=v"`},
		{"line\nbreak", `"line\nbreak"`},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := textValue(slog.StringValue(tt.value)); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestPrettyHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithTimeLayout("none"), WithFormat(FormatJSON))

	logger.Error("failed",
		slog.Any("error", errors.New("boom")),
		slog.Bool("fatal", true),
		slog.Any("at", point{3, 4}),
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON output: %v\n%s", err, buf.String())
	}

	checks := map[string]any{
		"level": "ERROR",
		"msg":   "failed",
		"error": "boom",
		"fatal": true,
		"at.x":  float64(3),
		"at.y":  float64(4),
	}

	for key, want := range checks {
		if got := entry[key]; got != want {
			t.Errorf("expected %s=%v, got %v", key, want, got)
		}
	}
}

func TestPrettyHandler_TraceLevelName(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithTimeLayout("none"), WithLevel(LevelTrace))

	logger.Trace("deep")

	if !strings.HasPrefix(buf.String(), "level=TRACE ") {
		t.Errorf("expected TRACE level, got %q", buf.String())
	}
}

func TestPrettyHandler_Source(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithTimeLayout("none"), WithCaller(true))

	logger.Info("where")

	if !strings.Contains(buf.String(), "pretty_test.go:") {
		t.Errorf("expected caller in output, got %q", buf.String())
	}
}

func TestDefault_Config(t *testing.T) {
	original := defaultLog
	defer func() { defaultLog = original }()

	var buf bytes.Buffer
	Config(WithOutput(&buf), WithTimeLayout("none"), WithLevel(LevelTrace))

	if Default().Level() != LevelTrace {
		t.Errorf("expected trace level, got %v", Default().Level())
	}

	Trace("tracing", slog.Int("depth", 1))

	want := "level=TRACE msg=tracing depth=1\n"
	if got := buf.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
