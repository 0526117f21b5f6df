package lang

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func TestError_Is(t *testing.T) {
	derived := ErrUnknownIdentifier.
		WithPosition(Position{Line: 2, Column: 3}).
		With(slog.String("name", "x"))

	if !errors.Is(derived, ErrUnknownIdentifier) {
		t.Error("expected derived error to match its sentinel")
	}

	if errors.Is(derived, ErrNotInteger) {
		t.Error("expected derived error not to match another sentinel")
	}

	if errors.Is(ErrUnknownIdentifier, derived) {
		t.Error("expected sentinel not to match a derived error")
	}

	again := derived.With(slog.String("kind", "String"))
	if !errors.Is(again, ErrUnknownIdentifier) {
		t.Error("expected twice-derived error to match its sentinel")
	}
}

func TestError_Wrap(t *testing.T) {
	err := ErrReadInput.Wrap(io.ErrUnexpectedEOF)

	if !errors.Is(err, ErrReadInput) {
		t.Error("expected error to match ErrReadInput")
	}

	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("expected error to match wrapped cause")
	}

	if want := "failed to read input: unexpected EOF"; err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestError_WithIsImmutable(t *testing.T) {
	base := ErrExpectedToken.With(slog.String("expected", "SEMICOLON"))
	_ = base.With(slog.String("found", "EOF"))

	if want := "expected token: expected=SEMICOLON"; base.Error() != want {
		t.Errorf("expected %q, got %q", want, base.Error())
	}

	if ErrExpectedToken.Error() != "expected token" {
		t.Errorf("expected sentinel to be unchanged, got %q", ErrExpectedToken.Error())
	}
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "plain error", err: io.EOF, want: "EOF"},
		{name: "lang error", err: ErrLex, want: "no token matches input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WrapError(tt.err).Error(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestError_LogValue(t *testing.T) {
	err := ErrDivisionByZero.
		WithPosition(Position{Offset: 9, Line: 1, Column: 10}).
		With(slog.Int64("a", 4))

	attrs := err.LogValue().Group()

	got := make(map[string]string, len(attrs))
	for _, a := range attrs {
		got[a.Key] = a.Value.String()
	}

	want := map[string]string{
		"error":  "division by zero",
		"offset": "9",
		"line":   "1",
		"column": "10",
		"a":      "4",
	}

	for k, v := range want {
		if got[k] != v {
			t.Errorf("expected %s=%s, got %s=%s", k, v, k, got[k])
		}
	}
}

func TestError_Snippet_WithoutSource(t *testing.T) {
	err := ErrLex.WithPosition(Position{Line: 1, Column: 1})

	if got := err.Snippet(); got != "" {
		t.Errorf("expected empty snippet, got %q", got)
	}
}
