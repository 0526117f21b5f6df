package cmd

import (
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"testing"
)

func TestError(t *testing.T) {
	derived := ErrOpenSource.With(slog.String("file", "a.tc")).Wrap(fs.ErrNotExist)

	if !errors.Is(derived, ErrOpenSource) {
		t.Error("expected derived error to match its sentinel")
	}

	if errors.Is(derived, ErrReadSource) {
		t.Error("expected derived error not to match another sentinel")
	}

	if !errors.Is(derived, fs.ErrNotExist) {
		t.Error("expected derived error to unwrap to its cause")
	}

	if want := "open source: file does not exist"; derived.Error() != want {
		t.Errorf("expected %q, got %q", want, derived.Error())
	}

	if ErrOpenSource.Error() != "open source" {
		t.Errorf("expected sentinel to be unchanged, got %q", ErrOpenSource.Error())
	}

	if attrs := derived.LogValue().String(); !strings.Contains(attrs, "a.tc") {
		t.Errorf("expected attributes to include file, got %q", attrs)
	}
}
