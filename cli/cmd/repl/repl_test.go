package repl

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/tomlc/log"
)

func testModel(t *testing.T, src string) model {
	t.Helper()

	history := NewHistory(filepath.Join(t.TempDir(), baseHistory))

	return newModel(context.Background(), testSession(t, src), history, log.Make(io.Discard))
}

func typeText(m model, text string) model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})

	return next.(model)
}

func press(m model, key tea.KeyType) model {
	next, _ := m.Update(tea.KeyMsg{Type: key})

	return next.(model)
}

func TestModel_Statement(t *testing.T) {
	m := testModel(t, "")

	m = typeText(m, "a <- 2; b <- #{a a *}")
	m = press(m, tea.KeyEnter)

	if v, ok := m.session.Env().Get("b"); !ok || v.Int != 4 {
		t.Errorf("expected b = 4, got %v", v)
	}

	if m.input.Value() != "" {
		t.Errorf("expected input to be cleared, got %q", m.input.Value())
	}

	if m.history.Len() != 1 {
		t.Errorf("expected 1 history entry, got %d", m.history.Len())
	}
}

func TestModel_Commands(t *testing.T) {
	m := testModel(t, `a <- 1;`)

	m = typeText(m, ":reset")
	m = press(m, tea.KeyEnter)

	if m.session.Env().Len() != 0 {
		t.Errorf("expected empty session after :reset, got %d bindings", m.session.Env().Len())
	}

	m = typeText(m, ":quit")
	m = press(m, tea.KeyEnter)

	if !m.quitting {
		t.Error("expected :quit to quit")
	}

	if m.View() != "" {
		t.Errorf("expected empty view after quit, got %q", m.View())
	}
}

func TestModel_CommandMode(t *testing.T) {
	m := testModel(t, "")

	m = typeText(m, "a <- ")
	m = press(m, tea.KeyEsc)

	if m.mode != modeCtrl {
		t.Fatalf("expected command mode, got %d", m.mode)
	}

	if m.input.Value() != "" {
		t.Errorf("expected empty command input, got %q", m.input.Value())
	}

	m = press(m, tea.KeyEsc)

	if m.mode != modeEval || m.input.Value() != "a <- " {
		t.Errorf("expected eval input %q restored, got %q", "a <- ", m.input.Value())
	}
}

func TestModel_TabCompletion(t *testing.T) {
	m := testModel(t, `width <- 3; weight <- 4;`)

	m = typeText(m, "a <- #{wid")
	m = press(m, tea.KeyTab)

	if got, want := m.input.Value(), "a <- #{width"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestModel_TabCycle(t *testing.T) {
	m := testModel(t, `width <- 3; weight <- 4;`)

	m = typeText(m, "a <- w")
	if len(m.matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(m.matches))
	}

	m = press(m, tea.KeyTab)
	first := m.input.Value()

	m = press(m, tea.KeyTab)
	second := m.input.Value()

	if first == second {
		t.Errorf("expected tab to cycle, got %q twice", first)
	}

	m = press(m, tea.KeyEsc)

	if got := m.input.Value(); got != "a <- w" {
		t.Errorf("expected Esc to restore %q, got %q", "a <- w", got)
	}
}

func TestModel_HistoryNavigation(t *testing.T) {
	m := testModel(t, "")

	m = typeText(m, "a <- 1")
	m = press(m, tea.KeyEnter)
	m = press(m, tea.KeyEsc)
	m = typeText(m, "list")
	m = press(m, tea.KeyEnter)

	m = press(m, tea.KeyUp)
	if m.mode != modeCtrl || m.input.Value() != "list" {
		t.Errorf("expected command %q, got mode %d input %q", "list", m.mode, m.input.Value())
	}

	m = press(m, tea.KeyUp)
	if m.mode != modeEval || m.input.Value() != "a <- 1" {
		t.Errorf("expected statement %q, got mode %d input %q", "a <- 1", m.mode, m.input.Value())
	}

	m = press(m, tea.KeyDown)
	m = press(m, tea.KeyDown)

	if m.input.Value() != "" || m.historyIdx != m.history.Len() {
		t.Errorf("expected cleared input past newest entry, got %q", m.input.Value())
	}
}
