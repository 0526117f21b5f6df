package repl

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{
	"help", "list", "toml", "json", "reset", "edit", "clear", "quit",
}

// Built-in forms offered alongside identifiers. max() is only meaningful
// inside an expression and list( only outside one.
const (
	completeList = "list("
	completeMax  = "max()"
)

// isWordBoundary reports whether b ends a completion word. Identifiers
// consist of lowercase ASCII letters only, so everything else is a boundary.
func isWordBoundary(b byte) bool {
	return b < 'a' || b > 'z'
}

// wordBounds returns the word at cursor and its byte boundaries within input.
// The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor
	for start > 0 && !isWordBoundary(input[start-1]) {
		start--
	}

	end = cursor
	for end < len(input) && !isWordBoundary(input[end]) {
		end++
	}

	return input[start:end], start, end
}

// isDictKey reports whether the word ending at end is followed by a colon,
// which makes it a dictionary key rather than a reference.
func isDictKey(input string, end int) bool {
	return strings.HasPrefix(strings.TrimLeft(input[end:], " \t"), ":")
}

// evalCandidates returns the completions valid at cursor.
func evalCandidates(s *Session, input string, cursor int) []string {
	if enclosing(input, cursor).kind == frameExpr {
		return append(s.IntegerKeys(), completeMax)
	}

	return append(s.Keys(), completeList)
}

// computeMatches calculates the fuzzy matches for the word at the cursor,
// ranked best-first, along with the word boundaries. An empty word has no
// matches so that the hint line stays visible.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, wordStart, wordEnd := wordBounds(input, cursor)
	if word == "" {
		return nil, wordStart, wordEnd
	}

	var candidates []string

	switch m.mode {
	case modeCtrl:
		candidates = ctrlCommands

	default:
		if isDictKey(input, wordEnd) {
			return nil, wordStart, wordEnd
		}

		candidates = evalCandidates(m.session, input, cursor)
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. The selected candidate (when tabbing) uses
// the selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && used+entryWidth+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle := suggestionStyle
	highlightStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	return b.String()
}

// formatPreview shortens the native rendering of a binding for :list.
func formatPreview(text string) string {
	const limit = 40

	if len(text) > limit {
		return text[:limit-3] + "..."
	}

	return text
}
