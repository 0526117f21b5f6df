package repl

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/tomlc/lang"
)

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
	signatureSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// frameKind identifies the innermost open construct at the cursor.
type frameKind int

const (
	frameNone frameKind = iota
	frameList
	frameDict
	frameExpr
)

// frame is an open construct: list(, $[, or #{.
type frame struct {
	kind  frameKind
	start int // byte offset just past the opening delimiter
	args  int // commas seen at this level
}

// enclosing scans input up to cursor and returns the innermost construct
// left open there. String literals are skipped.
func enclosing(input string, cursor int) frame {
	cursor = min(max(cursor, 0), len(input))

	var stack []frame

	pop := func(kind frameKind) {
		if n := len(stack); n > 0 && stack[n-1].kind == kind {
			stack = stack[:n-1]
		}
	}

	for i := 0; i < cursor; i++ {
		switch {
		case input[i] == '"':
			end := strings.IndexByte(input[i+1:cursor], '"')
			if end < 0 {
				return frame{}
			}

			i += end + 1

		case strings.HasPrefix(input[i:], "list("):
			i += len("list(") - 1
			stack = append(stack, frame{kind: frameList, start: i + 1})

		case strings.HasPrefix(input[i:], "$["):
			i++
			stack = append(stack, frame{kind: frameDict, start: i + 1})

		case strings.HasPrefix(input[i:], "#{"):
			i++
			stack = append(stack, frame{kind: frameExpr, start: i + 1})

		case input[i] == ')':
			pop(frameList)

		case input[i] == ']':
			pop(frameDict)

		case input[i] == '}':
			pop(frameExpr)

		case input[i] == ',':
			if n := len(stack); n > 0 {
				stack[n-1].args++
			}
		}
	}

	if len(stack) == 0 {
		return frame{}
	}

	return stack[len(stack)-1]
}

// stackDepth returns the number of operands an expression body would leave on
// the evaluation stack, or false if the body does not lex. An operator that
// would pop more operands than are available yields -1.
func stackDepth(body string) (int, bool) {
	tokens, err := lang.Lex(body)
	if err != nil {
		return 0, false
	}

	depth := 0

	for _, tok := range tokens {
		switch tok.Kind {
		case lang.KindNumber, lang.KindIdentifier:
			depth++

		case lang.KindOperator, lang.KindFunction:
			if depth < 2 {
				return -1, true
			}

			depth--

		default:
			return 0, false
		}
	}

	return depth, true
}

// renderSignatureHint renders the hint for the construct enclosing the
// cursor, or "" outside of any construct.
func renderSignatureHint(input string, cursor int) string {
	f := enclosing(input, cursor)

	switch f.kind {
	case frameList:
		// List arity is open-ended, so the hint highlights the position of
		// the current element.
		var b strings.Builder
		b.WriteString(signatureNameStyle.Render("list"))
		b.WriteString(signatureStyle.Render("("))

		if f.args > 0 {
			b.WriteString(signatureStyle.Render("…"))
			b.WriteString(signatureSeparatorStyle.Render(", "))
		}

		b.WriteString(currentParamStyle.Render("value" + strconv.Itoa(f.args+1)))
		b.WriteString(signatureSeparatorStyle.Render(", "))
		b.WriteString(signatureStyle.Render("…)"))

		return b.String()

	case frameDict:
		return signatureNameStyle.Render("$[") +
			currentParamStyle.Render("key") +
			signatureStyle.Render(": value, … ]")

	case frameExpr:
		hint := signatureNameStyle.Render("#{") +
			signatureStyle.Render(" postfix }  ")

		depth, ok := stackDepth(input[f.start:min(cursor, len(input))])

		switch {
		case !ok:
			return hint + errorStyle.Render("invalid token")

		case depth < 0:
			return hint + errorStyle.Render("stack underflow")

		default:
			return hint + signatureStyle.Render("stack ") +
				currentParamStyle.Render(strconv.Itoa(depth))
		}

	default:
		return ""
	}
}
