package lang

import (
	"log/slog"
	"regexp"
	"unicode"
	"unicode/utf8"
)

// matcher recognizes one token kind at the start of the remaining input.
type matcher struct {
	kind Kind
	re   *regexp.Regexp
}

// matchers is the token grammar in priority order. The first matcher that
// matches at the scan position wins, so DICT_PAIR must precede IDENTIFIER and
// LIST_START/FUNCTION must precede IDENTIFIER.
var matchers = []matcher{
	{KindDictPair, regexp.MustCompile(`\A[a-z]+\s*:\s*`)},
	{KindDictStart, regexp.MustCompile(`\A\$\[`)},
	{KindListStart, regexp.MustCompile(`\Alist\(`)},
	{KindFunction, regexp.MustCompile(`\Amax\(\)`)},
	{KindIdentifier, regexp.MustCompile(`\A[a-z]+`)},
	{KindString, regexp.MustCompile(`\A"[^"]*"`)},
	{KindNumber, regexp.MustCompile(`\A[0-9]+`)},
	{KindComma, regexp.MustCompile(`\A,`)},
	{KindClose, regexp.MustCompile(`\A\)`)},
	{KindCloseDict, regexp.MustCompile(`\A\]`)},
	{KindAssign, regexp.MustCompile(`\A<-`)},
	{KindExprStart, regexp.MustCompile(`\A#\{`)},
	{KindExprEnd, regexp.MustCompile(`\A\}`)},
	{KindOperator, regexp.MustCompile(`\A[+\-*/]`)},
	{KindSemicolon, regexp.MustCompile(`\A;`)},
}

// Lex converts source text into its token sequence.
//
// Whitespace between tokens is skipped. Any other text that no token pattern
// matches fails with [ErrLex]; nothing is silently dropped.
func Lex(source string) ([]Token, error) {
	l := &lexer{input: source, line: 1, col: 1}

	return l.run()
}

// lexer holds the scan state.
type lexer struct {
	input string
	pos   int
	line  int
	col   int
}

func (l *lexer) run() ([]Token, error) {
	var tokens []Token

	for {
		l.skipWhitespace()

		if l.pos >= len(l.input) {
			return tokens, nil
		}

		tok, ok := l.match()
		if !ok {
			return nil, l.fail()
		}

		// Strings must be UTF-8 text. Rewind to the first invalid byte so the
		// error points at it.
		if tok.Kind == KindString && !utf8.ValidString(tok.Literal) {
			l.rewind(tok.Pos)
			l.advance(invalidUTF8(tok.Literal))

			return nil, l.fail()
		}

		tokens = append(tokens, tok)
	}
}

// fail reports the rune at the scan position as unmatched input.
func (l *lexer) fail() error {
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])

	return ErrLex.WithPosition(l.position()).
		With(slog.String("literal", string(r))).
		WithSource(l.input)
}

// invalidUTF8 returns the offset of the first byte of s that does not begin
// a valid UTF-8 sequence, or len(s).
func invalidUTF8(s string) int {
	for i, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[i:]); size == 1 {
				return i
			}
		}
	}

	return len(s)
}

// match tries each matcher in priority order at the current position and
// consumes the first match.
func (l *lexer) match() (Token, bool) {
	rest := l.input[l.pos:]

	for _, m := range matchers {
		loc := m.re.FindStringIndex(rest)
		if loc == nil || loc[1] == 0 {
			continue
		}

		tok := Token{
			Kind:    m.kind,
			Literal: rest[:loc[1]],
			Pos:     l.position(),
		}

		l.advance(loc[1])

		return tok, true
	}

	return Token{}, false
}

func (l *lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}

		l.advance(size)
	}
}

// advance moves the cursor n bytes forward, tracking line and column.
func (l *lexer) advance(n int) {
	end := l.pos + n

	for l.pos < end {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])

		l.pos += size
		if r == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
	}
}

func (l *lexer) rewind(pos Position) {
	l.pos, l.line, l.col = pos.Offset, pos.Line, pos.Column
}

func (l *lexer) position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}
