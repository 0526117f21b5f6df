package lang

import "strconv"

// Kind classifies a lexical token.
type Kind int

const (
	// KindEOF marks the end of the token stream. It is never produced by
	// [Lex]; the parser reports it when the cursor runs off the end.
	KindEOF Kind = iota
	KindDictPair
	KindDictStart
	KindListStart
	KindFunction
	KindIdentifier
	KindString
	KindNumber
	KindComma
	KindClose
	KindCloseDict
	KindAssign
	KindExprStart
	KindExprEnd
	KindOperator
	KindSemicolon
)

var kindName = [...]string{
	KindEOF:        "EOF",
	KindDictPair:   "DICT_PAIR",
	KindDictStart:  "DICT_START",
	KindListStart:  "LIST_START",
	KindFunction:   "FUNCTION",
	KindIdentifier: "IDENTIFIER",
	KindString:     "STRING",
	KindNumber:     "NUMBER",
	KindComma:      "COMMA",
	KindClose:      "CLOSE",
	KindCloseDict:  "CLOSE_DICT",
	KindAssign:     "ASSIGN",
	KindExprStart:  "EXPR_START",
	KindExprEnd:    "EXPR_END",
	KindOperator:   "OPERATOR",
	KindSemicolon:  "SEMICOLON",
}

// String returns the grammar name of the token kind.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindName) {
		return kindName[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Position identifies a location in source text.
type Position struct {
	Offset int // byte offset, 0-based
	Line   int // 1-based
	Column int // 1-based, counted in runes
}

// String returns the position formatted as line:column.
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Token is a classified span of source text.
type Token struct {
	Kind    Kind
	Literal string
	Pos     Position
}

// String returns the token formatted as KIND("literal").
func (t Token) String() string {
	return t.Kind.String() + "(" + strconv.Quote(t.Literal) + ")"
}
