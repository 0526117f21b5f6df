package lang

import (
	"errors"
	"slices"
	"testing"
)

func kinds(tokens []Token) []Kind {
	out := make([]Kind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}

	return out
}

func TestLex_Kinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Kind
	}{
		{
			name:  "empty",
			input: "",
			want:  []Kind{},
		},
		{
			name:  "whitespace only",
			input: " \t\n\r ",
			want:  []Kind{},
		},
		{
			name:  "assignment",
			input: `key <- 5;`,
			want:  []Kind{KindIdentifier, KindAssign, KindNumber, KindSemicolon},
		},
		{
			name:  "dict pair beats identifier",
			input: `$[ key : 1 ]`,
			want:  []Kind{KindDictStart, KindDictPair, KindNumber, KindCloseDict},
		},
		{
			name:  "list start beats identifier",
			input: `list(1, "a")`,
			want:  []Kind{KindListStart, KindNumber, KindComma, KindString, KindClose},
		},
		{
			name:  "list without paren is an identifier",
			input: `list`,
			want:  []Kind{KindIdentifier},
		},
		{
			name:  "expression",
			input: `#{name 2 max() 3 - }`,
			want: []Kind{
				KindExprStart, KindIdentifier, KindNumber, KindFunction,
				KindNumber, KindOperator, KindExprEnd,
			},
		},
		{
			name:  "max without parens is an identifier",
			input: `max`,
			want:  []Kind{KindIdentifier},
		},
		{
			name:  "all operators",
			input: `+ - * /`,
			want:  []Kind{KindOperator, KindOperator, KindOperator, KindOperator},
		},
		{
			name:  "adjacent tokens",
			input: `a<-list(1,2);`,
			want: []Kind{
				KindIdentifier, KindAssign, KindListStart, KindNumber,
				KindComma, KindNumber, KindClose, KindSemicolon,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Lex(tt.input)
			if err != nil {
				t.Fatalf("lex error: %v", err)
			}

			if got := kinds(tokens); !slices.Equal(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestLex_Literals(t *testing.T) {
	tokens, err := Lex(`data <- $[ keyone:42, keytwo :  "x y" ];`)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	want := []string{
		"data", "<-", "$[", "keyone:", "42", ",", "keytwo :  ", `"x y"`, "]", ";",
	}

	got := make([]string, len(tokens))
	for i, tok := range tokens {
		got[i] = tok.Literal
	}

	if !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestLex_Positions(t *testing.T) {
	tokens, err := Lex("a <- 1;\n  bb <- \"é\";")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	tests := []struct {
		index int
		want  Position
	}{
		{0, Position{Offset: 0, Line: 1, Column: 1}},
		{2, Position{Offset: 5, Line: 1, Column: 6}},
		{4, Position{Offset: 10, Line: 2, Column: 3}},
		{6, Position{Offset: 16, Line: 2, Column: 9}},
		{7, Position{Offset: 20, Line: 2, Column: 12}},
	}

	for _, tt := range tests {
		if got := tokens[tt.index].Pos; got != tt.want {
			t.Errorf("token %d %s: expected %+v, got %+v",
				tt.index, tokens[tt.index], tt.want, got)
		}
	}
}

func TestLex_UnmatchedInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Position
	}{
		{
			name:  "uppercase identifier",
			input: `Key <- 1;`,
			want:  Position{Offset: 0, Line: 1, Column: 1},
		},
		{
			name:  "unterminated string",
			input: `a <- "abc`,
			want:  Position{Offset: 5, Line: 1, Column: 6},
		},
		{
			name:  "stray symbol on second line",
			input: "a <- 1;\nb <- 2 @;",
			want:  Position{Offset: 15, Line: 2, Column: 8},
		},
		{
			name:  "invalid utf-8 in string",
			input: "s <- \"a\xffb\";",
			want:  Position{Offset: 7, Line: 1, Column: 8},
		},
		{
			name:  "lone dollar",
			input: `$`,
			want:  Position{Offset: 0, Line: 1, Column: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lex(tt.input)
			if !errors.Is(err, ErrLex) {
				t.Fatalf("expected ErrLex, got %v", err)
			}

			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("expected *Error, got %T", err)
			}

			pos, ok := e.Position()
			if !ok {
				t.Fatal("expected position")
			}

			if pos != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, pos)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindEOF, "EOF"},
		{KindDictPair, "DICT_PAIR"},
		{KindExprEnd, "EXPR_END"},
		{KindSemicolon, "SEMICOLON"},
		{Kind(99), "Kind(99)"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func BenchmarkLex(b *testing.B) {
	src := `data <- $[ keyone: 42, keytwo : list(1, 2, $[ nestedkey: "value" ]), ` +
		`keythree : $[innerone : 10, innertwo : "string"] ]; x <- #{1 2 + 3 *};`

	b.ReportAllocs()

	for b.Loop() {
		if _, err := Lex(src); err != nil {
			b.Fatal(err)
		}
	}
}
