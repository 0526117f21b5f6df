package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/tomlc/log"
)

// dict builds a Dict from alternating keys and values.
func dict(kv ...any) *Dict {
	d := new(Dict)
	for i := 0; i < len(kv); i += 2 {
		d.Set(kv[i].(string), kv[i+1].(*Value))
	}

	return d
}

func integer(n int64) *Value { return NewInteger(n) }
func str(s string) *Value { return NewString(s) }
func list(v ...*Value) *Value { return NewList(v...) }
func table(kv ...any) *Value { return NewDict(dict(kv...)) }

func TestParseString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *Dict
	}{
		{
			name:  "empty source",
			input: "",
			want:  dict(),
		},
		{
			name:  "single integer",
			input: `key <- 5;`,
			want:  dict("key", integer(5)),
		},
		{
			name:  "max expression",
			input: `name <- 5; sur <- #{name 2 max() };`,
			want:  dict("name", integer(5), "sur", integer(5)),
		},
		{
			name:  "sum expression",
			input: `name <- 5; sur <- #{name 2 + };`,
			want:  dict("name", integer(5), "sur", integer(7)),
		},
		{
			name:  "nested list in dict",
			input: `test <- $[ key: list(1, 2, $[ nestedkey: "value" ]) ];`,
			want: dict("test", table(
				"key", list(integer(1), integer(2), table("nestedkey", str("value"))),
			)),
		},
		{
			name:  "string and list",
			input: `name <- "Example"; values <- list(1, 2, 3);`,
			want: dict(
				"name", str("Example"),
				"values", list(integer(1), integer(2), integer(3)),
			),
		},
		{
			name:  "redefinition keeps position",
			input: `a <- 1; b <- 2; a <- 3;`,
			want:  dict("a", integer(3), "b", integer(2)),
		},
		{
			name:  "redefinition sees previous binding",
			input: `a <- 1; a <- #{a 10 +};`,
			want:  dict("a", integer(11)),
		},
		{
			name: "nested dictionary",
			input: `data <- $[ keyone: 42, keytwo : list(1, 2, $[ nestedkey: "value" ]), ` +
				`keythree : $[innerone : 10, innertwo : "string"] ];`,
			want: dict("data", table(
				"keyone", integer(42),
				"keytwo", list(integer(1), integer(2), table("nestedkey", str("value"))),
				"keythree", table("innerone", integer(10), "innertwo", str("string")),
			)),
		},
		{
			name:  "separators are optional",
			input: `a <- list(1 2 "x"); b <- $[ k: 1 v: 2 ];`,
			want: dict(
				"a", list(integer(1), integer(2), str("x")),
				"b", table("k", integer(1), "v", integer(2)),
			),
		},
		{
			name:  "empty containers",
			input: `a <- list(); b <- $[];`,
			want:  dict("a", list(), "b", table()),
		},
		{
			name:  "duplicate dictionary key",
			input: `d <- $[ x: 1, y: 2, x: 3 ];`,
			want:  dict("d", table("x", integer(3), "y", integer(2))),
		},
		{
			name:  "expression inside containers",
			input: `n <- 4; l <- list(#{n n *}, $[ half: #{n 2 /} ]);`,
			want: dict(
				"n", integer(4),
				"l", list(integer(16), table("half", integer(2))),
			),
		},
		{
			name:  "empty string",
			input: `s <- "";`,
			want:  dict("s", str("")),
		},
		{
			name:  "multiline",
			input: "a <- $[\n  x: 1,\n  y: list(\n    2,\n    3\n  )\n];\n",
			want:  dict("a", table("x", integer(1), "y", list(integer(2), integer(3)))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseString(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if !got.Equal(tt.want) {
				t.Errorf("expected %s, got %s", mustJSON(t, tt.want), mustJSON(t, got))
			}
		})
	}
}

func mustJSON(t *testing.T, d *Dict) string {
	t.Helper()

	b, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("json error: %v", err)
	}

	return string(b)
}

func TestParseString_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "unknown identifier", input: `x <- #{y 1 +};`, want: ErrUnknownIdentifier},
		{name: "self reference", input: `x <- #{x 1 +};`, want: ErrUnknownIdentifier},
		{name: "trailing comma in list", input: `a <- list(1, 2,);`, want: ErrUnexpectedToken},
		{name: "trailing comma in dict", input: `a <- $[ k: 1, ];`, want: ErrExpectedToken},
		{name: "missing semicolon", input: `a <- 1`, want: ErrExpectedToken},
		{name: "missing assign", input: `a 1;`, want: ErrExpectedToken},
		{name: "value is identifier", input: `a <- b;`, want: ErrUnexpectedToken},
		{name: "statement starts with number", input: `1 <- 2;`, want: ErrExpectedToken},
		{name: "dict entry without key", input: `a <- $[ 1 ];`, want: ErrExpectedToken},
		{name: "unclosed list", input: `a <- list(1, 2`, want: ErrUnexpectedToken},
		{name: "unclosed dict", input: `a <- $[ k: 1`, want: ErrExpectedToken},
		{name: "unterminated expression", input: `a <- #{1 2 +`, want: ErrExpectedToken},
		{name: "expression over string", input: `s <- "x"; n <- #{s 1 +};`, want: ErrNotInteger},
		{name: "expression with leftovers", input: `a <- #{1 2};`, want: ErrMalformedExpression},
		{name: "empty expression", input: `a <- #{};`, want: ErrMalformedExpression},
		{name: "division by zero", input: `a <- #{1 0 /};`, want: ErrDivisionByZero},
		{name: "lex failure", input: `a <- 1.5;`, want: ErrLex},
		{name: "string not utf-8", input: "s <- \"a\xffb\";", want: ErrLex},
		{name: "number too large", input: `a <- 99999999999999999999;`, want: ErrInvalidNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(context.Background(), tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseString_ErrorDetail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "unterminated expression",
			input: `a <- #{1 2 +`,
			want:  "line 1, column 13: expected token: expected=EXPR_END found=EOF",
		},
		{
			name:  "missing semicolon",
			input: "a <- 1\nb <- 2;",
			want:  "line 2, column 1: expected token: expected=SEMICOLON found=IDENTIFIER",
		},
		{
			name:  "trailing comma",
			input: `a <- list(1,);`,
			want:  "line 1, column 13: unexpected token: kind=CLOSE literal=)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(context.Background(), tt.input)
			if err == nil {
				t.Fatal("expected error")
			}

			if err.Error() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestParseString_Snippet(t *testing.T) {
	_, err := ParseString(context.Background(), "a <- 1;\nb <- #{a c +};")

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %v", err)
	}

	want := "  2 | b <- #{a c +};\n" +
		strings.Repeat(" ", 15) + "^\n"
	if got := e.Snippet(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestParseString_Deterministic(t *testing.T) {
	src := `data <- $[ keyone: 42, keytwo : list(1, 2, $[ nestedkey: "value" ]) ]; ` +
		`z <- 1; a <- #{z 2 +};`

	first, err := ParseString(context.Background(), src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	for range 10 {
		again, err := ParseString(context.Background(), src)
		if err != nil {
			t.Fatalf("parse error: %v", err)
		}

		if !again.Equal(first) {
			t.Fatalf("expected %s, got %s", mustJSON(t, first), mustJSON(t, again))
		}
	}
}

func TestParseString_TraceRecords(t *testing.T) {
	var buf bytes.Buffer

	logger := log.Make(&buf,
		log.WithLevel(log.LevelTrace),
		log.WithFormat(log.FormatJSON),
		log.WithPretty(false),
		log.WithTimeLayout("none"),
		log.WithCaller(true),
	)

	_, err := ParseString(context.Background(),
		`w <- 3; l <- list(#{w 2 *});`, WithLogger(logger))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var (
		msgs    []string
		results []float64
	)

	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		var rec struct {
			Msg    string  `json:"msg"`
			Level  string  `json:"level"`
			Result float64 `json:"result"`
			Source struct {
				File string `json:"file"`
			} `json:"source"`
		}

		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("invalid record %q: %v", line, err)
		}

		if rec.Level != "TRACE" {
			t.Errorf("expected TRACE level, got %q", rec.Level)
		}

		if filepath.Base(filepath.Dir(rec.Source.File)) != "lang" {
			t.Errorf("expected caller inside lang, got %q", rec.Source.File)
		}

		msgs = append(msgs, rec.Msg)

		if rec.Msg == "expression evaluated" {
			results = append(results, rec.Result)
		}
	}

	for _, want := range []string{"lex start", "parse start", "assignment", "parse complete"} {
		if !strings.Contains(strings.Join(msgs, "|"), want) {
			t.Errorf("expected %q record, got %v", want, msgs)
		}
	}

	if len(results) != 1 || results[0] != 6 {
		t.Errorf("expected one nested expression record with result 6, got %v", results)
	}
}

func TestParseString_WithEnvironment(t *testing.T) {
	seed := dict("base", integer(10))

	got, err := ParseString(
		context.Background(),
		`next <- #{base 1 +};`,
		WithEnvironment(seed),
	)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	want := dict("base", integer(10), "next", integer(11))
	if !got.Equal(want) {
		t.Errorf("expected %s, got %s", mustJSON(t, want), mustJSON(t, got))
	}

	if seed.Len() != 1 {
		t.Errorf("expected seed to be unchanged, got %d entries", seed.Len())
	}
}

func TestParseString_WithMaxDepth(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		fails bool
	}{
		{name: "unlimited", depth: 0, fails: false},
		{name: "exact", depth: 3, fails: false},
		{name: "too shallow", depth: 2, fails: true},
	}

	src := `a <- list($[ k: list(1) ]);`

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(context.Background(), src, WithMaxDepth(tt.depth))
			if tt.fails != errors.Is(err, ErrMaxDepthExceeded) {
				t.Errorf("expected failure=%v, got %v", tt.fails, err)
			}
		})
	}
}

func TestParseString_DeepNesting(t *testing.T) {
	const depth = 500

	src := "a <- " + strings.Repeat("list(", depth) + "1" + strings.Repeat(")", depth) + ";"

	env, err := ParseString(context.Background(), src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	v, _ := env.Get("a")
	for i := 0; i < depth; i++ {
		if v.Type != TypeList || len(v.List) != 1 {
			t.Fatalf("expected single-element list at depth %d, got %s", i, v.Type)
		}

		v = v.List[0]
	}

	if v.Type != TypeInteger || v.Int != 1 {
		t.Errorf("expected innermost 1, got %s %d", v.Type, v.Int)
	}
}

func TestParseString_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseString(ctx, `a <- 1;`)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestParseReader(t *testing.T) {
	env, err := ParseReader(
		context.Background(),
		strings.NewReader(`name <- "Example"; values <- list(1, 2, 3);`),
	)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if got := env.Keys(); len(got) != 2 || got[0] != "name" || got[1] != "values" {
		t.Errorf("expected [name values], got %v", got)
	}
}

func TestValue_Positions(t *testing.T) {
	env, err := ParseString(context.Background(), "a <- 1;\nb <- $[ k: \"v\" ];")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	b, _ := env.Get("b")
	if want := (Position{Offset: 13, Line: 2, Column: 6}); b.Pos != want {
		t.Errorf("expected %+v, got %+v", want, b.Pos)
	}

	k, _ := b.Dict.Get("k")
	if want := (Position{Offset: 19, Line: 2, Column: 12}); k.Pos != want {
		t.Errorf("expected %+v, got %+v", want, k.Pos)
	}
}

func BenchmarkParseString(b *testing.B) {
	src := `data <- $[ keyone: 42, keytwo : list(1, 2, $[ nestedkey: "value" ]), ` +
		`keythree : $[innerone : 10, innertwo : "string"] ]; x <- #{1 2 + 3 *};`

	ctx := context.Background()

	b.ReportAllocs()

	for b.Loop() {
		if _, err := ParseString(ctx, src); err != nil {
			b.Fatal(err)
		}
	}
}
