package cmd

import (
	"errors"
	"testing"
)

func TestEval(t *testing.T) {
	const src = `values <- list(1, 2, 3); name <- "app"; cfg <- $[ port: 80 ];`

	tests := []struct {
		query string
		want  string
	}{
		{"values[1]", "2\n"},
		{"len(values)", "3\n"},
		{"name", "app\n"},
		{"cfg.port + 1", "81\n"},
		{"len(values) > 2", "true\n"},
		{"values", "[1,2,3]\n"},
		{"cfg", "{\"port\":80}\n"},
		{"nil", "nil\n"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			ctx, out := stdio(src)

			if err := (&Eval{Query: tt.query}).Run(ctx); err != nil {
				t.Fatalf("eval error: %v", err)
			}

			if got := out.String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestEval_BadQuery(t *testing.T) {
	for _, q := range []string{"values[", "missing + 1"} {
		ctx, _ := stdio(`values <- list(1);`)

		if err := (&Eval{Query: q}).Run(ctx); !errors.Is(err, ErrQuery) {
			t.Errorf("query %q: expected %v, got %v", q, ErrQuery, err)
		}
	}
}

func TestFormatResult(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "nil"},
		{"text", "text"},
		{int64(-4), "-4"},
		{true, "true"},
		{1.5, "1.5"},
		{[]any{int64(1), "x"}, `[1,"x"]`},
		{map[string]any{"k": int64(1)}, `{"k":1}`},
	}

	for _, tt := range tests {
		got, err := formatResult(tt.in)
		if err != nil {
			t.Fatalf("format %v: %v", tt.in, err)
		}

		if got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}
