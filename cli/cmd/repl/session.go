package repl

import (
	"context"
	"log/slog"
	"slices"

	"github.com/ardnew/tomlc/lang"
	"github.com/ardnew/tomlc/log"
)

// resultKey is the binding that holds a bare value while it is evaluated.
// It never reaches the session environment.
const resultKey = "result"

// Result describes the outcome of one evaluated line.
type Result struct {
	// Value is set when the line was a bare value rather than statements.
	Value *lang.Value

	// Assigned lists the identifiers whose bindings the line created or
	// changed, in source order.
	Assigned []string
}

// Session is the environment an interactive session builds up one line at a
// time. A line is committed only if it parses completely.
type Session struct {
	env      *lang.Dict
	maxDepth int
	logger   log.Logger
}

// NewSession returns a session seeded with a copy of env.
func NewSession(env *lang.Dict, maxDepth int, logger log.Logger) *Session {
	if env == nil {
		env = new(lang.Dict)
	}

	return &Session{env: env.Clone(), maxDepth: maxDepth, logger: logger}
}

// Env returns the session environment. Callers must not modify it.
func (s *Session) Env() *lang.Dict { return s.env }

// Reset discards every binding.
func (s *Session) Reset() { s.env = new(lang.Dict) }

// Replace swaps the session environment for env.
func (s *Session) Replace(env *lang.Dict) { s.env = env }

// Keys returns the bound identifiers in insertion order.
func (s *Session) Keys() []string { return s.env.Keys() }

// IntegerKeys returns the bound identifiers whose values are integers, which
// are the only identifiers an expression may reference.
func (s *Session) IntegerKeys() []string {
	var keys []string

	for key, val := range s.env.All() {
		if val.Type == lang.TypeInteger {
			keys = append(keys, key)
		}
	}

	return keys
}

func (s *Session) options() []lang.Option {
	return []lang.Option{
		lang.WithEnvironment(s.env),
		lang.WithMaxDepth(s.maxDepth),
		lang.WithLogger(s.logger),
	}
}

// Eval evaluates line against the session.
//
// A line containing an assignment is parsed as a sequence of statements and,
// on success, becomes the new session environment. Any other line is parsed
// as a single value, which is returned without being bound. The semicolon
// ending the last statement may be omitted.
func (s *Session) Eval(ctx context.Context, line string) (Result, error) {
	tokens, err := lang.Lex(line)
	if err != nil {
		return Result{}, lang.WrapError(err).WithSource(line)
	}

	isStatement := slices.ContainsFunc(tokens, func(t lang.Token) bool {
		return t.Kind == lang.KindAssign
	})

	if !isStatement {
		return s.evalValue(ctx, line, tokens)
	}

	opts := append(s.options(), lang.WithSource(line))

	env, err := lang.NewParser(terminate(tokens), opts...).Parse(ctx)
	if err != nil {
		return Result{}, err
	}

	var assigned []string

	for key, val := range env.All() {
		if prev, ok := s.env.Get(key); !ok || !prev.Equal(val) {
			assigned = append(assigned, key)
		}
	}

	s.env = env

	s.logger.TraceContext(ctx, "session commit",
		slog.Any("assigned", assigned),
		slog.Int("bindings", env.Len()),
	)

	return Result{Assigned: assigned}, nil
}

// evalValue parses tokens as the right-hand side of a throwaway assignment.
func (s *Session) evalValue(
	ctx context.Context,
	line string,
	tokens []lang.Token,
) (Result, error) {
	if len(tokens) == 0 {
		return Result{}, nil
	}

	prefix := []lang.Token{
		{Kind: lang.KindIdentifier, Literal: resultKey, Pos: tokens[0].Pos},
		{Kind: lang.KindAssign, Literal: "<-", Pos: tokens[0].Pos},
	}

	opts := append(s.options(), lang.WithSource(line))

	env, err := lang.NewParser(
		terminate(append(prefix, tokens...)), opts...,
	).Parse(ctx)
	if err != nil {
		return Result{}, err
	}

	val, _ := env.Get(resultKey)

	return Result{Value: val}, nil
}

// terminate appends the semicolon that ends the final statement of a line
// when the user left it off.
func terminate(tokens []lang.Token) []lang.Token {
	n := len(tokens)
	if n == 0 || tokens[n-1].Kind == lang.KindSemicolon {
		return tokens
	}

	return append(tokens, lang.Token{
		Kind:    lang.KindSemicolon,
		Literal: ";",
		Pos:     tokens[n-1].Pos,
	})
}
