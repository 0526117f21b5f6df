package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr"

	"github.com/ardnew/tomlc/log"
)

// Eval compiles source programs and evaluates an expr-lang query against the
// resulting assignments. Every top-level identifier is a query variable;
// integers are int64, lists are arrays, and dictionaries are maps.
type Eval struct {
	Query string `arg:"" help:"Query expression, for example 'len(values) > 2'." name:"query"`

	Sources `embed:""`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	env, err := e.load(ctx)
	if err != nil {
		return err
	}

	result, err := query(e.Query, env.ToMap())
	if err != nil {
		return err
	}

	log.TraceContext(ctx, "query evaluated",
		slog.String("query", e.Query),
		slog.String("type", fmt.Sprintf("%T", result)),
	)

	out, err := formatResult(result)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(stdoutFrom(ctx), out)

	return err
}

// query compiles and runs q with vars as its environment.
func query(q string, vars map[string]any) (any, error) {
	program, err := expr.Compile(q, expr.Env(vars))
	if err != nil {
		return nil, ErrQuery.With(slog.String("query", q)).Wrap(err)
	}

	result, err := expr.Run(program, vars)
	if err != nil {
		return nil, ErrQuery.With(slog.String("query", q)).Wrap(err)
	}

	return result, nil
}

// formatResult renders scalars as plain text and composites as JSON.
func formatResult(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "nil", nil

	case string:
		return v, nil

	case bool, int, int64, float64:
		return fmt.Sprint(v), nil

	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", ErrMarshal.With(slog.String("format", "json")).Wrap(err)
		}

		return string(b), nil
	}
}
