package cmd

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/ardnew/tomlc/lang"
	"github.com/ardnew/tomlc/log"
)

// Compile translates source programs to a TOML document.
type Compile struct {
	Sources `embed:""`

	Output string `help:"Write TOML to this file instead of stdout." placeholder:"FILE" short:"o" type:"path"`
	Indent int    `default:"0" help:"Indent width for nested tables." short:"i"`
}

// Run executes the compile command.
func (c *Compile) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	env, err := c.load(ctx)
	if err != nil {
		return err
	}

	data, err := renderTOML(ctx, env, c.Indent)
	if err != nil {
		return err
	}

	changed, err := writeOutput(ctx, c.Output, data)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "compiled",
		slog.Int("bindings", env.Len()),
		slog.String("output", c.Output),
		slog.Bool("changed", changed),
	)

	return nil
}

// renderTOML serializes env as a TOML document.
func renderTOML(ctx context.Context, env *lang.Dict, indent int) ([]byte, error) {
	var buf bytes.Buffer

	if err := lang.FormatTOML(ctx, &buf, env, indent); err != nil {
		return nil, ErrMarshal.With(slog.String("format", "toml")).Wrap(err)
	}

	return buf.Bytes(), nil
}
