package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/tomlc/lang"
)

// Fmt parses source programs and renders the result in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as native assignment syntax (default)."`
	TOML   TOML   `cmd:""                    help:"Format as TOML."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
	YAML   YAML   `cmd:""                    help:"Format as YAML."`
	Tokens Tokens `cmd:""                    help:"List the token stream."`
	Tree   Tree   `cmd:""                    help:"Print the value tree."`
}

// envFormatter renders a parsed environment.
type envFormatter func(context.Context, io.Writer, *lang.Dict, int) error

// render loads the sources, then writes the environment with fn.
func render(
	ctx context.Context,
	src Sources,
	format string,
	indent int,
	fn envFormatter,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	env, err := src.load(ctx)
	if err != nil {
		return err
	}

	if err := fn(ctx, stdoutFrom(ctx), env, indent); err != nil {
		return ErrMarshal.With(slog.String("format", format)).Wrap(err)
	}

	return nil
}

// Native formats input as native assignment syntax.
type Native struct {
	Sources `embed:""`

	Indent int `default:"2" help:"Indent width for dictionary entries (0 keeps them inline)." short:"i"`
}

// Run executes the native command.
func (f *Native) Run(ctx context.Context) error {
	return render(ctx, f.Sources, "native", f.Indent, lang.Format)
}

// TOML formats input as TOML. It differs from the compile command only in
// always writing to stdout.
type TOML struct {
	Sources `embed:""`

	Indent int `default:"0" help:"Indent width for nested tables." short:"i"`
}

// Run executes the toml command.
func (t *TOML) Run(ctx context.Context) error {
	return render(ctx, t.Sources, "toml", t.Indent, lang.FormatTOML)
}

// JSON formats input as JSON with keys in assignment order.
type JSON struct {
	Sources `embed:""`

	Indent int `default:"2" help:"Indent width for JSON output (0 is compact)." short:"i"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) error {
	return render(ctx, j.Sources, "json", j.Indent, lang.FormatJSON)
}

// YAML formats input as YAML with keys in assignment order.
type YAML struct {
	Sources `embed:""`

	Indent int `default:"2" help:"Indent width for YAML output (0 is flow style)." short:"i"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) error {
	return render(ctx, y.Sources, "yaml", y.Indent, lang.FormatYAML)
}

// Tokens lists the tokens of each source with their positions.
type Tokens struct {
	Sources `embed:""`
}

// Run executes the tokens command.
func (t *Tokens) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	inputs, err := t.read(ctx)
	if err != nil {
		return err
	}

	w := stdoutFrom(ctx)

	for _, in := range inputs {
		tokens, err := lang.Lex(in.text)
		if err != nil {
			return lang.WrapError(err).With(slog.String("file", in.name))
		}

		if len(inputs) > 1 {
			if _, err := io.WriteString(w, "# "+in.name+"\n"); err != nil {
				return err
			}
		}

		if err := lang.FormatTokens(ctx, w, tokens); err != nil {
			return err
		}
	}

	return nil
}

// Tree prints the parsed value tree with source positions.
type Tree struct {
	Sources `embed:""`
}

// Run executes the tree command.
func (t *Tree) Run(ctx context.Context) error {
	return render(ctx, t.Sources, "tree", 0,
		func(ctx context.Context, w io.Writer, env *lang.Dict, _ int) error {
			return lang.PrintTree(ctx, w, env)
		},
	)
}
