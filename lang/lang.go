package lang

import (
	"context"
	"io"
	"log/slog"

	"github.com/klauspost/readahead"
)

// ParseString lexes and parses source, returning the assignment environment.
// Options can be provided to customize parsing behavior.
func ParseString(
	ctx context.Context,
	source string,
	opts ...Option,
) (*Dict, error) {
	p := NewParser(nil, opts...)

	p.logger.TraceContext(
		ctx,
		"lex start",
		slog.Int("source_length", len(source)),
	)

	tokens, err := Lex(source)
	if err != nil {
		return nil, err
	}

	p.logger.TraceContext(ctx, "lex complete", slog.Int("tokens", len(tokens)))

	p.tokens = tokens
	p.source = source

	return p.Parse(ctx)
}

// ParseReader reads all of r and parses it with [ParseString].
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Dict, error) {
	data, err := ReadAll(r)
	if err != nil {
		return nil, err
	}

	return ParseString(ctx, string(data), opts...)
}

// ReadAll reads r to the end.
// The reader is wrapped with asynchronous read-ahead so that input is
// prefetched while earlier chunks are copied.
func ReadAll(r io.Reader) ([]byte, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	return data, nil
}

// Compile parses source and serializes the resulting environment to TOML.
func Compile(
	ctx context.Context,
	source string,
	opts ...Option,
) ([]byte, error) {
	env, err := ParseString(ctx, source, opts...)
	if err != nil {
		return nil, err
	}

	return MarshalTOML(env)
}
