package lang

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ardnew/tomlc/log"
)

// Parser builds a value tree from a token sequence by recursive descent.
//
// A Parser owns its assignment environment: the top-level statements
// `key <- value ;` are bound there in source order, and every expression is
// evaluated against the bindings made before it. A Parser is not safe for
// concurrent use and should not be reused after [Parser.Parse] returns.
type Parser struct {
	tokens   []Token
	pos      int
	env      *Dict
	depth    int
	maxDepth int
	source   string
	logger   log.Logger
}

// Option configures a [Parser].
type Option func(*Parser)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// WithEnvironment seeds the assignment environment with a copy of env.
// Expressions may refer to its bindings, and they are part of the result
// unless redefined. The given Dict is never modified.
func WithEnvironment(env *Dict) Option {
	return func(p *Parser) {
		p.env = env.Clone()
	}
}

// WithMaxDepth limits how deeply lists and dictionaries may nest.
// A depth of zero or less means unlimited.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// WithSource attaches the source text the tokens were lexed from, so that
// errors can render the offending line with [Error.Snippet].
func WithSource(source string) Option {
	return func(p *Parser) {
		p.source = source
	}
}

// NewParser returns a Parser positioned at the first of tokens.
func NewParser(tokens []Token, opts ...Option) *Parser {
	p := &Parser{tokens: tokens}

	for _, opt := range opts {
		opt(p)
	}

	if p.env == nil {
		p.env = new(Dict)
	}

	return p
}

// Parse consumes every token as a sequence of assignments and returns the
// resulting environment.
func (p *Parser) Parse(ctx context.Context) (*Dict, error) {
	p.logger.TraceContext(
		ctx,
		"parse start",
		slog.Int("tokens", len(p.tokens)),
		slog.Int("seeded", p.env.Len()),
	)

	for p.peek().Kind != KindEOF {
		if err := ctx.Err(); err != nil {
			return nil, context.Cause(ctx)
		}

		key, val, err := p.parseAssignment(ctx)
		if err != nil {
			return nil, p.annotate(err)
		}

		p.env.Set(key, val)

		p.logger.TraceContext(
			ctx,
			"assignment",
			slog.String("name", key),
			slog.String("type", val.Type.String()),
			slog.String("pos", val.Pos.String()),
		)
	}

	p.logger.TraceContext(ctx, "parse complete", slog.Int("bindings", p.env.Len()))

	return p.env, nil
}

// annotate attaches the source text to parse errors that lack it.
func (p *Parser) annotate(err error) error {
	var e *Error
	if p.source == "" || !errors.As(err, &e) || e.source != "" {
		return err
	}

	return e.WithSource(p.source)
}

// peek returns the token at the cursor, or an EOF token past the end.
func (p *Parser) peek() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}

	return Token{Kind: KindEOF, Pos: p.end()}
}

// end returns the position just past the last token.
func (p *Parser) end() Position {
	if len(p.tokens) == 0 {
		return Position{Line: 1, Column: 1}
	}

	last := p.tokens[len(p.tokens)-1]
	pos := last.Pos

	for _, r := range last.Literal {
		pos.Offset += len(string(r))
		if r == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}

	return pos
}

// consume advances past the token at the cursor, which must be of kind.
func (p *Parser) consume(kind Kind) (Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return tok, ErrExpectedToken.WithPosition(tok.Pos).With(
			slog.String("expected", kind.String()),
			slog.String("found", tok.Kind.String()),
		)
	}

	p.pos++

	return tok, nil
}

// skip advances past the token at the cursor if it is of kind.
func (p *Parser) skip(kind Kind) bool {
	if p.peek().Kind != kind {
		return false
	}

	p.pos++

	return true
}

func (p *Parser) parseAssignment(ctx context.Context) (string, *Value, error) {
	ident, err := p.consume(KindIdentifier)
	if err != nil {
		return "", nil, err
	}

	if _, err = p.consume(KindAssign); err != nil {
		return "", nil, err
	}

	val, err := p.parseValue(ctx)
	if err != nil {
		return "", nil, err
	}

	if _, err = p.consume(KindSemicolon); err != nil {
		return "", nil, err
	}

	return ident.Literal, val, nil
}

func (p *Parser) parseValue(ctx context.Context) (*Value, error) {
	tok := p.peek()

	switch tok.Kind {
	case KindNumber:
		p.pos++

		n, err := parseNumber(tok)
		if err != nil {
			return nil, err
		}

		return &Value{Type: TypeInteger, Int: n, Pos: tok.Pos}, nil

	case KindString:
		p.pos++

		return &Value{
			Type: TypeString,
			Str:  tok.Literal[1 : len(tok.Literal)-1],
			Pos:  tok.Pos,
		}, nil

	case KindListStart:
		return p.parseList(ctx)

	case KindDictStart:
		return p.parseDict(ctx)

	case KindExprStart:
		return p.parseExpression(ctx)

	default:
		return nil, ErrUnexpectedToken.WithPosition(tok.Pos).With(
			slog.String("kind", tok.Kind.String()),
			slog.String("literal", tok.Literal),
		)
	}
}

// descend tracks nesting depth for lists and dictionaries.
func (p *Parser) descend(tok Token) (func(), error) {
	p.depth++
	if p.maxDepth > 0 && p.depth > p.maxDepth {
		return nil, ErrMaxDepthExceeded.WithPosition(tok.Pos).
			With(slog.Int("max_depth", p.maxDepth))
	}

	return func() { p.depth-- }, nil
}

// parseList parses list( value [,] ... ). A separator must be followed by
// another element, so a trailing comma fails on the closing parenthesis.
func (p *Parser) parseList(ctx context.Context) (*Value, error) {
	start, err := p.consume(KindListStart)
	if err != nil {
		return nil, err
	}

	ascend, err := p.descend(start)
	if err != nil {
		return nil, err
	}
	defer ascend()

	list := &Value{Type: TypeList, List: []*Value{}, Pos: start.Pos}

	for sep := false; sep || p.peek().Kind != KindClose; {
		elem, err := p.parseValue(ctx)
		if err != nil {
			return nil, err
		}

		list.List = append(list.List, elem)
		sep = p.skip(KindComma)
	}

	if _, err = p.consume(KindClose); err != nil {
		return nil, err
	}

	return list, nil
}

// parseDict parses $[ key: value [,] ... ]. Later duplicates of a key replace
// the earlier value.
func (p *Parser) parseDict(ctx context.Context) (*Value, error) {
	start, err := p.consume(KindDictStart)
	if err != nil {
		return nil, err
	}

	ascend, err := p.descend(start)
	if err != nil {
		return nil, err
	}
	defer ascend()

	dict := &Value{Type: TypeDict, Dict: new(Dict), Pos: start.Pos}

	for sep := false; sep || p.peek().Kind != KindCloseDict; {
		pair, err := p.consume(KindDictPair)
		if err != nil {
			return nil, err
		}

		key, _, _ := strings.Cut(pair.Literal, ":")

		elem, err := p.parseValue(ctx)
		if err != nil {
			return nil, err
		}

		dict.Dict.Set(strings.TrimSpace(key), elem)
		sep = p.skip(KindComma)
	}

	if _, err = p.consume(KindCloseDict); err != nil {
		return nil, err
	}

	return dict, nil
}

// parseExpression collects the raw tokens of #{ ... } and reduces them to an
// integer against the current environment.
func (p *Parser) parseExpression(ctx context.Context) (*Value, error) {
	start, err := p.consume(KindExprStart)
	if err != nil {
		return nil, err
	}

	first := p.pos

	for p.peek().Kind != KindExprEnd {
		if p.peek().Kind == KindEOF {
			return nil, ErrExpectedToken.WithPosition(p.end()).With(
				slog.String("expected", KindExprEnd.String()),
				slog.String("found", KindEOF.String()),
			)
		}

		p.pos++
	}

	body := p.tokens[first:p.pos]
	p.pos++ // EXPR_END

	n, err := Evaluate(body, p.env)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			if _, ok := e.Position(); !ok {
				return nil, e.WithPosition(start.Pos)
			}
		}

		return nil, err
	}

	p.logger.TraceContext(
		ctx,
		"expression evaluated",
		slog.Int("tokens", len(body)),
		slog.Int64("result", n),
	)

	return &Value{Type: TypeInteger, Int: n, Pos: start.Pos}, nil
}
