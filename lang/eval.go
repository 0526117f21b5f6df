package lang

import (
	"log/slog"
	"math"
	"strconv"
)

// Evaluate reduces a postfix token sequence to a single integer.
//
// Operands are NUMBER literals and IDENTIFIERs bound in env to integers.
// Each OPERATOR pops b then a and pushes a op b; division truncates toward
// zero. The FUNCTION max() pops two operands and pushes the larger. Exactly
// one value must remain when the sequence is exhausted.
func Evaluate(tokens []Token, env *Dict) (int64, error) {
	stack := make([]int64, 0, len(tokens))

	pop2 := func(tok Token) (a, b int64, err error) {
		if len(stack) < 2 {
			return 0, 0, ErrInsufficientOperands.WithPosition(tok.Pos).With(
				slog.String("literal", tok.Literal),
				slog.Int("depth", len(stack)),
			)
		}

		n := len(stack)
		a, b = stack[n-2], stack[n-1]
		stack = stack[:n-2]

		return a, b, nil
	}

	for _, tok := range tokens {
		switch tok.Kind {
		case KindNumber:
			n, err := parseNumber(tok)
			if err != nil {
				return 0, err
			}

			stack = append(stack, n)

		case KindIdentifier:
			n, err := lookupInteger(tok, env)
			if err != nil {
				return 0, err
			}

			stack = append(stack, n)

		case KindOperator:
			a, b, err := pop2(tok)
			if err != nil {
				return 0, err
			}

			r, err := apply(tok, a, b)
			if err != nil {
				return 0, err
			}

			stack = append(stack, r)

		case KindFunction:
			if tok.Literal != "max()" {
				return 0, ErrUnexpectedTokenInExpression.WithPosition(tok.Pos).
					With(slog.String("literal", tok.Literal))
			}

			a, b, err := pop2(tok)
			if err != nil {
				return 0, err
			}

			stack = append(stack, max(a, b))

		default:
			return 0, ErrUnexpectedTokenInExpression.WithPosition(tok.Pos).With(
				slog.String("kind", tok.Kind.String()),
				slog.String("literal", tok.Literal),
			)
		}
	}

	if len(stack) != 1 {
		return 0, ErrMalformedExpression.With(slog.Int("depth", len(stack)))
	}

	return stack[0], nil
}

// parseNumber converts a NUMBER token to int64.
func parseNumber(tok Token) (int64, error) {
	n, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		return 0, ErrInvalidNumber.WithPosition(tok.Pos).
			With(slog.String("literal", tok.Literal)).
			Wrap(err)
	}

	return n, nil
}

// lookupInteger resolves an identifier against env.
func lookupInteger(tok Token, env *Dict) (int64, error) {
	v, ok := env.Get(tok.Literal)
	if !ok {
		return 0, ErrUnknownIdentifier.WithPosition(tok.Pos).
			With(slog.String("name", tok.Literal))
	}

	if v.Type != TypeInteger {
		return 0, ErrNotInteger.WithPosition(tok.Pos).With(
			slog.String("name", tok.Literal),
			slog.String("kind", v.Type.String()),
		)
	}

	return v.Int, nil
}

// apply computes a op b for one of the four arithmetic operators, failing
// rather than wrapping on overflow.
func apply(tok Token, a, b int64) (int64, error) {
	overflow := func() error {
		return ErrIntegerOverflow.WithPosition(tok.Pos).With(
			slog.String("literal", tok.Literal),
			slog.Int64("a", a),
			slog.Int64("b", b),
		)
	}

	switch tok.Literal {
	case "+":
		if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
			return 0, overflow()
		}

		return a + b, nil

	case "-":
		if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
			return 0, overflow()
		}

		return a - b, nil

	case "*":
		if a == 0 || b == 0 {
			return 0, nil
		}

		if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
			return 0, overflow()
		}

		r := a * b
		if r/b != a {
			return 0, overflow()
		}

		return r, nil

	case "/":
		if b == 0 {
			return 0, ErrDivisionByZero.WithPosition(tok.Pos).
				With(slog.Int64("a", a))
		}

		if a == math.MinInt64 && b == -1 {
			return 0, overflow()
		}

		return a / b, nil

	default:
		return 0, ErrUnexpectedTokenInExpression.WithPosition(tok.Pos).
			With(slog.String("literal", tok.Literal))
	}
}
