package lang

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes env in native language syntax to the writer, one assignment
// per line. A positive indent spreads dictionary entries over separate lines.
// The output parses back to an equal environment. An environment built in Go
// may hold what the syntax cannot express, a key that is not an identifier or
// a string that is not [Quotable], and fails with [ErrMarshal] before anything
// is written.
func Format(_ context.Context, w io.Writer, env *Dict, indent int) error {
	var buf strings.Builder

	for key, val := range env.All() {
		if err := checkNative(key, val); err != nil {
			return err
		}
	}

	for key, val := range env.All() {
		buf.WriteString(key)
		buf.WriteString(" <- ")
		formatValue(&buf, val, indent, 0)
		buf.WriteString(";\n")
	}

	_, err := io.WriteString(w, buf.String())

	return err
}

// FormatTOML writes env as TOML to the writer.
func FormatTOML(_ context.Context, w io.Writer, env *Dict, indent int) error {
	opts := TOMLOptions{IndentTables: indent > 0}
	if indent > 0 {
		opts.IndentSymbol = strings.Repeat(" ", indent)
	}

	return EncodeTOML(w, env, opts)
}

// FormatJSON writes env as JSON to the writer.
func FormatJSON(_ context.Context, w io.Writer, env *Dict, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(env, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(env)
	}

	if err != nil {
		return ErrMarshal.Wrap(err)
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes env as YAML to the writer.
func FormatYAML(ctx context.Context, w io.Writer, env *Dict, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, yamlMap(env), opts...)
	if err != nil {
		return ErrMarshal.Wrap(err)
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// FormatTokens writes one token per line with its position.
func FormatTokens(_ context.Context, w io.Writer, tokens []Token) error {
	var buf strings.Builder

	for _, tok := range tokens {
		buf.WriteString(tok.Pos.String())
		buf.WriteByte('\t')
		buf.WriteString(tok.String())
		buf.WriteByte('\n')
	}

	_, err := io.WriteString(w, buf.String())

	return err
}

// String returns v in native syntax on a single line.
func (v *Value) String() string {
	if v == nil {
		return "<nil>"
	}

	var buf strings.Builder

	formatValue(&buf, v, 0, 0)

	return buf.String()
}

// Quotable reports whether s can be written as a string literal, which has
// no escapes and so cannot contain a double quote.
func Quotable(s string) bool {
	return !strings.ContainsRune(s, '"')
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i := range len(s) {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}

	return true
}

// checkNative walks v, bound to key, for anything Format cannot express.
func checkNative(key string, v *Value) error {
	if !isIdentifier(key) {
		return ErrMarshal.With(
			slog.String("format", "native"),
			slog.String("name", key),
		).Wrap(errNotIdentifier)
	}

	switch v.Type {
	case TypeString:
		if !Quotable(v.Str) {
			return ErrMarshal.With(
				slog.String("format", "native"),
				slog.String("name", key),
			).Wrap(errUnquotable)
		}

	case TypeList:
		for _, e := range v.List {
			if err := checkNative(key, e); err != nil {
				return err
			}
		}

	case TypeDict:
		for k, e := range v.Dict.All() {
			if err := checkNative(k, e); err != nil {
				return err
			}
		}
	}

	return nil
}

var (
	errNotIdentifier = errors.New("key is not an identifier")
	errUnquotable    = errors.New("string contains a double quote")
)

func formatValue(buf *strings.Builder, v *Value, indent, depth int) {
	switch v.Type {
	case TypeInteger:
		buf.WriteString(formatInteger(v.Int))

	case TypeString:
		buf.WriteByte('"')
		buf.WriteString(v.Str)
		buf.WriteByte('"')

	case TypeList:
		buf.WriteString("list(")

		for i, e := range v.List {
			if i > 0 {
				buf.WriteString(", ")
			}

			formatValue(buf, e, indent, depth)
		}

		buf.WriteByte(')')

	case TypeDict:
		formatDict(buf, v.Dict, indent, depth)
	}
}

func formatDict(buf *strings.Builder, d *Dict, indent, depth int) {
	buf.WriteString("$[")

	if d.Len() == 0 {
		buf.WriteByte(']')

		return
	}

	if indent == 0 {
		buf.WriteByte(' ')
	}

	i := 0

	for key, val := range d.All() {
		if i > 0 {
			buf.WriteByte(',')

			if indent == 0 {
				buf.WriteByte(' ')
			}
		}

		if indent > 0 {
			buf.WriteByte('\n')
			buf.WriteString(strings.Repeat(" ", (depth+1)*indent))
		}

		buf.WriteString(key)
		buf.WriteString(": ")
		formatValue(buf, val, indent, depth+1)

		i++
	}

	if indent > 0 {
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat(" ", depth*indent))
	} else {
		buf.WriteByte(' ')
	}

	buf.WriteByte(']')
}

// formatInteger renders n as a NUMBER literal, or as an expression when n is
// negative since literals are unsigned.
func formatInteger(n int64) string {
	switch {
	case n >= 0:
		return strconv.FormatInt(n, 10)

	case n == math.MinInt64:
		return "#{0 " + strconv.FormatInt(math.MaxInt64, 10) + " - 1 -}"

	default:
		return "#{0 " + strconv.FormatInt(-n, 10) + " -}"
	}
}

func writer(w io.Writer) func(eol string, item ...string) {
	return func(eol string, item ...string) {
		_, err := io.WriteString(w, strings.Join(item, ": ")+eol)
		if err != nil {
			panic(err)
		}
	}
}

// PrintTree writes an indented outline of env, one value per line, annotated
// with types and source positions.
func PrintTree(ctx context.Context, w io.Writer, env *Dict) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e

				return
			}

			panic(r)
		}
	}()

	put := writer(w)

	for key, val := range env.All() {
		put("\n", "Assignment", key)
		val.Print(ctx, w, 1)
	}

	return nil
}

// Print writes a formatted representation of the value.
func (v *Value) Print(ctx context.Context, w io.Writer, indent int) {
	prefix := strings.Repeat("  ", indent)
	put := writer(w)

	switch v.Type {
	case TypeList:
		put("\n", prefix+"List", v.Pos.String()+" ("+strconv.Itoa(len(v.List))+")")

		for _, e := range v.List {
			e.Print(ctx, w, indent+1)
		}

	case TypeDict:
		put("\n", prefix+"Dict", v.Pos.String()+" ("+strconv.Itoa(v.Dict.Len())+")")

		for key, val := range v.Dict.All() {
			put("\n", prefix+"  Key", key)
			val.Print(ctx, w, indent+2)
		}

	case TypeString:
		put("\n", prefix+"String", v.Pos.String(), strconv.Quote(v.Str))

	default:
		put("\n", prefix+v.Type.String(), v.Pos.String(), strconv.FormatInt(v.Int, 10))
	}
}
