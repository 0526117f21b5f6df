package cli

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/tomlc/cli/cmd"
	"github.com/ardnew/tomlc/lang"
	"github.com/ardnew/tomlc/log"
)

// resolve returns a [kong.ConfigurationLoader] for configuration files
// written as programs. Flag values are read from the dictionary bound to
// name:
//
//	config <- $[
//	  loglevel: "debug",
//	  logpretty: "false",
//	  searchpath: list("/etc/tomlc", "/usr/share/tomlc")
//	];
//
// Keys are flag names with hyphens removed, since identifiers consist of
// lowercase letters only. Booleans are written as strings. Lists supply
// repeated flags. Other top-level bindings are ignored, and a file that fails
// to parse is logged and otherwise ignored. Command-line flags override
// configured values.
func resolve(ctx context.Context, name string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		env, err := lang.ParseReader(ctx, r, lang.WithLogger(log.Default()))
		if err != nil {
			log.WarnContext(ctx, "ignoring configuration file",
				slog.Any("error", err))

			return config{}, nil
		}

		val, ok := env.Get(name)
		if !ok || val.Type != lang.TypeDict {
			return config{}, nil
		}

		return makeConfig(val.Dict), nil
	}
}

// config implements [kong.Resolver] over flag values keyed by
// [cmd.ConfigKey].
type config map[string]string

func makeConfig(d *lang.Dict) config {
	c := make(config, d.Len())

	for key, val := range d.All() {
		if s, ok := flagText(val); ok {
			c[key] = s
		}
	}

	return c
}

// flagText renders v the way kong decodes a flag from text.
func flagText(v *lang.Value) (string, bool) {
	switch v.Type {
	case lang.TypeInteger:
		return strconv.FormatInt(v.Int, 10), true

	case lang.TypeString:
		return v.Str, true

	case lang.TypeList:
		elems := make([]string, 0, len(v.List))

		for _, e := range v.List {
			s, ok := flagText(e)
			if !ok || e.Type == lang.TypeList {
				return "", false
			}

			elems = append(elems, s)
		}

		return strings.Join(elems, ","), true

	default:
		return "", false
	}
}

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver]. A nil value leaves the flag default in
// place.
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if value, ok := c[cmd.ConfigKey(flag.Name)]; ok {
		return value, nil
	}

	return nil, nil
}
