package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/tomlc/lang"
	"github.com/ardnew/tomlc/log"
	"github.com/ardnew/tomlc/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	if err := os.MkdirAll(filepath.Dir(confPath), 0o700); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}
	defer file.Close()

	env := new(lang.Dict)
	env.Set(ConfigIdentifier, lang.NewDict(configDict(ktx)))

	err = lang.Format(ctx, file, env, defaultConfigIndent)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// ConfigKey returns the configuration file key of a flag: its name with
// hyphens removed, since identifiers consist of lowercase letters only.
func ConfigKey(flag string) string {
	return strings.ReplaceAll(flag, "-", "")
}

// configDict builds the configuration dictionary from the global flags and
// their current values. Command-specific flags are not included.
func configDict(ktx *kong.Context) *lang.Dict {
	d := new(lang.Dict)

	prefixIgnore := []string{"help", "version", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if val := flagValue(ktx.FlagValue(flag)); val != nil {
			d.Set(ConfigKey(flag.Name), val)
		}
	}

	return d
}

// flagValue converts a flag value to a language value, or nil if it is unset
// or cannot be represented.
func flagValue(val any) *lang.Value {
	if val == nil {
		return nil
	}

	if v, ok := val.(fmt.Stringer); ok {
		return stringValue(v.String())
	}

	rv := reflect.ValueOf(val)

	switch rv.Kind() {
	case reflect.Bool:
		return lang.NewString(fmt.Sprint(rv.Bool()))

	case reflect.String:
		return stringValue(rv.String())

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lang.NewInteger(rv.Int())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return lang.NewInteger(int64(rv.Uint()))

	case reflect.Slice:
		if rv.Len() == 0 {
			return nil
		}

		elems := make([]*lang.Value, 0, rv.Len())

		for i := range rv.Len() {
			if e := flagValue(rv.Index(i).Interface()); e != nil {
				elems = append(elems, e)
			}
		}

		return lang.NewList(elems...)

	default:
		return stringValue(fmt.Sprint(val))
	}
}

// stringValue returns nil for strings the native format cannot quote.
func stringValue(s string) *lang.Value {
	if s == "" || !lang.Quotable(s) {
		return nil
	}

	return lang.NewString(s)
}
