package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/tomlc/lang"
	"github.com/ardnew/tomlc/log"
	"github.com/ardnew/tomlc/pkg"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	stdinKey  struct{}
	stdoutKey struct{}
)

// WithStdio returns a new context.Context whose commands read standard input
// from r and write results to w instead of [os.Stdin] and [os.Stdout].
// A nil reader or writer leaves the corresponding default in place.
func WithStdio(ctx context.Context, r io.Reader, w io.Writer) context.Context {
	if r != nil {
		ctx = context.WithValue(ctx, stdinKey{}, r)
	}

	if w != nil {
		ctx = context.WithValue(ctx, stdoutKey{}, w)
	}

	return ctx
}

func stdinFrom(ctx context.Context) io.Reader {
	if r, ok := ctx.Value(stdinKey{}).(io.Reader); ok {
		return r
	}

	return os.Stdin
}

func stdoutFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(stdoutKey{}).(io.Writer); ok {
		return w
	}

	return os.Stdout
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// Sources are the input flags and arguments shared by every command that
// reads programs.
//
// Each source is parsed in order with the assignments of the previous ones in
// scope, so later files can refer to and override earlier bindings.
type Sources struct {
	Source     []string `arg:""     help:"Source file(s), or '-' for stdin (default)." name:"source" optional:""`
	SearchPath []string `help:"Directory searched for relative source paths." name:"search-path" placeholder:"DIR" short:"I" type:"path"`
	MaxDepth   int      `default:"0" help:"Maximum nesting depth of lists and dictionaries (0 is unlimited)."`
}

// input is one source read into memory.
type input struct {
	name string
	text string
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// paths resolves every named source through the search path. Stdin appears
// at most once, and files reached through different paths are read once.
func (s Sources) paths() ([]string, error) {
	if len(s.Source) == 0 {
		return []string{stdinSource}, nil
	}

	var (
		out   []string
		seen  = make(map[fileKey]struct{})
		stdin bool
	)

	for _, src := range s.Source {
		if src == stdinSource {
			if !stdin {
				out = append(out, stdinSource)
				stdin = true
			}

			continue
		}

		path, err := pkg.Locate(src, s.SearchPath...)
		if err != nil {
			return nil, ErrOpenSource.
				With(slog.String("file", src)).
				Wrap(err)
		}

		if resolved, err := filepath.EvalSymlinks(path); err == nil {
			path = resolved
		}

		if info, err := os.Stat(path); err == nil {
			if key, ok := makeFileKey(info); ok {
				if _, dup := seen[key]; dup {
					continue
				}

				seen[key] = struct{}{}
			}
		}

		out = append(out, path)
	}

	return out, nil
}

// files returns the resolved source paths, rejecting stdin.
func (s Sources) files() ([]string, error) {
	paths, err := s.paths()
	if err != nil {
		return nil, err
	}

	for _, path := range paths {
		if path == stdinSource {
			return nil, ErrWatchStdin
		}
	}

	return paths, nil
}

// read loads every source into memory.
func (s Sources) read(ctx context.Context) ([]input, error) {
	paths, err := s.paths()
	if err != nil {
		return nil, err
	}

	inputs := make([]input, 0, len(paths))

	for _, path := range paths {
		text, err := readSource(ctx, path)
		if err != nil {
			return nil, err
		}

		inputs = append(inputs, input{name: path, text: text})
	}

	return inputs, nil
}

func readSource(ctx context.Context, path string) (string, error) {
	if path == stdinSource {
		data, err := lang.ReadAll(stdinFrom(ctx))
		if err != nil {
			return "", ErrReadSource.With(slog.String("file", path)).Wrap(err)
		}

		return string(data), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", ErrOpenSource.With(slog.String("file", path)).Wrap(err)
	}
	defer f.Close()

	data, err := lang.ReadAll(f)
	if err != nil {
		return "", ErrReadSource.With(slog.String("file", path)).Wrap(err)
	}

	return string(data), nil
}

// load parses every source in order and returns the combined environment.
func (s Sources) load(ctx context.Context) (*lang.Dict, error) {
	inputs, err := s.read(ctx)
	if err != nil {
		return nil, err
	}

	return s.parse(ctx, inputs)
}

func (s Sources) parse(ctx context.Context, inputs []input) (*lang.Dict, error) {
	env := new(lang.Dict)

	for _, in := range inputs {
		next, err := lang.ParseString(ctx, in.text,
			lang.WithEnvironment(env),
			lang.WithMaxDepth(s.MaxDepth),
			lang.WithLogger(log.Default()),
		)
		if err != nil {
			return nil, lang.WrapError(err).With(slog.String("file", in.name))
		}

		log.TraceContext(ctx, "source parsed",
			slog.String("file", in.name),
			slog.Int("bindings", next.Len()),
		)

		env = next
	}

	return env, nil
}

// writeOutput writes data to path, or to standard output if path is empty or
// "-". An existing file that already holds data is left untouched so that its
// modification time is preserved. Otherwise the file is replaced atomically.
func writeOutput(ctx context.Context, path string, data []byte) (bool, error) {
	if path == "" || path == stdinSource {
		if _, err := stdoutFrom(ctx).Write(data); err != nil {
			return false, ErrWriteOutput.Wrap(err)
		}

		return true, nil
	}

	if unchanged(path, data) {
		log.DebugContext(ctx, "output unchanged", slog.String("file", path))

		return false, nil
	}

	if err := replaceFile(path, data); err != nil {
		return false, ErrWriteOutput.With(slog.String("file", path)).Wrap(err)
	}

	log.DebugContext(ctx, "output written",
		slog.String("file", path),
		slog.Int("bytes", len(data)),
	)

	return true, nil
}

// unchanged reports whether the regular file at path already holds data. The
// file is streamed through a 128-bit digest rather than read into memory.
func unchanged(path string, data []byte) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() || info.Size() != int64(len(data)) {
		return false
	}

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return false
	}

	return h.Sum128() == xxh3.Hash128(data)
}

func replaceFile(path string, data []byte) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*")
	if err != nil {
		return err
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()

		return err
	}

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()

		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
