package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/tomlc/log"
)

// Watch recompiles source programs whenever one of them changes.
type Watch struct {
	Sources `embed:""`

	Output   string        `help:"Write TOML to this file." placeholder:"FILE" required:"" short:"o" type:"path"`
	Indent   int           `default:"0"     help:"Indent width for nested tables." short:"i"`
	Debounce time.Duration `default:"100ms" help:"Quiet period after a change before recompiling."`
}

// Run executes the watch command. It returns when interrupted.
func (w *Watch) Run(ctx context.Context) (err error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	files, err := w.files()
	if err != nil {
		return err
	}

	for i, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			files[i] = abs
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer watcher.Close()

	// Editors often replace files by renaming over them, which drops a watch
	// on the file itself, so the parent directories are watched instead.
	dirs := make(map[string]struct{})
	for _, f := range files {
		dirs[filepath.Dir(f)] = struct{}{}
	}

	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return ErrWatch.With(slog.String("dir", dir)).Wrap(err)
		}
	}

	log.InfoContext(ctx, "watching",
		slog.Any("sources", files),
		slog.String("output", w.Output),
	)

	w.rebuild(ctx)

	return w.loop(ctx, watcher.Events, watcher.Errors, files, func() {
		w.rebuild(ctx)
	})
}

// loop waits for changes to any of files and calls rebuild once per burst
// of events, after the debounce period has passed without further changes.
func (w *Watch) loop(
	ctx context.Context,
	events <-chan fsnotify.Event,
	errs <-chan error,
	files []string,
	rebuild func(),
) error {
	watched := make(map[string]struct{}, len(files))
	for _, f := range files {
		watched[filepath.Clean(f)] = struct{}{}
	}

	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			log.DebugContext(ctx, "watch stopped")

			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}

			if _, ok := watched[filepath.Clean(ev.Name)]; !ok {
				continue
			}

			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
				!ev.Has(fsnotify.Rename) {
				continue
			}

			log.TraceContext(ctx, "change detected",
				slog.String("file", ev.Name),
				slog.String("op", ev.Op.String()),
			)

			fire = time.After(w.Debounce)

		case err, ok := <-errs:
			if !ok {
				return nil
			}

			log.WarnContext(ctx, "watch error", slog.Any("error", err))

		case <-fire:
			fire = nil

			rebuild()
		}
	}
}

// rebuild compiles the sources once. Failures are logged, not returned, so
// that watching continues until the sources are fixed.
func (w *Watch) rebuild(ctx context.Context) {
	env, err := w.load(ctx)
	if err != nil {
		log.ErrorContext(ctx, "compile failed", slog.Any("error", err))

		return
	}

	data, err := renderTOML(ctx, env, w.Indent)
	if err != nil {
		log.ErrorContext(ctx, "compile failed", slog.Any("error", err))

		return
	}

	changed, err := writeOutput(ctx, w.Output, data)
	if err != nil {
		log.ErrorContext(ctx, "write failed", slog.Any("error", err))

		return
	}

	if changed {
		log.InfoContext(ctx, "compiled",
			slog.String("output", w.Output),
			slog.Int("bindings", env.Len()),
		)
	}
}
