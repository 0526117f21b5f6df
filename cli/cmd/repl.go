package cmd

import (
	"context"
	"os"

	"github.com/ardnew/tomlc/cli/cmd/repl"
	"github.com/ardnew/tomlc/lang"
	"github.com/ardnew/tomlc/log"
)

// Repl starts an interactive session. Named sources are loaded first; unlike
// the other commands, no source means an empty session rather than stdin.
type Repl struct {
	Sources `embed:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	env := new(lang.Dict)

	if len(r.Source) > 0 {
		env, err = r.load(ctx)
		if err != nil {
			return err
		}
	}

	cacheDir := os.TempDir()
	if ktx := kongContextFrom(ctx); ktx != nil {
		if dir, ok := ktx.Model.Vars()[CacheIdentifier]; ok {
			cacheDir = dir
		}
	}

	return repl.Run(ctx, env, cacheDir, log.Default(), r.MaxDepth)
}
