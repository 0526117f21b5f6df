//go:build pprof

package profile

import (
	"maps"
	"slices"
	"sync"

	"github.com/pkg/profile"

	_ "net/http/pprof" // register HTTP handlers
)

// Modes returns the sorted list of supported profiling modes.
var Modes = sync.OnceValue(
	func() []string {
		return slices.Sorted(maps.Keys(mode))
	},
)

var mode = map[string]func(*profile.Profile){
	"allocs":    profile.MemProfileAllocs,
	"block":     profile.BlockProfile,
	"clock":     profile.ClockProfile,
	"cpu":       profile.CPUProfile,
	"goroutine": profile.GoroutineProfile,
	"heap":      profile.MemProfileHeap,
	"mem":       profile.MemProfile,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

func supported(m string) bool {
	_, ok := mode[m]

	return ok
}

// option appends a profile setting derived from a Profiler.
type option func(Profiler, []func(*profile.Profile)) []func(*profile.Profile)

func withMode(p Profiler, opts []func(*profile.Profile)) []func(*profile.Profile) {
	return append(opts, mode[p.Mode])
}

func withPath(p Profiler, opts []func(*profile.Profile)) []func(*profile.Profile) {
	if p.Path == "" {
		return opts
	}

	return append(opts, profile.ProfilePath(p.Path))
}

func withQuiet(p Profiler, opts []func(*profile.Profile)) []func(*profile.Profile) {
	if !p.Quiet {
		return opts
	}

	return append(opts, profile.Quiet)
}

func start(p Profiler) Stopper {
	var opts []func(*profile.Profile)

	for _, fn := range []option{withMode, withPath, withQuiet} {
		opts = fn(p, opts)
	}

	// The CLI stops the session when its context ends.
	opts = append(opts, profile.NoShutdownHook)

	return profile.Start(opts...)
}
