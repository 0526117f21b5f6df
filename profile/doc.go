// Package profile provides optional runtime profiling for tomlc.
//
// Profiling is backed by [github.com/pkg/profile] and compiled in only when
// the "pprof" build tag is set:
//
//	go build -tags pprof -o tomlc .
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a no-op
// stopper, so callers never need build constraints of their own.
//
// # Modes
//
// The supported modes are allocs, block, clock, cpu, goroutine, heap, mem,
// mutex, thread, and trace. Each writes a single profile named after the
// mode (for example, cpu.pprof) into [Profiler.Path].
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles", Quiet: true}
//	defer p.Start().Stop()
//
// # Analysis
//
// Profiles are read with the standard tooling:
//
//	go tool pprof -http=: /tmp/profiles/cpu.pprof
//
// When built with the tag, the package also registers the [net/http/pprof]
// handlers on [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
