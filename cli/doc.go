// Package cli contains the command line interface for tomlc.
//
// # Usage
//
// The default command compiles programs to TOML:
//
//	tomlc app.tc base.tc -o app.toml
//	tomlc fmt json app.tc
//	tomlc eval 'len(servers)' app.tc
//	tomlc watch app.tc -o app.toml
//	tomlc repl app.tc
//
// # Configuration File
//
// Flag defaults are read from config.tc in the user configuration directory
// (for example ~/.config/tomlc/config.tc), written in the same language as
// the programs it compiles. Flag values live in a dictionary named config,
// keyed by flag name with hyphens removed:
//
//	config <- $[ loglevel: "debug", logpretty: "false" ];
//
// The init command writes such a file from the current flag values. A JSON
// file at the same path with a .json suffix is also read. Command-line flags
// override both.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp layout (rfc3339, kitchen, none, ...)
//   - --log-caller: Include caller information in log output
//   - --[no-]log-pretty: Flatten attributes and colorize on a terminal
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o tomlc .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/tomlc/pprof)
package cli
