// Package cmd implements the tomlc subcommands: compile, fmt, eval, watch,
// repl, and init.
//
// Commands that read programs embed [Sources], which resolves file names
// through the search path and parses the files in order into a single
// environment. Results go to standard output unless a command names an
// output file; see [WithStdio] to redirect both streams.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file. It is also the name of the dictionary that
	// holds flag values inside that file.
	ConfigIdentifier = "config"
)
