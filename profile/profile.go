package profile

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Profiler describes one profiling session.
type Profiler struct {
	// Mode is one of [Modes]. An empty or unsupported mode disables
	// profiling.
	Mode string
	// Path is the output directory. The working directory is used if empty.
	Path string
	// Quiet suppresses the profiler's own log lines.
	Quiet bool
}

// Enabled reports whether Start would begin a profiling session.
func (p Profiler) Enabled() bool {
	return p.Mode != "" && supported(p.Mode)
}

// Start begins profiling and returns a [Stopper] for it.
// Both Start and Stop are always safely callable, including when the package
// is built without the pprof tag.
func (p Profiler) Start() Stopper {
	if !p.Enabled() {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
