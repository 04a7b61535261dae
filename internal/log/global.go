package log

import "sync/atomic"

// fallback is the logger the CLI installs once flags are parsed. Packages
// built before that (the session store, the gateway) read it lazily so they
// pick up the configured level and format.
var fallback atomic.Pointer[Logger]

// SetDefaultLogger installs logger as the fallback and returns the one it
// replaced, which may be nil. Passing nil resets to the lazy default.
func SetDefaultLogger(logger *Logger) *Logger {
	return fallback.Swap(logger)
}

// DefaultLogger returns the installed fallback. Concurrent first callers
// all get the same lazily built Default logger.
func DefaultLogger() *Logger {
	if l := fallback.Load(); l != nil {
		return l
	}
	fallback.CompareAndSwap(nil, Default())
	return fallback.Load()
}
