package ai

import "sync/atomic"

// debugLoggingEnabled gates debug logging for the AI subsystem as a
// package-level flag, avoiding a log-level check on every tick.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging switches AI debug logging on or off.
// Called once during initialization after the config is parsed.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled reports whether AI debug logging is enabled. Guard
// expensive debug log calls with it:
//
//	if ai.IsDebugEnabled() {
//	    slog.Debug("state changed", "enemy", name, "to", state)
//	}
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
