// Package meshlog wires up the shared btclog backend used by every
// subsystem in the gateway. Each package that wants a logger declares a
// package-level logger and a UseLogger setter; cmd/meshgated hands each one
// a tagged logger at process start, following the pattern lnd uses for its
// per-package loggers.
package meshlog

import (
	"io"
	"os"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate"
)

// Disabled is a logger that swallows everything. Packages default to this
// until UseLogger gives them a real logger, so unit tests that never wire
// a logger don't panic on a nil one.
var Disabled = btclog.Disabled

var backendLog = btclog.NewBackend(os.Stdout)

// rotator is kept around so it can be flushed on shutdown.
var rotator *logrotate.Rotator

// InitBackend points the shared backend at both stdout and a rotating log
// file at logFile, and returns a function that flushes buffered writes.
// Safe to call once at process start; subsequent calls are no-ops.
func InitBackend(logFile string) (func(), error) {
	if rotator != nil {
		return func() {}, nil
	}

	r, err := logrotate.NewRotator(logFile)
	if err != nil {
		return nil, err
	}
	rotator = r

	backendLog = btclog.NewBackend(io.MultiWriter(os.Stdout, r))

	return func() {
		if rotator != nil {
			rotator.Close()
		}
	}, nil
}

// NewSubsystemLogger returns a leveled logger tagged with the given
// four-to-five character subsystem name, matching lnd's GATW/DISC/FWD/HLTH
// style tags.
func NewSubsystemLogger(tag string) btclog.Logger {
	l := backendLog.Logger(tag)
	l.SetLevel(btclog.LevelInfo)
	subsystemLoggers[tag] = append(subsystemLoggers[tag], l)
	return l
}

// subsystemLoggers records every logger NewSubsystemLogger has returned,
// by tag, so SetLevel can reach them.
var subsystemLoggers = map[string][]btclog.Logger{}

// SetLevel updates the level of every subsystem logger created with tag
// through NewSubsystemLogger. Subsystems registered after this call pick up
// the previous default; call after all packages have registered for a
// global effect.
func SetLevel(tag string, level btclog.Level) {
	for _, l := range subsystemLoggers[tag] {
		l.SetLevel(level)
	}
}
