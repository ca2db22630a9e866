// Package logging provides the engine's injectable diagnostic logger.
// Grounded on bolt/middleware/logger.go and bolt/core/app.go's direct
// log.Printf calls: nothing in the retrieved teacher family imports a
// third-party logging library, and capacitor/go.mod's own comment ("Core
// dependencies - kept minimal per project philosophy") is explicit evidence
// this corpus treats logging as a stdlib concern rather than a place to add
// a dependency.
package logging

import (
	"log"
	"os"
)

// Logger is the minimal surface the engine needs. *log.Logger satisfies it
// without an adapter; tests can substitute any implementation that captures
// output instead.
type Logger interface {
	Printf(format string, args ...any)
}

// Default returns a *log.Logger writing to stderr with a time-stamped
// prefix, matching the teacher's plain-stdlib default.
func Default() Logger {
	return log.New(os.Stderr, "blaze: ", log.LstdFlags)
}

// Discard is a Logger that drops everything, used when a caller wants the
// engine fully silent (matching the teacher's default EnableLogging: false).
type discard struct{}

func (discard) Printf(string, ...any) {}

// Discard returns a Logger that ignores every call.
func Discard() Logger { return discard{} }
