// Package diag provides the "log and continue" logger the interpreter and
// resolver use for the recoverable-error policy in spec.md §7: warnings and
// info notices that keep the current render going, as opposed to an error
// returned to the caller.
package diag

import (
	"log"
	"os"
)

var std = log.New(os.Stderr, "pdf: ", 0)

// SetOutput redirects diagnostic output; embedders that want to silence or
// collect pdfcore's warnings call this once at startup.
func SetOutput(l *log.Logger) {
	std = l
}

// Warnf logs a recoverable condition: a malformed operator, an unknown gs
// key, a dangling reference — anything spec.md §7 says to "log and
// continue" rather than abort.
func Warnf(format string, args ...any) {
	std.Printf("WARN "+format, args...)
}

// Infof logs a non-actionable notice, such as an unpaired Q tolerated at the
// graphics-state stack.
func Infof(format string, args ...any) {
	std.Printf("INFO "+format, args...)
}
