package logging

import (
	"fmt"
	"io"
	"os"
)

// output is where log lines are written; tests may replace it.
var output io.Writer = os.Stderr

// verbose turns debug output on without the environment variable.
var verbose bool

// DebugEnabled returns true if debug mode is enabled via TODO_DEBUG environment variable
// or SetVerbose.
func DebugEnabled() bool {
	return verbose || os.Getenv("TODO_DEBUG") != ""
}

// SetVerbose forces debug output on or off, regardless of TODO_DEBUG.
func SetVerbose(enabled bool) {
	verbose = enabled
}

// Debugf prints a formatted debug message only if debug mode is enabled
func Debugf(format string, args ...interface{}) {
	if DebugEnabled() {
		fmt.Fprintf(output, "debug: "+format, args...)
	}
}

// Debugln prints a debug message followed by a newline only if debug mode is enabled
func Debugln(args ...interface{}) {
	if DebugEnabled() {
		fmt.Fprintln(output, append([]interface{}{"debug:"}, args...)...)
	}
}

// Warnf prints a formatted warning regardless of debug mode
func Warnf(format string, args ...interface{}) {
	fmt.Fprintf(output, "warning: "+format, args...)
}

// SetOutput redirects log output and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	prev := output
	output = w
	return prev
}
