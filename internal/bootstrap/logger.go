package bootstrap

import (
	"fmt"
	"io"
	"os"
)

// Logger provides logging methods for the bootstrap run
type Logger interface {
	Info(format string, args ...interface{})
	Verbose(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// StdLogger implements Logger using stdout/stderr
type StdLogger struct {
	verbose bool
	quiet   bool
	out     io.Writer
	errOut  io.Writer
}

// NewStdLogger creates a new standard logger
func NewStdLogger(verbose, quiet bool) *StdLogger {
	return NewWriterLogger(os.Stdout, os.Stderr, verbose, quiet)
}

// NewWriterLogger creates a logger writing to the given streams
func NewWriterLogger(out, errOut io.Writer, verbose, quiet bool) *StdLogger {
	return &StdLogger{verbose: verbose, quiet: quiet, out: out, errOut: errOut}
}

// Info logs info messages (unless quiet)
func (l *StdLogger) Info(format string, args ...interface{}) {
	if !l.quiet {
		fmt.Fprintf(l.out, format+"\n", args...)
	}
}

// Verbose logs verbose/debug messages (only if verbose and not quiet)
func (l *StdLogger) Verbose(format string, args ...interface{}) {
	if l.verbose && !l.quiet {
		fmt.Fprintf(l.out, "[DEBUG] "+format+"\n", args...)
	}
}

// Error logs error messages to stderr
func (l *StdLogger) Error(format string, args ...interface{}) {
	fmt.Fprintf(l.errOut, "Error: "+format+"\n", args...)
}

// NopLogger discards everything
type NopLogger struct{}

func (NopLogger) Info(string, ...interface{})    {}
func (NopLogger) Verbose(string, ...interface{}) {}
func (NopLogger) Error(string, ...interface{})   {}
