// Package config carries the process-wide knobs (target root, repository
// path, dry-run/verbose/assume-yes) from the CLI layer to the worker by
// value, and builds the process logger. build, catalog and db do not take a
// Config; they receive the paths they need as plain arguments. No package
// reads an environment variable directly.
package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Config is passed by value; it is small and immutable once constructed.
type Config struct {
	Root      string // target filesystem prefix; defaults to "/"
	Repo      string // source repository tree
	DryRun    bool
	Verbose   bool
	AssumeYes bool
}

// Default returns a Config with Root set to "/", matching the CLI's
// default (spec §6).
func Default() Config {
	return Config{Root: "/"}
}

// NewLogger builds the process logger. Verbose raises the level to Debug;
// the formatter omits timestamps so test output (and `diff` against golden
// transcripts) stays deterministic.
func NewLogger(verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}
