// Package logging assembles structured slog loggers and formatting helpers used
// across shelve.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so organize and undo runs tag every log
// line with the run identifier that is also stored in the move record. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
