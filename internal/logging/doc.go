// Package logging constructs the slog loggers used across questlog and
// provides shared attribute helpers and field-name constants. Components
// receive a logger through their constructors; debug verbosity is decided
// once at startup rather than by per-call environment checks.
package logging
