// Package slog provides log/slog decorators for the cratedocs service
// interfaces. Each decorator logs one line per call with its key attributes,
// duration and error.
package slog
