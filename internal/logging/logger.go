// Package logging is the structured-logging seam shared by the server and
// the client tooling. Code logs through the Logger interface so tests can
// swap in a discard logger and the backend stays replaceable.
package logging

import "context"

// Logger emits structured records. The trailing args alternate keys and
// values, slog style:
//
//	log.Info(ctx, "upload finalized", "fileId", id, "parts", n)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger whose records always carry the given pairs.
	With(args ...any) Logger
}
