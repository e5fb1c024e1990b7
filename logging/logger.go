// Package logging is the structured logging surface of the repositories.
// Repositories never log payloads, only identifiers, scores and counts.
package logging

import "context"

// Logger records repository events with key-value attributes:
//
//	log.Debug(ctx, "item stored", "id", id, "score", sc)
//
// Debug carries one record per mutation, Warn flags store inconsistencies
// such as index entries without a payload, Info reports maintenance like
// pruning, and Error is left to callers.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With binds attributes, typically the repository name, to every record.
	With(args ...any) Logger
}
