package corebase

import (
	"context"
	"time"
)

// Authenticator resolves the acting identity for a request. It is the only
// collaborator allowed to produce a [UserContext] from request credentials;
// the pipeline itself never parses tokens or sessions.
type Authenticator interface {
	// Authenticate resolves a bearer credential into a UserContext. It
	// returns apperr-kind Unauthenticated when the credential is missing
	// or invalid.
	Authenticate(ctx context.Context, credential string) (UserContext, error)
}

// Clock supplies the current instant. GenericService's preprocess step
// calls it exactly once per entity written, so that "_created == _updated"
// holds for a single create even under a non-monotonic system clock.
type Clock interface {
	Now() time.Time
}

// systemClock is the default Clock, backed by time.Now.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock is the default [Clock] collaborator.
var SystemClock Clock = systemClock{}

// IdAllocator mints new backend-native ids for adapters that don't get one
// for free from the storage engine (the document backend generates its own
// object ids server-side; the relational backend's serial columns are
// allocated by the database). Provided for adapters or synthetic
// migrations that need to pre-allocate an id before an insert.
type IdAllocator interface {
	NewId() Id
}

// Logger is the structured-logging collaborator the pipeline writes
// operational events through. It deliberately mirrors log/slog's
// key-value signature so an adapter over *slog.Logger is a one-line
// wrapper, without the core package importing log/slog directly.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopLogger discards everything. Useful in tests that don't care about
// log output.
type NopLogger struct{}

func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}
