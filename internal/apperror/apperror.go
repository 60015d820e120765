// Package apperror defines the failure taxonomy shared by every service.
// Handlers map these to HTTP statuses; services wrap them with context via
// fmt.Errorf("...: %w", ...) and callers match with errors.Is.
package apperror

import "errors"

var (
	// ErrInvalidArgument marks a missing or malformed required field.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound covers both an absent entity and one owned by another
	// user. The two are merged on purpose so responses never leak whether
	// somebody else's entity exists.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState marks a lifecycle transition not permitted from the
	// entity's current state.
	ErrInvalidState = errors.New("invalid state")

	// ErrStorageUnavailable propagates a persistent store failure. The rate
	// limiter treats it as fail-open; everything else is a hard failure.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
