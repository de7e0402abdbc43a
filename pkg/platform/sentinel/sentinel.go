// Package sentinel holds the infrastructure errors stores and lock backends
// return. Services translate them into domain errors with errors.Is; input
// validation uses pkg/domain-errors instead.
package sentinel

import "errors"

var (
	// ErrNotFound means the row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a uniqueness constraint rejected the write, such as a
	// taken nickname.
	ErrConflict = errors.New("conflict")
	// ErrInvalidState means a status-guarded write found the activity elsewhere.
	ErrInvalidState = errors.New("invalid state")
	// ErrUnavailable means a lock backend or broker could not be reached.
	ErrUnavailable = errors.New("unavailable")
)
