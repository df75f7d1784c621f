// Package internalerr defines the error taxonomy shared across the service,
// repository, and transport layers. Handlers map these sentinels to HTTP
// status codes with errors.Is.
package internalerr

import "errors"

var (
	// ErrNotFound indicates a requested entity identifier is absent from the
	// graph store. User-correctable.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable indicates the graph store could not be reached or a
	// query failed mid-flight. Aborts the whole operation; never retried and
	// never surfaced as a partial result.
	ErrStoreUnavailable = errors.New("graph store unavailable")

	// ErrInvalidInput indicates a request that is rejected before any store
	// call is made.
	ErrInvalidInput = errors.New("invalid input")
)
