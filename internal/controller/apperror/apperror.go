// Package apperror defines the error taxonomy shared by the domain
// services and the HTTP layer. Every failure surfaced to a caller wraps
// one of these sentinels so clients can branch on kind, not message
// text.
package apperror

import "errors"

var (
	// ErrUnauthenticated means the request carries no usable principal.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the principal lacks ownership or admin rights
	// for the target resource.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput means the request was rejected before any
	// persistence: empty cart, missing address field, missing
	// attachment, malformed payload.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAdapterFailure means an external collaborator (checkout
	// provider, blob store) failed or timed out.
	ErrAdapterFailure = errors.New("adapter failure")

	// ErrNotFound means the operation targets a nonexistent record.
	ErrNotFound = errors.New("not found")
)

// Code returns the wire-level code for err, or "internal" when the
// error does not belong to the taxonomy.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrAdapterFailure):
		return "adapter_failure"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
