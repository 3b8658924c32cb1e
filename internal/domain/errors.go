// Package domain defines the error taxonomy shared by repositories,
// services and handlers. Every core operation fails with exactly one of
// these kinds; the HTTP layer maps them to status codes.
package domain

import "errors"

// ErrNotFound is returned when an id or invitation code does not resolve.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the actor lacks the required role or
// ownership for the operation.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidState is returned when the operation is illegal for the
// current lifecycle or payment status.
var ErrInvalidState = errors.New("invalid state")

// ErrCapacityExceeded is returned when a join would exceed a tontine's
// fixed member capacity.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// ErrInvalidOrder is returned when a reorder payload is not a
// permutation of the current rotation order.
var ErrInvalidOrder = errors.New("invalid rotation order")

// ErrConflict is returned when a concurrent-mutation guard trips, e.g.
// validating a payment that is no longer pending.
var ErrConflict = errors.New("conflict")
