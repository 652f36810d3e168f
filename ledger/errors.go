package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrBookingNotFound is returned when no booking exists for the given id.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrInvalidTransition is returned when an event is not legal in the
	// booking's current state.
	ErrInvalidTransition = errors.New("invalid booking transition")

	// ErrAlreadyCancelled is returned when a cancellation is requested for a
	// booking that is already cancelled.
	ErrAlreadyCancelled = errors.New("booking already cancelled")

	// ErrTripAlreadyOccurred is returned when a cancellation is requested
	// after the trip's start time.
	ErrTripAlreadyOccurred = errors.New("trip already occurred")

	// ErrTerminalState is returned when an event other than its idempotent
	// duplicate reaches a completed or cancelled booking.
	ErrTerminalState = errors.New("booking is in a terminal state")

	// ErrInvalidCancellation is returned by the refund policy for a negative
	// days-until-trip input.
	ErrInvalidCancellation = errors.New("invalid cancellation")

	// ErrInvalidSplit is returned by SplitPrice for out-of-range inputs.
	ErrInvalidSplit = errors.New("invalid price split")
)

// PersistenceError wraps any storage failure surfaced by the orchestrator.
// The transaction it came from has been rolled back; no partial writes are
// visible.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("ledger persistence failure: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func isDomainError(err error) bool {
	for _, sentinel := range []error{
		ErrBookingNotFound,
		ErrInvalidTransition,
		ErrAlreadyCancelled,
		ErrTripAlreadyOccurred,
		ErrTerminalState,
		ErrInvalidCancellation,
		ErrInvalidSplit,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
