/*
errors.go - Centralized error types for the commission engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Store implementations wrap these errors with additional context.

ERROR CATEGORIES:
  1. Lookup errors - Sale, entry or product does not exist for the owner
  2. Transition errors - Lifecycle change not allowed from the current status
  3. Store errors - Persistence failures (wrapped, never sentinel)

  Schedule generation and rule resolution never fail; degenerate inputs
  yield empty schedules instead.

USAGE:
  if errors.Is(err, commission.ErrSaleNotFound) {
      // 404
  }

SEE ALSO:
  - lifecycle.go: Returns transition errors
  - store.go: Lookup contract
*/
package commission

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrSaleNotFound is returned when the sale does not exist for the owner.
	ErrSaleNotFound = errors.New("sale not found")

	// ErrEntryNotFound is returned when the sale has no entry with the given ID.
	ErrEntryNotFound = errors.New("commission entry not found")

	// ErrProductNotFound is returned when a catalog product cannot be resolved.
	ErrProductNotFound = errors.New("product not found")

	// ErrInvalidTransition is returned when an entry cannot move to the
	// requested status.
	ErrInvalidTransition = errors.New("invalid entry status transition")

	// ErrEntryReceived is returned when blocking a commission that was
	// already received.
	ErrEntryReceived = errors.New("commission entry already received")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// TransitionError describes a rejected lifecycle change.
type TransitionError struct {
	EntryID EntryID
	From    EntryStatus
	Action  string
	Reason  error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s entry %s in status %s: %v", e.Action, e.EntryID, e.From, e.Reason)
}

func (e *TransitionError) Unwrap() []error {
	return []error{ErrInvalidTransition, e.Reason}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSaleNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrProductNotFound)
}

// IsClientError returns true if the error is due to a request the current
// state does not allow.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}
