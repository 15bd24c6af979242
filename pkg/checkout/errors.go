package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart rejects a submission whose cart holds no items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrUnsupportedPaymentMethod rejects anything but bank transfer.
	ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")
	// ErrInvalidTransition reports a call that is not legal in the
	// current state.
	ErrInvalidTransition = errors.New("invalid checkout transition")
)

// ValidationError names the shipping field that is missing or malformed.
// The checkout stays in its current state.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// PersistenceError wraps a storage failure. The transaction has been
// rolled back in full; no partial order is observable.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to place order: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
