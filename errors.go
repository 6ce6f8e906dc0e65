package pdv

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientStock is returned when a cart operation would take more
	// than the available stock of a product.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrReconciliationConflict is returned when a cash-register operation
	// targets a day whose state forbids it: a float edit on a locked day, a
	// retirement on a day already fully retired.
	ErrReconciliationConflict = errors.New("reconciliation conflict")

	// ErrConfirmationRequired is returned by a partial cash retirement that
	// was not explicitly confirmed.
	ErrConfirmationRequired = errors.New("partial retirement requires confirmation")

	// ErrEmptyCart is returned when checking out an empty cart.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrNotFound is returned when a product or a cart line does not exist.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports a malformed input rejected at the boundary.
// The state is left unchanged.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// PersistenceError reports a failed read or write of a store file.
type PersistenceError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("could not %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
