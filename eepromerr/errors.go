// Package eepromerr defines the error kinds the engine distinguishes per
// spec.md §7: FlashIoError (propagated as a wrapped error), PageCrcMismatch
// (handled internally by block transfer), and ProgrammingError (precondition
// violations, which spec.md says "MAY terminate the process" and are never
// returned through the public API). The teacher has no error-wrapping
// library of its own -- its only failure path is panic, inside the
// bubbletea debugger -- so contextual wrapping here is enriched with
// github.com/pkg/errors, the error package used by the storage engine in
// zhukovaskychina-xmysql-server.
package eepromerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel ProgrammingError conditions, checked with errors.Is.
var (
	ErrNotInitialized     = errors.New("eeprom: engine not initialized")
	ErrAlreadyInitialized = errors.New("eeprom: engine already initialized")
	ErrInvalidLength      = errors.New("eeprom: length must be > 0")
	ErrAddressOutOfRange  = errors.New("eeprom: v_addr+length exceeds MaxVirtualAddr")
)

// ProgrammingError represents a violated precondition: operating on the
// engine before Init, double Init, a zero-length request, or an
// out-of-range virtual address. Per spec.md §7 these are assertion-style
// and are raised via panic rather than returned, matching the teacher's own
// use of panic for invariant violations in the mask package.
type ProgrammingError struct {
	Err error
}

func (e ProgrammingError) Error() string { return e.Err.Error() }

func (e ProgrammingError) Unwrap() error { return e.Err }

// Raise panics with a ProgrammingError wrapping err.
func Raise(err error) {
	panic(ProgrammingError{Err: err})
}

// WrapFlashIO wraps an underlying flash I/O failure with operation context,
// matching spec.md §7's FlashIoError kind.
func WrapFlashIO(err error, op string, args ...any) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, fmt.Sprintf(op, args...))
}
