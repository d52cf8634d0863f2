package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("access forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrDuplicate    = errors.New("already exists")

	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStatusConflict    = fmt.Errorf("%w: parcel status changed concurrently", ErrInvalidTransition)

	ErrParcelNotFound      = fmt.Errorf("parcel %w", ErrNotFound)
	ErrDestinationNotFound = fmt.Errorf("destination %w", ErrNotFound)
	ErrStaffNotFound       = fmt.Errorf("staff %w", ErrNotFound)
	ErrWalletNotFound      = fmt.Errorf("wallet %w", ErrNotFound)
	ErrLedgerEntryNotFound = fmt.Errorf("ledger entry %w", ErrNotFound)

	ErrDestinationInUse = errors.New("destination is referenced by parcels")
)

// ValidationError carries one message per offending input field.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records msg against field, keeping the first message per field.
func (e *ValidationError) Add(field, msg string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Empty reports whether no field has been flagged.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// OrNil returns e when it holds at least one field error, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// DispatchFailure reports a notification that the gateway did not accept.
// It is a warning on an otherwise successful operation.
type DispatchFailure struct {
	Provider string
	Err      error
}

func (e *DispatchFailure) Error() string {
	return fmt.Sprintf("sms dispatch via %s failed: %v", e.Provider, e.Err)
}

func (e *DispatchFailure) Unwrap() error { return e.Err }

// StorageFailure wraps a document store error that aborted an operation.
type StorageFailure struct {
	Op  string
	Err error
}

func (e *StorageFailure) Error() string {
	return fmt.Sprintf("%s: storage failure: %v", e.Op, e.Err)
}

func (e *StorageFailure) Unwrap() error { return e.Err }

// Storage wraps err as a StorageFailure unless it already carries a domain meaning
// (not found, duplicate, conflict) that callers are expected to branch on.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicate) || errors.Is(err, ErrInvalidTransition) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return &StorageFailure{Op: op, Err: err}
}
