/*
errors.go - Centralized error types for the stock ledger

PURPOSE:
  All error kinds in one place. Every error is recoverable by the caller:
  the engine returns it, leaves the previous ledger untouched, and the
  application shows the message to the user as-is.

ERROR CATEGORIES:
  1. Parse errors - malformed CSV (missing columns, non-numeric cells)
  2. Empty input  - CSV without data rows
  3. Validation   - a sale would drive a product's stock negative
  4. Record errors - invalid manual entry, unknown record id
  5. Store errors - persisted state that cannot be decoded

USAGE:
  var verr *inventory.ValidationError
  if errors.As(err, &verr) {
      fmt.Println(verr.Product, verr.Available, verr.Requested)
  }

SEE ALSO:
  - replay.go: produces ValidationError
  - csvcodec: produces ParseError and EmptyInputError
*/
package inventory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInsufficientStock is returned when replay would make a stock level negative.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrParse is returned for malformed CSV input.
	ErrParse = errors.New("parse error")

	// ErrEmptyInput is returned for CSV input without data rows.
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidRecord is returned when a record violates its field invariants.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrDuplicateRecord is returned when a record id already exists in the ledger.
	ErrDuplicateRecord = errors.New("duplicate record id")

	// ErrRecordNotFound is returned when deleting an unknown record.
	ErrRecordNotFound = errors.New("record not found")

	// ErrCorruptState is returned by stores when a persisted artifact cannot be decoded.
	ErrCorruptState = errors.New("corrupt persisted state")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports the first point where a product's stock would go
// negative during replay.
type ValidationError struct {
	RecordID  RecordID
	Product   string
	Date      Date
	Available decimal.Decimal // stock immediately before the sale
	Requested decimal.Decimal
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("insufficient stock for %q on %s: available %s, requested %s",
		e.Product, e.Date, e.Available, e.Requested)
}

func (e *ValidationError) Unwrap() error {
	return ErrInsufficientStock
}

// ParseError identifies the CSV row and column that could not be read.
// Row is the 1-based line number in the input; zero for header problems.
type ParseError struct {
	Row     int
	Column  string
	Value   string
	Missing []string // required header columns that were not found
	Reason  string
}

func (e *ParseError) Error() string {
	switch {
	case len(e.Missing) > 0:
		return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
	case e.Column != "":
		return fmt.Sprintf("row %d, column %q: %s (value %q)", e.Row, e.Column, e.Reason, e.Value)
	default:
		return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
	}
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// EmptyInputError is returned for a CSV that has a header but no data rows,
// or no content at all.
type EmptyInputError struct {
	HeaderOnly bool
}

func (e *EmptyInputError) Error() string {
	if e.HeaderOnly {
		return "csv contains a header but no data rows"
	}
	return "csv is empty"
}

func (e *EmptyInputError) Unwrap() error {
	return ErrEmptyInput
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrParse) ||
		errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrInvalidRecord) ||
		errors.Is(err, ErrDuplicateRecord)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}
