package shared

import "errors"

// Error kinds shared by the billing services. Services wrap these with
// context via fmt.Errorf so handlers can branch with errors.Is.
var (
	// ErrValidation indicates a missing or invalid required field.
	ErrValidation = errors.New("validation failed")
	// ErrOverpayment indicates a payment exceeding the balance due.
	ErrOverpayment = errors.New("payment exceeds balance due")
	// ErrInvalidAmount indicates a zero or negative payment amount.
	ErrInvalidAmount = errors.New("payment amount must be positive")
	// ErrInvalidState indicates an operation illegal for the current status.
	ErrInvalidState = errors.New("invalid status for operation")
	// ErrNotFound indicates a referenced document, term or payment is absent.
	ErrNotFound = errors.New("record not found")
	// ErrReferentialIntegrity indicates a delete blocked by dependent records.
	ErrReferentialIntegrity = errors.New("dependent records exist")
	// ErrDuplicateNumber indicates a document number collision.
	ErrDuplicateNumber = errors.New("duplicate document number")
)
