package paystream

import (
	"errors"

	"github.com/xraph/paystream/stream"
	"github.com/xraph/paystream/treasury"
	"github.com/xraph/paystream/vesting"
)

// Stream state-machine errors, defined alongside the domain types and
// re-exported here as part of the module taxonomy.
var (
	ErrStreamInactive      = stream.ErrStreamInactive
	ErrUnauthorized        = stream.ErrUnauthorized
	ErrIndexOutOfRange     = stream.ErrIndexOutOfRange
	ErrCapacityExceeded    = stream.ErrCapacityExceeded
	ErrArithmeticOverflow  = stream.ErrAmountOverflow
	ErrArithmeticUnderflow = stream.ErrAmountUnderflow
)

// Sentinel errors for engine and store failure scenarios.
var (
	// Validation errors
	ErrInvalidDuration = errors.New("paystream: duration must be positive")
	ErrInvalidAmount   = errors.New("paystream: amount must be positive")
	ErrInvalidSchedule = errors.New("paystream: invalid vesting schedule")
	ErrInvalidReceiver = errors.New("paystream: receiver must be a valid account")

	// Transfer errors
	ErrTransferFailed = errors.New("paystream: funds transfer failed")

	// Store errors
	ErrLedgerNotFound  = errors.New("paystream: ledger not found")
	ErrLedgerExists    = errors.New("paystream: ledger already exists")
	ErrStreamNotFound  = errors.New("paystream: stream not found")
	ErrStoreClosed     = errors.New("paystream: store is closed")
	ErrMigrationFailed = errors.New("paystream: migration failed")
)

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLedgerNotFound) ||
		errors.Is(err, ErrStreamNotFound) ||
		errors.Is(err, ErrIndexOutOfRange)
}

// IsAuthorizationError returns true if the error is an authorization or
// lifecycle precondition failure.
func IsAuthorizationError(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrStreamInactive)
}

// IsValidationError returns true if the error is an input-validation
// failure at the open_stream boundary.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidDuration) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidSchedule) ||
		errors.Is(err, ErrInvalidReceiver) ||
		errors.Is(err, vesting.ErrCliffOffset) ||
		errors.Is(err, vesting.ErrCliffAmount) ||
		errors.Is(err, vesting.ErrStepCount) ||
		errors.Is(err, vesting.ErrUnknownKind)
}

// IsArithmeticError returns true if the error is a checked-arithmetic
// failure. These signal broken invariants and are always fatal to the
// operation.
func IsArithmeticError(err error) bool {
	return errors.Is(err, ErrArithmeticOverflow) ||
		errors.Is(err, ErrArithmeticUnderflow)
}

// IsTransferError returns true if the error originates in the funds
// collaborator.
func IsTransferError(err error) bool {
	return errors.Is(err, ErrTransferFailed) ||
		errors.Is(err, treasury.ErrInsufficientFunds) ||
		errors.Is(err, treasury.ErrUnknownAccount)
}
