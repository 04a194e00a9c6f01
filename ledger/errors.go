/*
errors.go - Centralized error types for the payments engine

PURPOSE:
  All error kinds in one place. Every per-transaction failure is local
  to that transaction: callers log or count it and keep processing the
  stream. The one exception is InvariantViolationError, which signals a
  bug in the engine itself and is raised as a panic.

ERROR CATEGORIES:
  1. Validation errors - malformed input, rejected before the ledger
  2. Account errors    - business rules of the account state machine
  3. Invariant errors  - internal bookkeeping broke; fatal

USAGE:
  The ledger wraps account errors in *TransactionError so routing
  layers preserve the original kind:

    if errors.Is(err, ledger.ErrInsufficientFunds) { ... }

SEE ALSO:
  - account.go: Where account errors originate
  - ledger.go: Wrapping at the routing boundary
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingAmount is returned when a deposit or withdrawal record
	// arrives without an amount.
	ErrMissingAmount = errors.New("missing amount")

	// ErrUnknownTransactionType is returned for unrecognized type strings.
	ErrUnknownTransactionType = errors.New("unknown transaction type")

	// ErrLockedAccount is returned for any transaction on a frozen
	// account. Locking is permanent.
	ErrLockedAccount = errors.New("account is locked")

	// ErrDuplicateTransaction is returned when a deposit or withdrawal
	// reuses a transaction id already applied to the same account.
	ErrDuplicateTransaction = errors.New("transaction id already applied")

	// ErrInsufficientFunds is returned when a withdrawal exceeds
	// available funds.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientFundsForDispute is returned when the disputed
	// amount no longer sits in available funds (e.g. it was withdrawn
	// after the deposit).
	ErrInsufficientFundsForDispute = errors.New("insufficient available funds for dispute")

	// ErrReferenceNotFound is returned when a dispute, resolve or
	// chargeback targets an unknown transaction id.
	ErrReferenceNotFound = errors.New("referenced transaction not found")

	// ErrUnsupportedDisputeTarget is returned when the target exists
	// but is not a deposit. Only deposits are disputable.
	ErrUnsupportedDisputeTarget = errors.New("only deposits can be disputed")

	// ErrAlreadyUnderDispute is returned when disputing a deposit that
	// is already held.
	ErrAlreadyUnderDispute = errors.New("transaction already under dispute")

	// ErrNotUnderDispute is returned when resolving or charging back a
	// deposit that has no active dispute.
	ErrNotUnderDispute = errors.New("transaction is not under dispute")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// TransactionError identifies which transaction was rejected and why.
// The routing layers wrap every account error in one of these instead
// of collapsing to an opaque failure, so the original kind survives
// through errors.Is/errors.As.
type TransactionError struct {
	ClientID ClientID
	TxID     TransactionID
	Err      error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("client %d tx %d: %v", e.ClientID, e.TxID, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// InvariantViolationError reports that held funds cannot cover a
// resolve or chargeback that passed its precondition checks. This can
// only happen if the engine's own bookkeeping is broken, so it is
// raised as a panic value, never returned.
type InvariantViolationError struct {
	ClientID ClientID
	TxID     TransactionID
	Held     decimal.Decimal
	Amount   decimal.Decimal
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation: client %d tx %d: held %s < disputed amount %s",
		e.ClientID, e.TxID, e.Held, e.Amount)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidationError reports whether the record was malformed and never
// reached an account.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingAmount) ||
		errors.Is(err, ErrUnknownTransactionType)
}

// IsRejection reports whether the error is an expected per-transaction
// rejection that leaves the stream processable.
func IsRejection(err error) bool {
	return errors.Is(err, ErrLockedAccount) ||
		errors.Is(err, ErrDuplicateTransaction) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrInsufficientFundsForDispute) ||
		errors.Is(err, ErrReferenceNotFound) ||
		errors.Is(err, ErrUnsupportedDisputeTarget) ||
		errors.Is(err, ErrAlreadyUnderDispute) ||
		errors.Is(err, ErrNotUnderDispute)
}
