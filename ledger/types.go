/*
Package ledger implements the payments engine core.

PURPOSE:
  This package contains the transaction model, the per-client account
  state machine, and the two ledger implementations (sequential and
  sharded) that route transactions to accounts. It performs no I/O:
  input decoding and output serialization live in adapter packages.

KEY CONCEPTS IN THIS FILE (types.go):
  - ClientID / TransactionID: Type-safe identifiers
  - Transaction: A validated, normalized payment event
  - Record: The untyped input row a decoding layer hands us
  - FromRecord: Validation boundary between raw input and the engine

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Type Safety: Strong typing for ids prevents mixing client/tx ids
  3. Locality: A rejected transaction never affects the rest of the stream

USAGE:
  tx, err := ledger.FromRecord(ledger.Record{
      Type:   "deposit",
      Client: 1,
      Tx:     1,
      Amount: &amount,
  })

SEE ALSO:
  - account.go: Account state machine applying transactions
  - ledger.go: Routing transactions to accounts
  - sharded.go: Concurrent variant
*/
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// ClientID identifies an account holder.
type ClientID uint16

// TransactionID identifies a transaction. Uniqueness is enforced per
// account, not globally: two clients may reuse the same id.
type TransactionID uint32

// =============================================================================
// TRANSACTION - Validated payment event
// =============================================================================

type TransactionType string

const (
	TypeDeposit    TransactionType = "deposit"    // Increases available funds
	TypeWithdrawal TransactionType = "withdrawal" // Decreases available funds if sufficient
	TypeDispute    TransactionType = "dispute"    // Holds a prior deposit pending investigation
	TypeResolve    TransactionType = "resolve"    // Releases a dispute's hold
	TypeChargeback TransactionType = "chargeback" // Finalizes a dispute, locks the account
)

// Transaction is a validated, normalized payment event.
// Amount is meaningful only for deposits and withdrawals; the dispute
// family references a prior transaction by id and carries no amount.
type Transaction struct {
	Type     TransactionType
	ClientID ClientID
	TxID     TransactionID
	Amount   decimal.Decimal
}

// IsRef reports whether the transaction references a prior transaction
// instead of creating a new one. Referencing transactions are never
// stored in the account history and are exempt from duplicate-id checks.
func (t Transaction) IsRef() bool {
	switch t.Type {
	case TypeDispute, TypeResolve, TypeChargeback:
		return true
	}
	return false
}

// Constructors used by adapters and tests.

func Deposit(client ClientID, tx TransactionID, amount decimal.Decimal) Transaction {
	return Transaction{Type: TypeDeposit, ClientID: client, TxID: tx, Amount: amount}
}

func Withdrawal(client ClientID, tx TransactionID, amount decimal.Decimal) Transaction {
	return Transaction{Type: TypeWithdrawal, ClientID: client, TxID: tx, Amount: amount}
}

func Dispute(client ClientID, tx TransactionID) Transaction {
	return Transaction{Type: TypeDispute, ClientID: client, TxID: tx}
}

func Resolve(client ClientID, tx TransactionID) Transaction {
	return Transaction{Type: TypeResolve, ClientID: client, TxID: tx}
}

func Chargeback(client ClientID, tx TransactionID) Transaction {
	return Transaction{Type: TypeChargeback, ClientID: client, TxID: tx}
}

// MustParseDecimal parses s, returning zero on malformed input.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// RECORD - Untyped input row
// =============================================================================

// Record is a raw input row as produced by a decoding layer (CSV, tests).
// Amount is nil when the input column is empty.
type Record struct {
	Type   string
	Client ClientID
	Tx     TransactionID
	Amount *decimal.Decimal
}

// FromRecord converts an untyped record into a well-formed Transaction.
//
// Rules:
//   - deposit/withdrawal require a present amount (ErrMissingAmount).
//     The amount's sign and magnitude are not otherwise restricted here.
//   - dispute/resolve/chargeback carry no amount; one present on the
//     input is ignored.
//   - anything else fails with ErrUnknownTransactionType.
//
// This step is pure: it has no access to account state.
func FromRecord(rec Record) (Transaction, error) {
	switch TransactionType(rec.Type) {
	case TypeDeposit, TypeWithdrawal:
		if rec.Amount == nil {
			return Transaction{}, fmt.Errorf("%s tx %d: %w", rec.Type, rec.Tx, ErrMissingAmount)
		}
		return Transaction{
			Type:     TransactionType(rec.Type),
			ClientID: rec.Client,
			TxID:     rec.Tx,
			Amount:   *rec.Amount,
		}, nil
	case TypeDispute, TypeResolve, TypeChargeback:
		return Transaction{
			Type:     TransactionType(rec.Type),
			ClientID: rec.Client,
			TxID:     rec.Tx,
		}, nil
	default:
		return Transaction{}, fmt.Errorf("%w: %q", ErrUnknownTransactionType, rec.Type)
	}
}
