/*
account.go - Per-client account state machine

PURPOSE:
  Owns the funds of a single client and the subset of its transaction
  history (deposits and withdrawals) needed to settle disputes later.
  Apply is the only mutation path.

INVARIANTS (hold after every Apply, successful or not):
  1. available >= 0 and held >= 0
  2. total == available + held, exactly (decimal arithmetic, no drift)
  3. a deposit/withdrawal id is never reused on the same account
  4. a stored deposit is under dispute iff its amount sits in held
  5. locked is sticky: once a chargeback lands, nothing mutates again

DISPUTE LIFECYCLE (stored deposits only):
  Normal -> (dispute) -> UnderDispute -> (resolve) -> Normal
  UnderDispute -> (chargeback) -> finalized, account locked

SEE ALSO:
  - errors.go: The error kinds Apply returns
  - ledger.go: Routes transactions to accounts
*/
package ledger

import "github.com/shopspring/decimal"

// storedTx is the remembered form of a deposit or withdrawal.
// The dispute family mutates these in place and is never stored itself.
type storedTx struct {
	txType       TransactionType
	amount       decimal.Decimal
	underDispute bool
}

// Account is the per-client state machine.
type Account struct {
	clientID     ClientID
	available    decimal.Decimal
	held         decimal.Decimal
	locked       bool
	transactions map[TransactionID]*storedTx
}

// NewAccount creates an unlocked account with zero balances and an
// empty transaction history.
func NewAccount(clientID ClientID) *Account {
	return &Account{
		clientID:     clientID,
		available:    decimal.Zero,
		held:         decimal.Zero,
		transactions: make(map[TransactionID]*storedTx),
	}
}

func (a *Account) ClientID() ClientID         { return a.clientID }
func (a *Account) Available() decimal.Decimal { return a.available }
func (a *Account) Held() decimal.Decimal      { return a.held }
func (a *Account) Locked() bool               { return a.locked }

// Total is derived, never stored.
func (a *Account) Total() decimal.Decimal {
	return a.available.Add(a.held)
}

// Apply runs tx through the state machine. Preconditions are checked
// in order and the first failure wins; a failed Apply leaves the
// account exactly as it was.
func (a *Account) Apply(tx Transaction) error {
	if a.locked {
		return ErrLockedAccount
	}

	if !tx.IsRef() {
		if _, exists := a.transactions[tx.TxID]; exists {
			return ErrDuplicateTransaction
		}
	}

	switch tx.Type {
	case TypeDeposit:
		a.available = a.available.Add(tx.Amount)
	case TypeWithdrawal:
		if tx.Amount.GreaterThan(a.available) {
			return ErrInsufficientFunds
		}
		a.available = a.available.Sub(tx.Amount)
	case TypeDispute:
		if err := a.dispute(tx.TxID); err != nil {
			return err
		}
	case TypeResolve:
		if err := a.resolve(tx.TxID); err != nil {
			return err
		}
	case TypeChargeback:
		if err := a.chargeback(tx.TxID); err != nil {
			return err
		}
	default:
		return ErrUnknownTransactionType
	}

	if !tx.IsRef() {
		a.transactions[tx.TxID] = &storedTx{txType: tx.Type, amount: tx.Amount}
	}
	return nil
}

// dispute moves the referenced deposit's amount from available to held.
// The amount must currently sit in available funds: if it was withdrawn
// since the deposit, the dispute cannot be honored.
func (a *Account) dispute(id TransactionID) error {
	st, ok := a.transactions[id]
	if !ok {
		return ErrReferenceNotFound
	}
	if st.txType != TypeDeposit {
		return ErrUnsupportedDisputeTarget
	}
	if st.underDispute {
		return ErrAlreadyUnderDispute
	}
	if a.available.LessThan(st.amount) {
		return ErrInsufficientFundsForDispute
	}

	st.underDispute = true
	a.available = a.available.Sub(st.amount)
	a.held = a.held.Add(st.amount)
	return nil
}

// resolve releases an active dispute, returning held funds to available.
func (a *Account) resolve(id TransactionID) error {
	st, ok := a.transactions[id]
	if !ok {
		return ErrReferenceNotFound
	}
	if st.txType != TypeDeposit {
		return ErrUnsupportedDisputeTarget
	}
	if !st.underDispute {
		return ErrNotUnderDispute
	}
	a.assertHeldCovers(id, st)

	st.underDispute = false
	a.held = a.held.Sub(st.amount)
	a.available = a.available.Add(st.amount)
	return nil
}

// chargeback finalizes an active dispute against the account holder:
// the held funds vanish and the account is locked for good.
func (a *Account) chargeback(id TransactionID) error {
	st, ok := a.transactions[id]
	if !ok {
		return ErrReferenceNotFound
	}
	if st.txType != TypeDeposit {
		return ErrUnsupportedDisputeTarget
	}
	if !st.underDispute {
		return ErrNotUnderDispute
	}
	a.assertHeldCovers(id, st)

	st.underDispute = false
	a.held = a.held.Sub(st.amount)
	a.locked = true
	return nil
}

// assertHeldCovers panics if held funds cannot cover the disputed
// amount. Invariant 4 guarantees this never fires; if it does, state
// tracking is broken and continuing would corrupt balances.
func (a *Account) assertHeldCovers(id TransactionID, st *storedTx) {
	if a.held.LessThan(st.amount) {
		panic(&InvariantViolationError{
			ClientID: a.clientID,
			TxID:     id,
			Held:     a.held,
			Amount:   st.amount,
		})
	}
}

// Snapshot materializes the account into its output projection.
func (a *Account) Snapshot() AccountSnapshot {
	return AccountSnapshot{
		ClientID:  a.clientID,
		Available: a.available,
		Held:      a.held,
		Total:     a.Total(),
		Locked:    a.locked,
	}
}
