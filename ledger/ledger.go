/*
ledger.go - Transaction routing and the sequential ledger

PURPOSE:
  The Ledger owns the client -> Account mapping. It routes each
  transaction to the right account, creating accounts lazily on first
  sight, and at the end drains every account into an output snapshot.

ERROR CONTRACT:
  Apply never aborts the stream. A rejected transaction is wrapped in
  *TransactionError (preserving the account error kind), reported to
  the optional rejection handler, and returned. Account state for that
  transaction is untouched.

SEE ALSO:
  - account.go: The state machine Apply delegates to
  - sharded.go: Concurrent variant satisfying the same interface
*/
package ledger

// Ledger applies a transaction stream to per-client accounts and
// yields the final snapshots. Basic and Sharded both conform; callers
// depend only on this interface.
type Ledger interface {
	// Apply routes one transaction to its account.
	Apply(tx Transaction) error

	// Drain finishes processing and returns the final snapshot of
	// every account, sorted by client id. The ledger is consumed:
	// Apply must not be called afterwards.
	Drain() []AccountSnapshot
}

// =============================================================================
// BASIC LEDGER - Single-threaded implementation
// =============================================================================

// Basic is the sequential Ledger. Not safe for concurrent use; the
// sharded variant gives each worker its own Basic instead of sharing.
type Basic struct {
	accounts map[ClientID]*Account

	// OnReject, if set, observes every rejected transaction.
	OnReject RejectionHandler
}

func NewBasic() *Basic {
	return &Basic{accounts: make(map[ClientID]*Account)}
}

// Apply looks up or lazily creates the account for tx's client and
// delegates to it. Account creation is observable even when the apply
// itself fails: a rejected first transaction still leaves a
// zero-balance account in the output.
func (b *Basic) Apply(tx Transaction) error {
	acct, ok := b.accounts[tx.ClientID]
	if !ok {
		acct = NewAccount(tx.ClientID)
		b.accounts[tx.ClientID] = acct
	}

	if err := acct.Apply(tx); err != nil {
		terr := &TransactionError{ClientID: tx.ClientID, TxID: tx.TxID, Err: err}
		if b.OnReject != nil {
			b.OnReject(terr)
		}
		return terr
	}
	return nil
}

// Drain consumes the ledger, returning all account snapshots sorted by
// client id.
func (b *Basic) Drain() []AccountSnapshot {
	snaps := make([]AccountSnapshot, 0, len(b.accounts))
	for _, acct := range b.accounts {
		snaps = append(snaps, acct.Snapshot())
	}
	b.accounts = nil
	sortSnapshots(snaps)
	return snaps
}

// Account returns the materialized account for client, if any.
// Read-only inspection; mutation goes through Apply.
func (b *Basic) Account(client ClientID) (*Account, bool) {
	acct, ok := b.accounts[client]
	return acct, ok
}

// Len returns the number of accounts materialized so far.
func (b *Basic) Len() int {
	return len(b.accounts)
}
