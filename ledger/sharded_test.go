package ledger_test

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payments-engine/ledger"
)

// runStream applies a stream through a fresh ledger and drains it.
func runStream(l ledger.Ledger, txs []ledger.Transaction) []ledger.AccountSnapshot {
	for _, tx := range txs {
		_ = l.Apply(tx)
	}
	return l.Drain()
}

// assertSameSnapshots compares two drained results field by field.
// decimal.Decimal values need Equal, not ==.
func assertSameSnapshots(t *testing.T, want, got []ledger.AccountSnapshot) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ClientID, got[i].ClientID)
		assert.True(t, want[i].Available.Equal(got[i].Available),
			"client %d available: want %s, got %s", want[i].ClientID, want[i].Available, got[i].Available)
		assert.True(t, want[i].Held.Equal(got[i].Held),
			"client %d held: want %s, got %s", want[i].ClientID, want[i].Held, got[i].Held)
		assert.True(t, want[i].Total.Equal(got[i].Total))
		assert.Equal(t, want[i].Locked, got[i].Locked)
	}
}

// mixedStream builds a stream touching many clients with deposits,
// withdrawals and the full dispute lifecycle.
func mixedStream(clients int) []ledger.Transaction {
	var txs []ledger.Transaction
	var next ledger.TransactionID

	for c := 1; c <= clients; c++ {
		id := ledger.ClientID(c)
		d1 := next + 1
		d2 := next + 2
		next += 5

		txs = append(txs,
			ledger.Deposit(id, d1, decimal.NewFromInt(int64(10*c))),
			ledger.Deposit(id, d2, decimal.NewFromInt(int64(c))),
			ledger.Withdrawal(id, next, decimal.NewFromInt(int64(c))),
			ledger.Dispute(id, d1),
		)
		switch c % 3 {
		case 0:
			txs = append(txs, ledger.Resolve(id, d1))
		case 1:
			txs = append(txs, ledger.Chargeback(id, d1))
		}
		// c % 3 == 2 stays under dispute.
	}
	return txs
}

// =============================================================================
// PARTITION EQUIVALENCE
// =============================================================================

func TestSharded_MatchesSequential(t *testing.T) {
	// GIVEN: The same stream
	// WHEN: Run through the sequential ledger and sharded ledgers of
	//       several shard counts
	// THEN: The final snapshots are identical

	stream := mixedStream(40)
	want := runStream(ledger.NewBasic(), stream)

	for _, shards := range []int{1, 2, 3, 8, 64} {
		t.Run(fmt.Sprintf("shards=%d", shards), func(t *testing.T) {
			got := runStream(ledger.NewSharded(shards, nil), stream)
			assertSameSnapshots(t, want, got)
		})
	}
}

func TestSharded_SingleShardEquivalentToSequential(t *testing.T) {
	stream := mixedStream(10)

	want := runStream(ledger.NewBasic(), stream)
	got := runStream(ledger.NewSharded(1, nil), stream)
	assertSameSnapshots(t, want, got)
}

func TestSharded_DefaultShardCount(t *testing.T) {
	s := ledger.NewSharded(0, nil)
	assert.GreaterOrEqual(t, s.ShardCount(), 1)
	s.Drain()
}

// =============================================================================
// PER-CLIENT ORDERING
// =============================================================================

func TestSharded_PerClientOrderPreserved(t *testing.T) {
	// A dispute must observe the deposit that precedes it in the
	// stream; any reordering within a client would break this.
	bank := ledger.NewSharded(4, nil)

	const deposits = 500
	for i := 1; i <= deposits; i++ {
		require.NoError(t, bank.Apply(ledger.Deposit(1, ledger.TransactionID(i), dec("1"))))
		require.NoError(t, bank.Apply(ledger.Dispute(1, ledger.TransactionID(i))))
		require.NoError(t, bank.Apply(ledger.Resolve(1, ledger.TransactionID(i))))
	}

	snaps := bank.Drain()
	require.Len(t, snaps, 1)
	assert.True(t, snaps[0].Available.Equal(decimal.NewFromInt(deposits)))
	assert.True(t, snaps[0].Held.IsZero())
}

// =============================================================================
// REJECTION HANDLER ACROSS WORKERS
// =============================================================================

func TestSharded_RejectionHandlerConcurrencySafe(t *testing.T) {
	rejected := &ledger.RejectionLog{}
	bank := ledger.NewSharded(8, rejected.Record)

	const clients = 100
	for c := 1; c <= clients; c++ {
		// Withdrawal from an empty account: always rejected.
		require.NoError(t, bank.Apply(ledger.Withdrawal(ledger.ClientID(c), 1, dec("1"))))
	}
	snaps := bank.Drain()

	assert.Len(t, snaps, clients)
	assert.Equal(t, clients, rejected.Len())
	for _, e := range rejected.All() {
		assert.ErrorIs(t, e, ledger.ErrInsufficientFunds)
	}
}

// =============================================================================
// DRAIN
// =============================================================================

func TestSharded_DrainMergesSorted(t *testing.T) {
	bank := ledger.NewSharded(3, nil)
	for _, c := range []ledger.ClientID{50, 3, 999, 42, 7} {
		require.NoError(t, bank.Apply(ledger.Deposit(c, 1, dec("1"))))
	}

	snaps := bank.Drain()
	require.Len(t, snaps, 5)
	for i := 1; i < len(snaps); i++ {
		assert.Less(t, snaps[i-1].ClientID, snaps[i].ClientID)
	}
}
