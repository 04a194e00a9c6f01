package ledger

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ACCOUNT SNAPSHOT - Output projection of a finished account
// =============================================================================

// AccountSnapshot is the final state of one account once no further
// transactions will arrive. Amounts keep full precision here; any
// truncation happens at the serialization boundary.
type AccountSnapshot struct {
	ClientID  ClientID        `json:"client"`
	Available decimal.Decimal `json:"available"`
	Held      decimal.Decimal `json:"held"`
	Total     decimal.Decimal `json:"total"`
	Locked    bool            `json:"locked"`
}

// sortSnapshots orders snapshots by client id so output is
// deterministic across runs and shard counts.
func sortSnapshots(snaps []AccountSnapshot) {
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].ClientID < snaps[j].ClientID
	})
}

// =============================================================================
// REJECTION SIDE CHANNEL
// =============================================================================

// RejectionHandler observes every rejected transaction without touching
// the success-path output. With the sharded ledger it is invoked from
// worker goroutines and must be safe for concurrent use.
type RejectionHandler func(*TransactionError)

// RejectionLog is a concurrency-safe RejectionHandler that collects
// rejections for later inspection (report server, tests).
type RejectionLog struct {
	mu       sync.Mutex
	rejected []*TransactionError
}

// Record appends a rejection. Satisfies RejectionHandler via
// log.Record.
func (l *RejectionLog) Record(e *TransactionError) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rejected = append(l.rejected, e)
}

// All returns a copy of the collected rejections.
func (l *RejectionLog) All() []*TransactionError {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*TransactionError, len(l.rejected))
	copy(out, l.rejected)
	return out
}

// Len returns the number of collected rejections.
func (l *RejectionLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rejected)
}
