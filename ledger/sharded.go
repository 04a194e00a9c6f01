/*
sharded.go - Concurrent ledger partitioned across worker goroutines

PURPOSE:
  Processes a transaction stream concurrently with results identical
  to the sequential ledger. The client space is partitioned with
  client_id mod shard_count; every transaction for a given client
  always lands on the same shard, so each shard owns disjoint account
  state and no cross-shard synchronization exists.

ORDERING:
  The driver is the single producer for every shard queue, and each
  queue delivers in FIFO order, so per-client transaction order is
  preserved. Cross-client order between shards is unspecified and
  irrelevant: clients are independent.

SHUTDOWN:
  Drain closes every queue. Each worker finishes its backlog, then
  hands its private ledger back. Drain blocks until all workers have
  yielded before merging snapshots. There is no cancellation path: the
  input is a finite batch, not an open-ended service.

QUEUES:
  Each shard queue is a buffered channel. The driver blocks if a queue
  fills; workers only consume, so this throttles without deadlock and
  the outcome matches an unbounded queue for any finite batch.

SEE ALSO:
  - ledger.go: The sequential ledger each shard owns privately
*/
package ledger

import "runtime"

// shardQueueDepth is the per-shard inbound queue capacity.
const shardQueueDepth = 1024

type shard struct {
	in   chan Transaction
	done chan *Basic
}

// Sharded is the concurrent Ledger. Apply must be called from a single
// goroutine (the driver); workers never call back into it.
type Sharded struct {
	shards []*shard
	count  int
}

// NewSharded creates a sharded ledger with count workers. A count < 1
// selects runtime.NumCPU(). onReject may be nil; if set it is invoked
// from worker goroutines and must be safe for concurrent use.
func NewSharded(count int, onReject RejectionHandler) *Sharded {
	if count < 1 {
		count = runtime.NumCPU()
	}

	s := &Sharded{count: count}
	for i := 0; i < count; i++ {
		sh := &shard{
			in:   make(chan Transaction, shardQueueDepth),
			done: make(chan *Basic, 1),
		}
		s.shards = append(s.shards, sh)

		go func(sh *shard) {
			bank := NewBasic()
			bank.OnReject = onReject
			for tx := range sh.in {
				// Rejections surface through the handler; the
				// stream itself never stops.
				_ = bank.Apply(tx)
			}
			sh.done <- bank
		}(sh)
	}
	return s
}

// Apply enqueues tx on the shard owning its client. The routing is a
// pure function of the client id, which is what keeps per-client state
// confined to one worker. Errors are asynchronous here: Apply always
// returns nil and rejections surface through the handler.
func (s *Sharded) Apply(tx Transaction) error {
	s.shards[int(tx.ClientID)%s.count].in <- tx
	return nil
}

// Drain signals every shard that no more work will arrive, waits for
// all workers to finish their backlogs, and merges the per-shard
// snapshots sorted by client id.
func (s *Sharded) Drain() []AccountSnapshot {
	for _, sh := range s.shards {
		close(sh.in)
	}

	var snaps []AccountSnapshot
	for _, sh := range s.shards {
		bank := <-sh.done
		snaps = append(snaps, bank.Drain()...)
	}
	s.shards = nil

	sortSnapshots(snaps)
	return snaps
}

// ShardCount returns the number of workers.
func (s *Sharded) ShardCount() int {
	return s.count
}
