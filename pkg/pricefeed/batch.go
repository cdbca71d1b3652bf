package pricefeed

import (
	"sync"
	"sync/atomic"

	"github.com/sabbanivenugopal/latest-value-price/pkg/pricefeed/perr"
)

// batchState is the lifecycle state of a batch, stored as an atomic
// int32 so stage/markCompleted/markCancelled can race freely and still
// transition exactly once, mirroring the teacher's heavy use of
// sync/atomic for single-writer-wins fields (producer.flushing,
// producer.idLoaded in producer.go).
type batchState int32

const (
	batchActive batchState = iota
	batchCompleted
	batchCancelled
)

func (s batchState) String() string {
	switch s {
	case batchActive:
		return "Active"
	case batchCompleted:
		return "Completed"
	case batchCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// stagedEntry is the unit stored per instrument in a batch's staging
// map. Storing it behind a pointer lets stage() do a single
// compare-and-swap read-modify-write, as spec.md §9 requires, without
// taking a lock.
type stagedEntry struct {
	record Record
}

// batch is the producer-private staging area for one in-flight set of
// price updates. It is internal to the service; the coordinator is the
// only mutator, and no method here takes the service-level lock — each
// batch is independently thread-safe.
type batch struct {
	id    string
	state int32 // batchState, accessed only via atomic

	// staged maps instrumentId -> *stagedEntry. sync.Map gives us the
	// lock-free concurrent access spec.md §9 asks for; the
	// latest-as-of-wins update itself is a CompareAndSwap loop against
	// individual entries below.
	staged sync.Map
}

func newBatch(id string) *batch {
	return &batch{id: id, state: int32(batchActive)}
}

func (b *batch) currentState() batchState {
	return batchState(atomic.LoadInt32(&b.state))
}

// stage applies the latest-as-of-wins rule for price against the
// batch's staging map. It fails with IllegalState if the batch is not
// Active. Returns the number of distinct instruments staged after this
// call, for callers enforcing a per-batch size cap.
func (b *batch) stage(op string, price Record) (int, error) {
	if b.currentState() != batchActive {
		return 0, perr.New(perr.IllegalState, op, &perr.BatchNotActiveError{
			BatchID: b.id,
			State:   b.currentState().String(),
		})
	}

	key := price.InstrumentID()
	for {
		existingAny, loaded := b.staged.LoadOrStore(key, &stagedEntry{record: price})
		if !loaded {
			break // first entry for this instrument, nothing to race with
		}
		existing := existingAny.(*stagedEntry)
		if !price.after(existing.record) {
			// Tie or older: incumbent wins, nothing to do.
			break
		}
		if b.staged.CompareAndSwap(key, existingAny, &stagedEntry{record: price}) {
			break
		}
		// Lost the race against a concurrent stage(); retry against
		// whatever is there now.
	}

	// State may have flipped to terminal while we were racing the map;
	// re-check so a concurrent completeBatch never silently misses or
	// half-includes this stage. If it did flip, the entry we just wrote
	// is simply orphaned along with the rest of the map (never drained
	// again), matching "no other transition is legal" / "after a
	// terminal transition the batch's staged map is never read again".
	if b.currentState() != batchActive {
		return 0, perr.New(perr.IllegalState, op, &perr.BatchNotActiveError{
			BatchID: b.id,
			State:   b.currentState().String(),
		})
	}

	return b.count(), nil
}

func (b *batch) count() int {
	n := 0
	b.staged.Range(func(_, _ any) bool { n++; return true })
	return n
}

// markCompleted transitions Active -> Completed. Fails with
// IllegalState if not currently Active (including re-invocation).
func (b *batch) markCompleted(op string) error {
	if !atomic.CompareAndSwapInt32(&b.state, int32(batchActive), int32(batchCompleted)) {
		return perr.New(perr.IllegalState, op, &perr.BatchNotActiveError{
			BatchID: b.id,
			State:   b.currentState().String(),
		})
	}
	return nil
}

// markCancelled transitions Active -> Cancelled. Fails with
// IllegalState if not currently Active.
func (b *batch) markCancelled(op string) error {
	if !atomic.CompareAndSwapInt32(&b.state, int32(batchActive), int32(batchCancelled)) {
		return perr.New(perr.IllegalState, op, &perr.BatchNotActiveError{
			BatchID: b.id,
			State:   b.currentState().String(),
		})
	}
	return nil
}

// drain snapshots the staged map for commit. Callers must only call
// this once the batch has already transitioned to Completed under the
// service's exclusive lock, so no concurrent stage() can still be
// in flight.
func (b *batch) drain() map[string]Record {
	out := make(map[string]Record)
	b.staged.Range(func(k, v any) bool {
		out[k.(string)] = v.(*stagedEntry).record
		return true
	})
	return out
}
