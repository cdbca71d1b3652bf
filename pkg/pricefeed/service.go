// Package pricefeed implements an in-memory, concurrent service for
// publishing and querying the latest price of financial instruments.
// Producers stage prices into isolated batches; a batch is invisible to
// readers until it is atomically completed, at which point all of its
// prices become simultaneously visible.
package pricefeed

import (
	"errors"
	"sync"

	"github.com/sabbanivenugopal/latest-value-price/pkg/pricefeed/perr"
)

// ErrBatchTooLarge is returned by UploadPrice/UploadPrices when a
// configured WithMaxStagedPerBatch limit is exceeded.
var ErrBatchTooLarge = errors.New("batch exceeds configured max staged instruments")

// Service is the coordinator: it owns the set of known batches and the
// global latest-price table, and mediates every transition between
// them. The zero value is not usable; construct with NewService.
//
// The batch set and the latest-price table are jointly guarded by mu, a
// reader-writer lock. StartBatch, CompleteBatch, CancelBatch, and Reset
// take the exclusive (write) half; UploadPrice, GetLatestPrice(s), and
// GetAllLatestPrices take the shared (read) half, relying on batch's own
// internal thread-safety for concurrent staging (see batch.go).
type Service struct {
	cfg cfg

	mu      sync.RWMutex
	batches map[string]*batch
	latest  map[string]Record
}

// NewService constructs a ready-to-use coordinator.
func NewService(opts ...Opt) *Service {
	c := defaultCfg()
	for _, opt := range opts {
		opt(&c)
	}
	return &Service{
		cfg:     c,
		batches: make(map[string]*batch),
		latest:  make(map[string]Record),
	}
}

// StartBatch registers a new Active batch and returns its id. There is
// no restriction on the number of concurrently open batches.
func (s *Service) StartBatch() (string, error) {
	const op = "StartBatch"

	s.mu.Lock()
	defer s.mu.Unlock()

	// Collisions are practically impossible with the default 128-bit
	// generator, but the service still defends against one rather than
	// trusting the generator blindly (spec.md §9).
	for attempts := 0; attempts < 3; attempts++ {
		id, err := s.cfg.idGen()
		if err != nil {
			return "", perr.New(perr.Internal, op, err)
		}
		if _, exists := s.batches[id]; exists {
			continue
		}
		s.batches[id] = newBatch(id)
		s.cfg.logger.Log(LogLevelDebug, "batch started", "batch_id", id)
		return id, nil
	}
	return "", perr.New(perr.IllegalState, op, errors.New("batch id generator produced repeated collisions"))
}

// lookupBatch resolves id to its *batch, validating the common
// preconditions shared by UploadPrice/CompleteBatch/CancelBatch. Callers
// hold s.mu already (either half).
func (s *Service) lookupBatch(op, id string) (*batch, error) {
	if id == "" {
		return nil, perr.New(perr.InvalidArgument, op, errors.New("batch id is required"))
	}
	b, ok := s.batches[id]
	if !ok {
		return nil, perr.New(perr.IllegalState, op, &perr.BatchNotFoundError{BatchID: id})
	}
	return b, nil
}

// UploadPrice stages price into batchID under the latest-as-of-wins
// rule. Multiple producers may call this concurrently against the same
// batch or different batches.
func (s *Service) UploadPrice(batchID string, price *Record) error {
	const op = "UploadPrice"

	if price == nil {
		return perr.New(perr.InvalidArgument, op, errors.New("price is required"))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	b, err := s.lookupBatch(op, batchID)
	if err != nil {
		return err
	}

	if limit := s.cfg.maxStagedPerBatch; limit > 0 {
		if _, present := b.staged.Load(price.InstrumentID()); !present && b.count() >= limit {
			return perr.New(perr.IllegalState, op, ErrBatchTooLarge)
		}
	}

	n, err := b.stage(op, *price)
	if err != nil {
		return err
	}
	if s.cfg.maxStagedPerBatch > 0 && n > s.cfg.maxStagedPerBatch {
		return perr.New(perr.IllegalState, op, ErrBatchTooLarge)
	}
	return nil
}

// UploadPrices iterates UploadPrice in order. It is not atomic across
// the list: a mid-list failure leaves earlier prices staged. Recovery
// (cancel and restart the batch) is the caller's responsibility.
func (s *Service) UploadPrices(batchID string, prices []Record) error {
	const op = "UploadPrices"

	if prices == nil {
		return perr.New(perr.InvalidArgument, op, errors.New("price list is required"))
	}
	for i := range prices {
		if err := s.UploadPrice(batchID, &prices[i]); err != nil {
			return err
		}
	}
	return nil
}

// CompleteBatch atomically merges batchID's staged prices into the
// latest-price table under the commit rule (latest-as-of-wins, ties
// favor the existing entry), then transitions the batch to Completed.
// No reader observes a partially-applied commit.
func (s *Service) CompleteBatch(batchID string) error {
	const op = "CompleteBatch"

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.lookupBatch(op, batchID)
	if err != nil {
		return err
	}
	if err := b.markCompleted(op); err != nil {
		return err
	}

	staged := b.drain()
	for instrumentID, price := range staged {
		existing, ok := s.latest[instrumentID]
		if !ok || price.after(existing) {
			s.latest[instrumentID] = price
		}
	}

	if s.cfg.auditHashing {
		s.cfg.logger.Log(LogLevelInfo, "batch completed",
			"batch_id", batchID,
			"instruments", len(staged),
			"audit_hash", commitAuditHash(staged),
		)
	} else {
		s.cfg.logger.Log(LogLevelInfo, "batch completed", "batch_id", batchID, "instruments", len(staged))
	}
	return nil
}

// CancelBatch discards batchID's staged data and transitions it to
// Cancelled. The latest-price table is untouched; no prior data from
// this batch is ever visible to readers.
func (s *Service) CancelBatch(batchID string) error {
	const op = "CancelBatch"

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.lookupBatch(op, batchID)
	if err != nil {
		return err
	}
	if err := b.markCancelled(op); err != nil {
		return err
	}
	s.cfg.logger.Log(LogLevelDebug, "batch cancelled", "batch_id", batchID)
	return nil
}

// GetLatestPrice returns the current latest-price table entry for
// instrumentID, or ok=false if there is none. An empty instrumentID is
// not an error: it simply yields ok=false, per spec.md §4.3 (unlike
// the mutating operations, which reject an empty batch id outright).
func (s *Service) GetLatestPrice(instrumentID string) (Record, bool, error) {
	if instrumentID == "" {
		return Record{}, false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.latest[instrumentID]
	return rec, ok, nil
}

// GetLatestPrices returns a read-only snapshot mapping for the
// requested instruments. Nil/empty ids are skipped silently; absent
// instruments are omitted from the result.
func (s *Service) GetLatestPrices(instrumentIDs []string) (map[string]Record, error) {
	const op = "GetLatestPrices"

	if instrumentIDs == nil {
		return nil, perr.New(perr.InvalidArgument, op, errors.New("instrument id list is required"))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Record, len(instrumentIDs))
	for _, id := range instrumentIDs {
		if id == "" {
			continue
		}
		if rec, ok := s.latest[id]; ok {
			out[id] = rec
		}
	}
	return out, nil
}

// GetAllLatestPrices returns a read-only snapshot of the entire
// latest-price table.
func (s *Service) GetAllLatestPrices() map[string]Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Record, len(s.latest))
	for id, rec := range s.latest {
		out[id] = rec
	}
	return out
}

// Reset is a testing-only operation. It drops all batches and clears
// the latest-price table. In-flight operations either complete before
// Reset runs or fail with IllegalState against a batch that no longer
// exists after it returns.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batches = make(map[string]*batch)
	s.latest = make(map[string]Record)
	s.cfg.logger.Log(LogLevelWarn, "service reset")
}
