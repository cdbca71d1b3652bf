package pricefeed

import (
	"errors"
	"time"

	"github.com/sabbanivenugopal/latest-value-price/pkg/pricefeed/perr"
)

// Payload is an opaque mapping the core neither inspects nor constrains.
// Equality for tests is value-wise on the exposed fields of Record only;
// Payload contents are never compared by the coordinator.
type Payload map[string]any

// Record is an immutable observation of one instrument's price as of a
// point in time. Fields are set at construction and never mutated.
type Record struct {
	instrumentID string
	asOf         time.Time
	payload      Payload
}

// NewRecord constructs a Record. It fails with perr.InvalidArgument if
// instrumentID is empty or asOf is the zero time.
func NewRecord(instrumentID string, asOf time.Time, payload Payload) (Record, error) {
	if instrumentID == "" {
		return Record{}, perr.New(perr.InvalidArgument, "NewRecord", errors.New("instrument id is required"))
	}
	if asOf.IsZero() {
		return Record{}, perr.New(perr.InvalidArgument, "NewRecord", errors.New("as-of timestamp is required"))
	}
	return Record{instrumentID: instrumentID, asOf: asOf, payload: payload}, nil
}

// InstrumentID returns the instrument this record is about.
func (r Record) InstrumentID() string { return r.instrumentID }

// AsOf returns the logical effective time of the observation.
func (r Record) AsOf() time.Time { return r.asOf }

// Payload returns the opaque payload. Callers must treat the returned
// map as read-only; the core never mutates it after construction but
// does not defensively copy it either.
func (r Record) Payload() Payload { return r.payload }

// after reports whether r is strictly more recent than other, the
// comparison the latest-as-of-wins rule is built on.
func (r Record) after(other Record) bool {
	return r.asOf.After(other.asOf)
}
