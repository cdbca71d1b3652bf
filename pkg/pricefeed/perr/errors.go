// Package perr defines the stable error taxonomy used throughout pricefeed.
//
// The shape mirrors the teacher's kerr package: a small set of sentinel
// kinds plus structured detail types for the cases callers need more than
// a string to react to.
package perr

import "fmt"

// Kind is one of the four stable error categories every pricefeed
// operation can fail with.
type Kind int8

const (
	// InvalidArgument means a required parameter was nil, an id string
	// was empty where non-empty is required, or a list was nil. Caller
	// bug.
	InvalidArgument Kind = iota + 1
	// IllegalState means the operation targeted a batch that does not
	// exist, is not in the required state, or the service itself is in
	// an incompatible state (e.g. id collision). Caller-observable
	// state bug.
	IllegalState
	// NotFound is used only where explicitly noted; lookups return
	// absent entries rather than raising this.
	NotFound
	// Internal means an invariant violation was detected at runtime.
	// Should be unreachable; fatal for the operation.
	Internal
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case IllegalState:
		return "IllegalState"
	case NotFound:
		return "NotFound"
	case Internal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by every pricefeed
// operation that fails. It carries the offending Kind, the operation
// name, and an optional wrapped cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pricefeed: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("pricefeed: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, perr.ErrIllegalState)-style comparisons: any
// two *Error values with the same Kind are considered equal regardless
// of Op/Err, so callers can test the category without string matching.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

// New builds a *Error for the given kind, operation, and optional cause.
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Sentinel kind markers for use with errors.Is.
var (
	ErrInvalidArgument = &Error{Kind: InvalidArgument}
	ErrIllegalState    = &Error{Kind: IllegalState}
	ErrNotFound        = &Error{Kind: NotFound}
	ErrInternal        = &Error{Kind: Internal}
)

// IsKind reports whether the first *Error found in err's Unwrap chain
// (err itself included) has the given kind. A *Error nested under
// another *Error is not examined.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// BatchNotActiveError provides structured detail for a rejection caused
// by targeting a batch that is not Active, mirroring the teacher's
// StaleEpochError/SequenceGapError pattern of carrying the actual state
// instead of making the caller parse a string.
type BatchNotActiveError struct {
	BatchID string
	State   string
}

func (e *BatchNotActiveError) Error() string {
	return fmt.Sprintf("batch %s is not active (state=%s)", e.BatchID, e.State)
}

// BatchNotFoundError reports a reference to an unknown batch id.
type BatchNotFoundError struct {
	BatchID string
}

func (e *BatchNotFoundError) Error() string {
	return fmt.Sprintf("batch %s does not exist", e.BatchID)
}
