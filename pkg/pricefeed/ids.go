package pricefeed

import (
	"github.com/hashicorp/go-uuid"
)

// IDGenerator produces a fresh, practically-unique identifier. The
// coordinator still defends against collision (see Service.StartBatch)
// rather than trusting the generator blindly.
type IDGenerator func() (string, error)

// defaultIDGenerator renders a random 128-bit value as text, per
// spec.md §9 ("a random 128-bit identifier rendered as text is
// sufficient").
func defaultIDGenerator() (string, error) {
	return uuid.GenerateUUID()
}
