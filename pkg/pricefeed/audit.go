package pricefeed

import (
	"encoding/hex"
	"sort"

	"golang.org/x/crypto/blake2b"
)

// commitAuditHash returns a short content-addressed digest of what a
// completeBatch call is about to merge, so the coordinator can log "this
// is what batch X committed" without retaining or persisting the
// payloads themselves. Hashing is keyed only by instrumentId, asOf, and
// the sorted set of payload keys — never payload values, which stay
// opaque per spec.md §4.1.
func commitAuditHash(staged map[string]Record) string {
	if len(staged) == 0 {
		return ""
	}

	instruments := make([]string, 0, len(staged))
	for id := range staged {
		instruments = append(instruments, id)
	}
	sort.Strings(instruments)

	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only errors on an invalid key length, and we
		// pass none; unreachable in practice.
		return ""
	}
	for _, id := range instruments {
		rec := staged[id]
		h.Write([]byte(id))
		h.Write([]byte{0})
		h.Write([]byte(rec.AsOf().UTC().Format("2006-01-02T15:04:05.000000000Z")))
		h.Write([]byte{0})
		keys := make([]string, 0, len(rec.Payload()))
		for k := range rec.Payload() {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			h.Write([]byte(k))
			h.Write([]byte{0})
		}
		h.Write([]byte{0xff})
	}
	return hex.EncodeToString(h.Sum(nil))
}
