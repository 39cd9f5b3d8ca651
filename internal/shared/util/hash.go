package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashNamespace returns a filesystem-safe identifier for a storage namespace.
func HashNamespace(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// HashSource fingerprints a serialized raw CV record together with the
// template it was converted for. The hash feeds duplicate detection in the
// usage ledger; it is never used as an idempotency key.
func HashSource(serialized []byte, template string) string {
	h := sha256.New()
	h.Write(serialized)
	h.Write([]byte(template))
	return hex.EncodeToString(h.Sum(nil))
}
