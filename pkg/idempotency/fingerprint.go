package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Fingerprint returns a deterministic SHA-256 hex digest of v. Requests
// are decoded into typed structs before fingerprinting, so two bodies
// that differ only in field order or whitespace hash identically.
func Fingerprint(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		// Request DTOs contain only marshalable fields; reaching this
		// means a programming error, not bad input.
		panic("idempotency: unmarshalable request: " + err.Error())
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
