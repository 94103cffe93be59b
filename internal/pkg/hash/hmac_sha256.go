package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HMACSHA256 produces keyed, deterministic digests. Deterministic output makes
// it suitable for values that must be looked up by hash, such as refresh
// tokens.
type HMACSHA256 struct {
	key []byte
}

// NewHMACSHA256 returns an HMAC-SHA256 hasher keyed with secret.
func NewHMACSHA256(secret string) *HMACSHA256 {
	return &HMACSHA256{key: []byte(secret)}
}

// Hash returns the hex-encoded HMAC-SHA256 digest of plaintext.
func (h *HMACSHA256) Hash(plaintext string) ([]byte, error) {
	return h.sum(plaintext), nil
}

// Verify reports whether plaintext matches the stored digest in constant time.
func (h *HMACSHA256) Verify(hashed, plaintext string) bool {
	return subtle.ConstantTimeCompare([]byte(hashed), h.sum(plaintext)) == 1
}

func (h *HMACSHA256) sum(plaintext string) []byte {
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(plaintext))
	digest := mac.Sum(nil)

	out := make([]byte, hex.EncodedLen(len(digest)))
	hex.Encode(out, digest)
	return out
}
