// Package hash provides one-way hashing behind a small interface.
//
// Passwords are stored as bcrypt or argon2id hashes; opaque tokens are stored
// as HMAC digests so the database never holds the raw value.
package hash

// Hash produces and verifies one-way hashes of secrets.
type Hash interface {
	// Hash returns the hashed representation of plaintext.
	Hash(plaintext string) ([]byte, error)

	// Verify reports whether plaintext matches the stored hash.
	Verify(hashed, plaintext string) bool
}
