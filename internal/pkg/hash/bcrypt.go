package hash

import "golang.org/x/crypto/bcrypt"

// Bcrypt hashes secrets with bcrypt. An optional pepper from configuration is
// appended to the plaintext before hashing, so database dumps alone are not
// enough to attack the hashes.
type Bcrypt struct {
	cost   int
	pepper string
}

// NewBcrypt returns a bcrypt hasher. cost follows bcrypt.DefaultCost semantics.
func NewBcrypt(cost int, pepper string) *Bcrypt {
	return &Bcrypt{cost: cost, pepper: pepper}
}

// Hash hashes plaintext with bcrypt.
func (b *Bcrypt) Hash(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plaintext+b.pepper), b.cost)
}

// Verify reports whether plaintext matches the stored hash.
func (b *Bcrypt) Verify(hashed, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext+b.pepper)) == nil
}
