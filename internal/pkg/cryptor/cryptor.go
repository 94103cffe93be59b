// Package cryptor encrypts small secrets at rest with AES-256-GCM.
//
// Ciphertexts are bound to a Scope (user + purpose) through GCM additional
// authenticated data, so a value copied between rows or columns fails to
// decrypt.
package cryptor

// Encryptor encrypts and decrypts scope-bound values.
type Encryptor interface {
	// Encrypt returns ciphertext for plaintext bound to scope.
	Encrypt(plaintext []byte, scope Scope) ([]byte, error)
	// Decrypt returns plaintext; the scope must match the one used to encrypt.
	Decrypt(ciphertext []byte, scope Scope) ([]byte, error)
}

// KeyProvider supplies raw AES keys. AES-256-GCM requires 32 bytes.
// Implementations may return per-tenant or per-environment keys.
type KeyProvider interface {
	Key(scope Scope) ([]byte, error)
}

// Scope identifies what a ciphertext belongs to. It is authenticated, not
// encrypted: changing either field makes decryption fail.
type Scope struct {
	UserID  int64
	Purpose string
}
