package cryptor

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Ciphertext layout (binary):
//
//	[0..1]   uint16 version (currently 1)
//	[2..13]  12-byte nonce
//	[14..]   gcm.Seal output (ciphertext + tag)
const aesGCMVersion uint16 = 1

const (
	nonceSize = 12
	keyLen    = 32
)

var (
	// ErrNotConfigured indicates a missing key provider.
	ErrNotConfigured = errors.New("cryptor: not configured")
	// ErrEmptyPlaintext indicates an empty plaintext input.
	ErrEmptyPlaintext = errors.New("cryptor: plaintext is empty")
	// ErrInvalidKeyLength indicates the provided key is not 32 bytes.
	ErrInvalidKeyLength = errors.New("cryptor: invalid key length")
	// ErrCiphertextTooShort indicates a truncated ciphertext.
	ErrCiphertextTooShort = errors.New("cryptor: ciphertext too short")
	// ErrUnsupportedVersion indicates an unknown ciphertext version.
	ErrUnsupportedVersion = errors.New("cryptor: unsupported ciphertext version")
	// ErrDecryptFailed indicates decryption failure. It deliberately does not
	// distinguish wrong key, wrong scope, or tampering.
	ErrDecryptFailed = errors.New("cryptor: decrypt failed")
	// ErrMissingKey indicates the static key provider has no key material.
	ErrMissingKey = errors.New("cryptor: missing key")
)

// AESGCM implements Encryptor with AES-256-GCM.
type AESGCM struct {
	keys KeyProvider
}

// NewAESGCM constructs an AES-GCM encryptor.
func NewAESGCM(keys KeyProvider) *AESGCM {
	return &AESGCM{keys: keys}
}

// Encrypt seals plaintext with a fresh nonce, binding it to scope via AAD.
func (e *AESGCM) Encrypt(plaintext []byte, scope Scope) ([]byte, error) {
	if e == nil || e.keys == nil {
		return nil, ErrNotConfigured
	}
	if len(plaintext) == 0 {
		return nil, ErrEmptyPlaintext
	}

	gcm, err := e.aead(scope)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("cryptor: nonce generation: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, plaintext, scopeAAD(scope))

	out := make([]byte, 2+nonceSize+len(sealed))
	binary.BigEndian.PutUint16(out[0:2], aesGCMVersion)
	copy(out[2:2+nonceSize], nonce)
	copy(out[2+nonceSize:], sealed)
	return out, nil
}

// Decrypt opens a ciphertext produced by Encrypt with the same scope.
func (e *AESGCM) Decrypt(ciphertext []byte, scope Scope) ([]byte, error) {
	if e == nil || e.keys == nil {
		return nil, ErrNotConfigured
	}
	if len(ciphertext) < 2+nonceSize+1 {
		return nil, ErrCiphertextTooShort
	}
	if v := binary.BigEndian.Uint16(ciphertext[0:2]); v != aesGCMVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	gcm, err := e.aead(scope)
	if err != nil {
		return nil, err
	}

	nonce := ciphertext[2 : 2+nonceSize]
	sealed := ciphertext[2+nonceSize:]

	plain, err := gcm.Open(nil, nonce, sealed, scopeAAD(scope))
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plain, nil
}

func (e *AESGCM) aead(scope Scope) (cipher.AEAD, error) {
	key, err := e.keys.Key(scope)
	if err != nil {
		return nil, fmt.Errorf("cryptor: key provider: %w", err)
	}
	if len(key) != keyLen {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrInvalidKeyLength, len(key), keyLen)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cryptor: aes init: %w", err)
	}
	return cipher.NewGCM(block)
}

// scopeAAD hashes a canonical scope encoding. Hashing keeps the AAD a fixed
// length and avoids separator ambiguity between fields.
func scopeAAD(s Scope) []byte {
	sum := sha256.Sum256(fmt.Appendf(nil, "uid=%d\npurpose=%s\n", s.UserID, s.Purpose))
	return sum[:]
}

// StaticKeyProvider returns one key for every scope. Fine for development; a
// production deployment should use a KMS-backed provider with rotation.
type StaticKeyProvider struct {
	KeyBytes []byte
}

// Key returns a copy of the static key.
func (p StaticKeyProvider) Key(Scope) ([]byte, error) {
	if len(p.KeyBytes) == 0 {
		return nil, ErrMissingKey
	}
	k := make([]byte, len(p.KeyBytes))
	copy(k, p.KeyBytes)
	return k, nil
}
