package cryptor

import (
	"bytes"
	"errors"
	"testing"
)

func testEncryptor(t *testing.T) *AESGCM {
	t.Helper()
	key := bytes.Repeat([]byte{0x42}, 32)
	return NewAESGCM(StaticKeyProvider{KeyBytes: key})
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	e := testEncryptor(t)
	scope := Scope{UserID: 7, Purpose: "auth"}
	plaintext := []byte("JBSWY3DPEHPK3PXP")

	ct, err := e.Encrypt(plaintext, scope)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if bytes.Contains(ct, plaintext) {
		t.Fatal("ciphertext contains plaintext")
	}

	got, err := e.Decrypt(ct, scope)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("Decrypt() = %q, want %q", got, plaintext)
	}
}

func TestDecryptScopeMismatch(t *testing.T) {
	e := testEncryptor(t)
	plaintext := []byte("JBSWY3DPEHPK3PXP")

	ct, err := e.Encrypt(plaintext, Scope{UserID: 7, Purpose: "auth"})
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	tests := []struct {
		name  string
		scope Scope
	}{
		{"different user", Scope{UserID: 8, Purpose: "auth"}},
		{"different purpose", Scope{UserID: 7, Purpose: "reset_password"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.Decrypt(ct, tt.scope); !errors.Is(err, ErrDecryptFailed) {
				t.Fatalf("Decrypt() error = %v, want ErrDecryptFailed", err)
			}
		})
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	e := testEncryptor(t)
	scope := Scope{UserID: 7, Purpose: "auth"}

	ct, err := e.Encrypt([]byte("payload"), scope)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	ct[len(ct)-1] ^= 0xff
	if _, err := e.Decrypt(ct, scope); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("Decrypt() error = %v, want ErrDecryptFailed", err)
	}
}

func TestDecryptTruncated(t *testing.T) {
	e := testEncryptor(t)

	if _, err := e.Decrypt([]byte{0x00, 0x01}, Scope{UserID: 1, Purpose: "auth"}); !errors.Is(err, ErrCiphertextTooShort) {
		t.Fatalf("Decrypt() error = %v, want ErrCiphertextTooShort", err)
	}
}

func TestEncryptNonceUnique(t *testing.T) {
	e := testEncryptor(t)
	scope := Scope{UserID: 1, Purpose: "auth"}

	c1, err := e.Encrypt([]byte("same"), scope)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	c2, err := e.Encrypt([]byte("same"), scope)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if bytes.Equal(c1, c2) {
		t.Fatal("two encryptions of the same plaintext are identical")
	}
}

func TestEncryptInvalidKey(t *testing.T) {
	e := NewAESGCM(StaticKeyProvider{KeyBytes: []byte("short")})
	if _, err := e.Encrypt([]byte("x"), Scope{UserID: 1, Purpose: "auth"}); !errors.Is(err, ErrInvalidKeyLength) {
		t.Fatalf("Encrypt() error = %v, want ErrInvalidKeyLength", err)
	}
}
