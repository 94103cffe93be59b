package jwt

import (
	"errors"
	"testing"
	"time"
)

type staticClock struct{ t time.Time }

func (c staticClock) Now() time.Time { return c.t }

type staticUUID struct{ v string }

func (u staticUUID) Generate() string { return u.v }

func newTestJWT(t *testing.T, now time.Time, secret string) *Symmetric {
	t.Helper()

	// HS512 requires a 512-bit key.
	key := make([]byte, 64)
	copy(key, secret)

	j, err := NewHS512(Config{
		Secret:    key,
		Issuer:    "gezapay",
		Audiences: []string{"gezapay"},
		TTL:       15 * time.Minute,
		Clock:     staticClock{t: now},
		UUID:      staticUUID{v: "token-id-1"},
	})
	if err != nil {
		t.Fatalf("NewHS512() error = %v", err)
	}
	return j
}

func TestGenerateVerifyRoundTrip(t *testing.T) {
	now := time.Now()
	j := newTestJWT(t, now, "test-secret")

	token, err := j.Generate(42, "user@example.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	claims, err := j.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	if claims.UserID != 42 {
		t.Fatalf("UserID = %d, want 42", claims.UserID)
	}
	if claims.UserEmail != "user@example.com" {
		t.Fatalf("UserEmail = %q", claims.UserEmail)
	}
	if claims.Subject != "42" {
		t.Fatalf("Subject = %q, want \"42\"", claims.Subject)
	}
}

func TestVerifyExpired(t *testing.T) {
	issuedAt := time.Now().Add(-time.Hour)
	j := newTestJWT(t, issuedAt, "test-secret")

	token, err := j.Generate(42, "user@example.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := j.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Verify() error = %v, want ErrTokenExpired", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	now := time.Now()
	j := newTestJWT(t, now, "secret-a")
	other := newTestJWT(t, now, "secret-b")

	token, err := j.Generate(42, "user@example.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := other.Verify(token); err == nil {
		t.Fatal("Verify() accepted a token signed with a different secret")
	}
}

func TestVerifyGarbage(t *testing.T) {
	j := newTestJWT(t, time.Now(), "test-secret")

	if _, err := j.Verify("not-a-jwt"); err == nil {
		t.Fatal("Verify() accepted garbage input")
	}
}
