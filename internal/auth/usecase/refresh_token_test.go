package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ademolaidowu/gezapay/internal/pkg/goerror"
)

const uniformTokenMsg = "token is invalid or expired"

// login confirms an account and returns its token pair.
func (f *fixture) login(t *testing.T, email string) (int64, *LoginOutput) {
	t.Helper()

	userID := f.confirm(t, email)
	out, err := f.uc.Login(context.Background(), LoginInput{Email: email, Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	return userID, out
}

func TestRefreshToken(t *testing.T) {
	f := newFixture(t)
	_, pair := f.login(t, "refresh@example.com")

	out, err := f.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: pair.RefreshToken})
	if err != nil {
		t.Fatalf("RefreshToken() error = %v", err)
	}
	if out.AccessToken == "" {
		t.Fatal("RefreshToken() returned an empty access token")
	}

	// The refresh token is not rotated: no new row, old row still live.
	if len(f.repo.refresh) != 1 {
		t.Fatalf("refresh rows = %d, want 1", len(f.repo.refresh))
	}
	if f.repo.refresh["hmac:"+pair.RefreshToken].Revoked {
		t.Fatal("refresh must not revoke the presented token")
	}
}

func TestRefreshTokenUniformFailures(t *testing.T) {
	f := newFixture(t)
	userID, pair := f.login(t, "refresh@example.com")

	t.Run("unknown token", func(t *testing.T) {
		_, err := f.uc.RefreshToken(context.Background(), RefreshTokenInput{
			RefreshToken: strings.Repeat("f", 64),
		})
		assertBusinessError(t, err, goerror.CodeUnauthorized, uniformTokenMsg)
	})

	t.Run("expired token", func(t *testing.T) {
		f.clock.T = f.clock.T.Add(31 * 24 * time.Hour)
		defer func() { f.clock.T = f.clock.T.Add(-31 * 24 * time.Hour) }()

		_, err := f.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: pair.RefreshToken})
		assertBusinessError(t, err, goerror.CodeUnauthorized, uniformTokenMsg)
	})

	t.Run("blocked account", func(t *testing.T) {
		u := f.repo.users[userID]
		u.IsActive = false
		f.repo.users[userID] = u
		defer func() {
			u.IsActive = true
			f.repo.users[userID] = u
		}()

		_, err := f.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: pair.RefreshToken})
		assertBusinessError(t, err, goerror.CodeUnauthorized, uniformTokenMsg)
	})

	t.Run("revoked token", func(t *testing.T) {
		if _, err := f.repo.RevokeRefreshToken(context.Background(), "hmac:"+pair.RefreshToken); err != nil {
			t.Fatalf("RevokeRefreshToken() error = %v", err)
		}

		_, err := f.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: pair.RefreshToken})
		assertBusinessError(t, err, goerror.CodeUnauthorized, uniformTokenMsg)
	})
}

func TestRefreshTokenInvalidInput(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"short", "abc123"},
		{"non hex", strings.Repeat("z", 64)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: tt.token})
			assertInvalidInput(t, err)
		})
	}
}
