package usecase

import (
	"context"
	"testing"

	"github.com/ademolaidowu/gezapay/internal/auth/entity"
	"github.com/ademolaidowu/gezapay/internal/pkg/goerror"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)

	userID, code := f.register(t, "new@example.com")

	user, err := f.repo.GetUserByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("user row missing: %v", err)
	}
	if user.IsConfirmed || user.IsActive {
		t.Fatal("new account must start unconfirmed and inactive")
	}
	if user.Password != "pw:correct-horse" {
		t.Fatalf("password stored as %q, want the hashed form", user.Password)
	}

	if _, ok := f.repo.profiles[userID]; !ok {
		t.Fatal("profile row was not created with the registration")
	}

	secrets, ok := f.repo.secrets[userID]
	if !ok {
		t.Fatal("secret record was not created with the registration")
	}
	for _, p := range entity.Purposes() {
		if len(secrets.SecretFor(p)) == 0 {
			t.Fatalf("secret for purpose %s is empty", p)
		}
	}

	ledger, err := f.repo.GetLatestOTPCode(context.Background(), userID, entity.PurposeAuth)
	if err != nil {
		t.Fatalf("no confirmation code in ledger: %v", err)
	}
	if ledger.Code != code {
		t.Fatalf("ledger code = %s, published code = %s", ledger.Code, code)
	}
	if ledger.IsVerified {
		t.Fatal("fresh ledger row must be unverified")
	}
	if len(code) != 6 {
		t.Fatalf("code length = %d, want 6", len(code))
	}

	if len(f.msg.registeredEvents) != 1 {
		t.Fatalf("user registered events = %d, want 1", len(f.msg.registeredEvents))
	}
	if f.msg.registeredEvents[0].Email != "new@example.com" {
		t.Fatalf("registered event email = %q", f.msg.registeredEvents[0].Email)
	}
	if f.msg.otpEvents[0].SendMode != "mail" {
		t.Fatalf("otp event send mode = %q, want mail", f.msg.otpEvents[0].SendMode)
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	f := newFixture(t)

	userID, _ := f.register(t, "  MiXeD@Example.COM ")

	user, err := f.repo.GetUserByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("user row missing: %v", err)
	}
	if user.Email != "mixed@example.com" {
		t.Fatalf("email stored as %q, want lowercase trimmed", user.Email)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "dup@example.com")

	err := f.uc.Register(context.Background(), RegisterInput{
		Email:           "dup@example.com",
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
	})
	assertBusinessError(t, err, goerror.CodeConflict, "Email already registered")
}

func TestRegisterInvalidInput(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"bad email", RegisterInput{Email: "nope", Password: "correct-horse", ConfirmPassword: "correct-horse"}},
		{"short password", RegisterInput{Email: "a@b.com", Password: "short", ConfirmPassword: "short"}},
		{"mismatched confirmation", RegisterInput{Email: "a@b.com", Password: "correct-horse", ConfirmPassword: "other-horse1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertInvalidInput(t, f.uc.Register(context.Background(), tt.in))
		})
	}
}

func TestRegisterSucceedsWhenPublishFails(t *testing.T) {
	f := newFixture(t)
	f.msg.publishErr = context.DeadlineExceeded

	err := f.uc.Register(context.Background(), RegisterInput{
		Email:           "quiet@example.com",
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Register() error = %v, want nil when only publication fails", err)
	}

	// The code row must be durable even though delivery was lost.
	if len(f.repo.codes) != 1 {
		t.Fatalf("ledger rows = %d, want 1", len(f.repo.codes))
	}
}
