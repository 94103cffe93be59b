package usecase

import (
	"bytes"
	"context"
	"testing"

	"github.com/ademolaidowu/gezapay/internal/auth/entity"
	"github.com/ademolaidowu/gezapay/internal/pkg/goerror"
)

func adminCtx() context.Context {
	return authCtx(900, "admin@example.com")
}

func TestSecretRotate(t *testing.T) {
	f := newFixture(t)
	userID, _ := f.register(t, "sec@example.com")

	before := f.repo.secrets[userID]
	err := f.uc.SecretRotate(adminCtx(), SecretRotateInput{UserID: userID, Purpose: "transactions"})
	if err != nil {
		t.Fatalf("SecretRotate() error = %v", err)
	}

	after := f.repo.secrets[userID]
	if bytes.Equal(before.SecretFor(entity.PurposeTransactions), after.SecretFor(entity.PurposeTransactions)) {
		t.Fatal("rotated secret is unchanged")
	}
	for _, p := range []entity.Purpose{entity.PurposeAuth, entity.PurposeResetPassword, entity.PurposeLogout} {
		if !bytes.Equal(before.SecretFor(p), after.SecretFor(p)) {
			t.Fatalf("rotation of transactions touched the %s secret", p)
		}
	}
}

func TestSecretRotateInvalidatesOutstandingCode(t *testing.T) {
	f := newFixture(t)
	userID, code := f.register(t, "sec@example.com")

	err := f.uc.SecretRotate(adminCtx(), SecretRotateInput{UserID: userID, Purpose: "auth"})
	if err != nil {
		t.Fatalf("SecretRotate() error = %v", err)
	}

	// The outstanding code was derived from the old secret.
	err = f.uc.RegisterVerify(context.Background(), RegisterVerifyInput{
		Email: "sec@example.com",
		Code:  code,
	})
	assertBusinessError(t, err, goerror.CodeUnauthorized, "invalid or expired code")
}

func TestSecretRotateUnknownUser(t *testing.T) {
	f := newFixture(t)

	err := f.uc.SecretRotate(adminCtx(), SecretRotateInput{UserID: 4242, Purpose: "auth"})
	assertBusinessError(t, err, goerror.CodeNotFound, "Secret record not found")
}

func TestSecretRotateInvalidInput(t *testing.T) {
	f := newFixture(t)
	userID, _ := f.register(t, "sec@example.com")

	t.Run("unknown purpose", func(t *testing.T) {
		assertInvalidInput(t, f.uc.SecretRotate(adminCtx(), SecretRotateInput{UserID: userID, Purpose: "telepathy"}))
	})
	t.Run("missing user id", func(t *testing.T) {
		assertInvalidInput(t, f.uc.SecretRotate(adminCtx(), SecretRotateInput{Purpose: "auth"}))
	})
}

func TestSecretReset(t *testing.T) {
	f := newFixture(t)
	userID, _ := f.register(t, "sec@example.com")

	before := f.repo.secrets[userID]
	if err := f.uc.SecretReset(adminCtx(), SecretResetInput{UserID: userID}); err != nil {
		t.Fatalf("SecretReset() error = %v", err)
	}

	after := f.repo.secrets[userID]
	for _, p := range entity.Purposes() {
		if bytes.Equal(before.SecretFor(p), after.SecretFor(p)) {
			t.Fatalf("reset left the %s secret unchanged", p)
		}
	}
}

func TestSecretResetRecreatesMissingRecord(t *testing.T) {
	f := newFixture(t)
	userID, _ := f.register(t, "sec@example.com")

	if err := f.repo.DeleteOTPSecrets(context.Background(), userID); err != nil {
		t.Fatalf("DeleteOTPSecrets() error = %v", err)
	}

	if err := f.uc.SecretReset(adminCtx(), SecretResetInput{UserID: userID}); err != nil {
		t.Fatalf("SecretReset() error = %v", err)
	}
	if _, ok := f.repo.secrets[userID]; !ok {
		t.Fatal("reset did not recreate the secret record")
	}
}

func TestSecretResetUnknownUser(t *testing.T) {
	f := newFixture(t)

	err := f.uc.SecretReset(adminCtx(), SecretResetInput{UserID: 4242})
	assertBusinessError(t, err, goerror.CodeNotFound, "Account not found")
}

func TestSecretRemove(t *testing.T) {
	f := newFixture(t)
	userID, _ := f.register(t, "sec@example.com")

	if err := f.uc.SecretRemove(adminCtx(), SecretRemoveInput{UserID: userID}); err != nil {
		t.Fatalf("SecretRemove() error = %v", err)
	}
	if _, ok := f.repo.secrets[userID]; ok {
		t.Fatal("secret record still present after removal")
	}
}

func TestSecretRemoveThenIssueSelfHeals(t *testing.T) {
	f := newFixture(t)
	userID := f.confirm(t, "sec@example.com")

	if err := f.uc.SecretRemove(adminCtx(), SecretRemoveInput{UserID: userID}); err != nil {
		t.Fatalf("SecretRemove() error = %v", err)
	}

	// Issuance regenerates the record instead of failing.
	err := f.uc.OTPRequest(authCtx(userID, "sec@example.com"), OTPRequestInput{Purpose: "transactions"})
	if err != nil {
		t.Fatalf("OTPRequest() after removal error = %v", err)
	}
	if _, ok := f.repo.secrets[userID]; !ok {
		t.Fatal("secret record was not regenerated on issue")
	}
}

func TestSecretAdminAuthorization(t *testing.T) {
	f := newFixture(t)
	userID, _ := f.register(t, "sec@example.com")

	ops := []struct {
		name string
		call func(ctx context.Context) error
	}{
		{"rotate", func(ctx context.Context) error {
			return f.uc.SecretRotate(ctx, SecretRotateInput{UserID: userID, Purpose: "auth"})
		}},
		{"reset", func(ctx context.Context) error {
			return f.uc.SecretReset(ctx, SecretResetInput{UserID: userID})
		}},
		{"remove", func(ctx context.Context) error {
			return f.uc.SecretRemove(ctx, SecretRemoveInput{UserID: userID})
		}},
	}

	for _, op := range ops {
		t.Run(op.name+" unauthenticated", func(t *testing.T) {
			err := op.call(context.Background())
			assertBusinessError(t, err, goerror.CodeUnauthorized, "Authentication required")
		})
		t.Run(op.name+" without role", func(t *testing.T) {
			err := op.call(authCtx(userID, "sec@example.com"))
			assertBusinessError(t, err, goerror.CodeForbidden, "Account not allowed")
		})
	}
}
