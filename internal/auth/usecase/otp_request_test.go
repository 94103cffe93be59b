package usecase

import (
	"context"
	"testing"

	"github.com/ademolaidowu/gezapay/internal/auth/entity"
	"github.com/ademolaidowu/gezapay/internal/pkg/goerror"
)

func TestOTPRequest(t *testing.T) {
	f := newFixture(t)
	userID := f.confirm(t, "otp@example.com")
	ctx := authCtx(userID, "otp@example.com")

	before := len(f.repo.codes)
	err := f.uc.OTPRequest(ctx, OTPRequestInput{Purpose: "transactions"})
	if err != nil {
		t.Fatalf("OTPRequest() error = %v", err)
	}

	if len(f.repo.codes) != before+1 {
		t.Fatalf("ledger rows = %d, want %d", len(f.repo.codes), before+1)
	}
	row := f.repo.codes[len(f.repo.codes)-1]
	if row.Purpose != entity.PurposeTransactions {
		t.Fatalf("ledger purpose = %s, want transactions", row.Purpose)
	}

	ev := f.msg.otpEvents[len(f.msg.otpEvents)-1]
	if ev.Purpose != "transactions" || ev.Code != row.Code {
		t.Fatalf("published event = %+v, ledger row = %+v", ev, row)
	}
	if ev.SendMode != "mail" {
		t.Fatalf("send mode = %q, want mail", ev.SendMode)
	}
}

func TestOTPRequestSMSFallsBackToMail(t *testing.T) {
	f := newFixture(t)
	userID := f.confirm(t, "otp@example.com")

	err := f.uc.OTPRequest(authCtx(userID, "otp@example.com"), OTPRequestInput{
		Purpose:  "reset_password",
		SendMode: "sms",
	})
	if err != nil {
		t.Fatalf("OTPRequest() error = %v", err)
	}

	ev := f.msg.otpEvents[len(f.msg.otpEvents)-1]
	if ev.SendMode != "mail" {
		t.Fatalf("send mode = %q, want mail fallback", ev.SendMode)
	}
}

func TestOTPRequestAuthPurposeAlreadyConfirmed(t *testing.T) {
	f := newFixture(t)
	userID := f.confirm(t, "otp@example.com")

	err := f.uc.OTPRequest(authCtx(userID, "otp@example.com"), OTPRequestInput{Purpose: "auth"})
	assertBusinessError(t, err, goerror.CodeConflict, "This email has already been verified")
}

func TestOTPRequestAuthPurposePending(t *testing.T) {
	f := newFixture(t)
	userID, _ := f.register(t, "pending@example.com")

	err := f.uc.OTPRequest(authCtx(userID, "pending@example.com"), OTPRequestInput{Purpose: "auth"})
	if err != nil {
		t.Fatalf("OTPRequest() error = %v", err)
	}
}

func TestOTPRequestSelfHealsMissingSecrets(t *testing.T) {
	f := newFixture(t)
	userID := f.confirm(t, "otp@example.com")

	if err := f.repo.DeleteOTPSecrets(context.Background(), userID); err != nil {
		t.Fatalf("DeleteOTPSecrets() error = %v", err)
	}

	err := f.uc.OTPRequest(authCtx(userID, "otp@example.com"), OTPRequestInput{Purpose: "logout"})
	if err != nil {
		t.Fatalf("OTPRequest() error = %v", err)
	}

	secrets, ok := f.repo.secrets[userID]
	if !ok {
		t.Fatal("secret record was not regenerated")
	}
	for _, p := range entity.Purposes() {
		if len(secrets.SecretFor(p)) == 0 {
			t.Fatalf("regenerated secret for purpose %s is empty", p)
		}
	}
}

func TestOTPRequestUnknownUser(t *testing.T) {
	f := newFixture(t)

	err := f.uc.OTPRequest(authCtx(4242, "ghost@example.com"), OTPRequestInput{Purpose: "auth"})
	assertBusinessError(t, err, goerror.CodeNotFound, "Account not found")
}

func TestOTPRequestUnauthenticated(t *testing.T) {
	f := newFixture(t)

	err := f.uc.OTPRequest(context.Background(), OTPRequestInput{Purpose: "auth"})
	assertBusinessError(t, err, goerror.CodeUnauthorized, "Authentication required")
}

func TestOTPRequestInvalidInput(t *testing.T) {
	f := newFixture(t)
	userID := f.confirm(t, "otp@example.com")
	ctx := authCtx(userID, "otp@example.com")

	t.Run("unknown purpose", func(t *testing.T) {
		assertInvalidInput(t, f.uc.OTPRequest(ctx, OTPRequestInput{Purpose: "telepathy"}))
	})
	t.Run("unknown send mode", func(t *testing.T) {
		assertInvalidInput(t, f.uc.OTPRequest(ctx, OTPRequestInput{Purpose: "auth", SendMode: "pigeon"}))
	})
	t.Run("missing purpose", func(t *testing.T) {
		assertInvalidInput(t, f.uc.OTPRequest(ctx, OTPRequestInput{}))
	})
}
