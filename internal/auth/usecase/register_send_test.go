package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/ademolaidowu/gezapay/internal/pkg/goerror"
)

func TestRegisterSend(t *testing.T) {
	f := newFixture(t)
	f.register(t, "resend@example.com")

	f.clock.T = f.clock.T.Add(300 * time.Second)
	if err := f.uc.RegisterSend(context.Background(), RegisterSendInput{Email: "resend@example.com"}); err != nil {
		t.Fatalf("RegisterSend() error = %v", err)
	}

	// Re-issuing appends; it never rewrites the earlier row.
	if len(f.repo.codes) != 2 {
		t.Fatalf("ledger rows = %d, want 2", len(f.repo.codes))
	}
	if len(f.msg.otpEvents) != 2 {
		t.Fatalf("otp events = %d, want 2", len(f.msg.otpEvents))
	}
	if f.msg.otpEvents[1].SendMode != "mail" {
		t.Fatalf("send mode = %q, want mail", f.msg.otpEvents[1].SendMode)
	}
}

func TestRegisterSendIndistinguishableOutcomes(t *testing.T) {
	f := newFixture(t)
	f.confirm(t, "done@example.com")

	// Unknown address and confirmed address must read identically.
	for _, email := range []string{"ghost@example.com", "done@example.com"} {
		err := f.uc.RegisterSend(context.Background(), RegisterSendInput{Email: email})
		assertBusinessError(t, err, goerror.CodeConflict, "This email has already been verified")
	}
}

func TestRegisterSendInvalidInput(t *testing.T) {
	f := newFixture(t)

	assertInvalidInput(t, f.uc.RegisterSend(context.Background(), RegisterSendInput{Email: "nope"}))
}
