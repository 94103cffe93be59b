package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ademolaidowu/gezapay/internal/pkg/idempotency"
	"github.com/ademolaidowu/gezapay/internal/pkg/instrument"
	"github.com/ademolaidowu/gezapay/internal/pkg/mail"
	"github.com/ademolaidowu/gezapay/internal/pkg/validator"
)

type fakeConfig struct{}

func (fakeConfig) Close() error { return nil }

func (fakeConfig) GetString(key string) string {
	if key == "app.name" {
		return "Gezapay"
	}
	return ""
}

func (fakeConfig) GetBool(string) bool       { return false }
func (fakeConfig) GetInt(string) int         { return 0 }
func (fakeConfig) GetInt32(string) int32     { return 0 }
func (fakeConfig) GetInt64(string) int64     { return 0 }
func (fakeConfig) GetUint(string) uint       { return 0 }
func (fakeConfig) GetFloat64(string) float64 { return 0 }

func (fakeConfig) GetSecond(key string) time.Duration {
	if key == "modules.auth.otp_period_seconds" {
		return 300 * time.Second
	}
	return 0
}

func (fakeConfig) GetMinute(string) time.Duration  { return 0 }
func (fakeConfig) GetHour(string) time.Duration    { return 0 }
func (fakeConfig) GetDay(string) time.Duration     { return 0 }
func (fakeConfig) GetArray(string) []string        { return nil }
func (fakeConfig) GetMap(string) map[string]string { return nil }
func (fakeConfig) GetBinary(string) []byte         { return nil }

// fakeIdempotency tracks terminal states in memory and can simulate a key
// already claimed by an earlier run.
type fakeIdempotency struct {
	states map[string]idempotency.State
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{states: make(map[string]idempotency.State)}
}

func (f *fakeIdempotency) Acquire(_ context.Context, key string, _ time.Duration) (idempotency.State, error) {
	if s, ok := f.states[key]; ok {
		return s, nil
	}
	f.states[key] = idempotency.StateInProgress
	return idempotency.StateNone, nil
}

func (f *fakeIdempotency) MarkCompleted(_ context.Context, key string, _ time.Duration) error {
	f.states[key] = idempotency.StateCompleted
	return nil
}

func (f *fakeIdempotency) MarkFailed(_ context.Context, key string, _ time.Duration) error {
	f.states[key] = idempotency.StateFailed
	return nil
}

func (f *fakeIdempotency) Exec(ctx context.Context, key string, fn func(context.Context) error, _ ...idempotency.Option) error {
	state, err := f.Acquire(ctx, key, 0)
	if err != nil {
		return err
	}
	switch state {
	case idempotency.StateInProgress:
		return idempotency.ErrAlreadyInProgress
	case idempotency.StateCompleted:
		return idempotency.ErrAlreadyCompleted
	case idempotency.StateFailed:
		return idempotency.ErrAlreadyFailed
	}
	if err := fn(ctx); err != nil {
		_ = f.MarkFailed(ctx, key, 0)
		return err
	}
	return f.MarkCompleted(ctx, key, 0)
}

type fakeMail struct {
	sent  []mail.Message
	fails int // fail this many Sends before succeeding
}

func (f *fakeMail) Send(_ context.Context, msg mail.Message) error {
	if f.fails > 0 {
		f.fails--
		return errors.New("smtp: connection refused")
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fixture struct {
	uc   *Usecase
	mail *fakeMail
	idem *fakeIdempotency
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	m := &fakeMail{}
	idem := newFakeIdempotency()

	uc := NewNotification(Dependency{
		Config:      fakeConfig{},
		Validator:   v,
		RepoMail:    m,
		Idempotency: idem,
		Instrument:  instrument.NewNoop(),
	})
	return &fixture{uc: uc, mail: m, idem: idem}
}

func otpInput() ConsumeOTPIssuedInput {
	return ConsumeOTPIssuedInput{
		EventID:  "event-1",
		UserID:   1,
		Email:    "user@example.com",
		Purpose:  "auth",
		Code:     "123456",
		SendMode: "mail",
	}
}

func TestConsumeOTPIssued(t *testing.T) {
	f := newFixture(t)

	if err := f.uc.ConsumeOTPIssued(context.Background(), otpInput()); err != nil {
		t.Fatalf("ConsumeOTPIssued() error = %v", err)
	}

	if len(f.mail.sent) != 1 {
		t.Fatalf("sent = %d messages, want 1", len(f.mail.sent))
	}
	msg := f.mail.sent[0]
	if msg.To[0] != "user@example.com" {
		t.Fatalf("to = %v", msg.To)
	}
	if msg.Subject != "Your Gezapay verification code" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.TextBody, "123456") {
		t.Fatalf("body does not carry the code: %q", msg.TextBody)
	}
	if !strings.Contains(msg.TextBody, "5 minutes") {
		t.Fatalf("body does not state the validity window: %q", msg.TextBody)
	}
	if !strings.Contains(msg.TextBody, "The Gezapay Team") {
		t.Fatalf("body is missing the signature: %q", msg.TextBody)
	}
}

func TestConsumeOTPIssuedSubjectPerPurpose(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		purpose string
		subject string
	}{
		{"auth", "Your Gezapay verification code"},
		{"reset_password", "Your Gezapay password reset code"},
		{"transactions", "Your Gezapay transaction code"},
		{"logout", "Your Gezapay logout confirmation code"},
	}
	for i, tt := range tests {
		in := otpInput()
		in.EventID = "event-" + tt.purpose
		in.Purpose = tt.purpose
		if err := f.uc.ConsumeOTPIssued(context.Background(), in); err != nil {
			t.Fatalf("ConsumeOTPIssued(%s) error = %v", tt.purpose, err)
		}
		if got := f.mail.sent[i].Subject; got != tt.subject {
			t.Fatalf("subject for %s = %q, want %q", tt.purpose, got, tt.subject)
		}
	}
}

func TestConsumeOTPIssuedDeduplicates(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		if err := f.uc.ConsumeOTPIssued(context.Background(), otpInput()); err != nil {
			t.Fatalf("delivery %d error = %v", i, err)
		}
	}
	if len(f.mail.sent) != 1 {
		t.Fatalf("sent = %d messages, want exactly 1 across redeliveries", len(f.mail.sent))
	}
}

func TestConsumeOTPIssuedRetriesTransientSendFailure(t *testing.T) {
	f := newFixture(t)
	f.mail.fails = 2

	if err := f.uc.ConsumeOTPIssued(context.Background(), otpInput()); err != nil {
		t.Fatalf("ConsumeOTPIssued() error = %v", err)
	}
	if len(f.mail.sent) != 1 {
		t.Fatalf("sent = %d messages, want 1 after retries", len(f.mail.sent))
	}
}

func TestConsumeOTPIssuedExhaustedRetries(t *testing.T) {
	f := newFixture(t)
	f.mail.fails = 10

	if err := f.uc.ConsumeOTPIssued(context.Background(), otpInput()); err == nil {
		t.Fatal("ConsumeOTPIssued() must surface the error for broker redelivery")
	}
	if f.idem.states["event-1"] != idempotency.StateFailed {
		t.Fatalf("state = %s, want failed", f.idem.states["event-1"])
	}
}

func TestConsumeOTPIssuedDropsUnknownPurpose(t *testing.T) {
	f := newFixture(t)

	in := otpInput()
	in.Purpose = "telepathy"
	if err := f.uc.ConsumeOTPIssued(context.Background(), in); err != nil {
		t.Fatalf("unknown purpose must be dropped, got error %v", err)
	}
	if len(f.mail.sent) != 0 {
		t.Fatal("no mail may be sent for an unknown purpose")
	}
}

func TestConsumeOTPIssuedDropsInvalidPayload(t *testing.T) {
	f := newFixture(t)

	in := otpInput()
	in.Code = "12ab"
	if err := f.uc.ConsumeOTPIssued(context.Background(), in); err != nil {
		t.Fatalf("invalid payload must be dropped, got error %v", err)
	}
	if len(f.mail.sent) != 0 {
		t.Fatal("no mail may be sent for an invalid payload")
	}
}

func TestConsumeUserRegistered(t *testing.T) {
	f := newFixture(t)

	err := f.uc.ConsumeUserRegistered(context.Background(), ConsumeUserRegisteredInput{
		EventID: "event-2",
		UserID:  1,
		Email:   "user@example.com",
	})
	if err != nil {
		t.Fatalf("ConsumeUserRegistered() error = %v", err)
	}

	if len(f.mail.sent) != 1 {
		t.Fatalf("sent = %d messages, want 1", len(f.mail.sent))
	}
	msg := f.mail.sent[0]
	if msg.Subject != "Welcome to Gezapay" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.TextBody, "Welcome to Gezapay!") {
		t.Fatalf("body = %q", msg.TextBody)
	}
}

func TestConsumeUserRegisteredDropsInvalidPayload(t *testing.T) {
	f := newFixture(t)

	err := f.uc.ConsumeUserRegistered(context.Background(), ConsumeUserRegisteredInput{
		EventID: "event-3",
		UserID:  1,
		Email:   "not-an-email",
	})
	if err != nil {
		t.Fatalf("invalid payload must be dropped, got error %v", err)
	}
	if len(f.mail.sent) != 0 {
		t.Fatal("no mail may be sent for an invalid payload")
	}
}
