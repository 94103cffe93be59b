package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ademolaidowu/gezapay/internal/pkg/mail"
)

type ConsumeOTPIssuedInput struct {
	EventID  string `validate:"required"`
	UserID   int64  `validate:"required,gt=0"`
	Email    string `validate:"required,email"`
	Purpose  string `validate:"required"`
	Code     string `validate:"required,len=6,numeric"`
	SendMode string `validate:"omitempty,oneof=mail sms"`
}

// purposeSubjects maps a code purpose to the subject line of its email.
var purposeSubjects = map[string]string{
	"auth":           "Your Gezapay verification code",
	"reset_password": "Your Gezapay password reset code",
	"transactions":   "Your Gezapay transaction code",
	"logout":         "Your Gezapay logout confirmation code",
}

// ConsumeOTPIssued delivers a one-time code by email. Consumption is
// idempotent on the event id so broker redeliveries never send twice.
func (s *Usecase) ConsumeOTPIssued(ctx context.Context, in ConsumeOTPIssuedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeOTPIssued")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	subject, ok := purposeSubjects[in.Purpose]
	if !ok {
		slog.ErrorContext(ctx, "unknown otp purpose, dropping message", "purpose", in.Purpose, "event_id", in.EventID)
		return nil
	}

	ttl := s.cfg.GetSecond("modules.auth.otp_period_seconds")
	body := fmt.Sprintf(
		"Your verification code is %s.\n\nIt expires in %s. If you did not request this code, you can ignore this email.\n\n%s",
		in.Code, formatPeriod(ttl.Minutes()), s.signature(),
	)

	return s.deliverOnce(ctx, in.EventID, mail.Message{
		To:       []string{in.Email},
		Subject:  subject,
		TextBody: body,
	})
}

func formatPeriod(minutes float64) string {
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%g minutes", minutes)
}

func (s *Usecase) signature() string {
	return strings.TrimSpace("The " + s.cfg.GetString("app.name") + " Team")
}
