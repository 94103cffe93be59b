package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ademolaidowu/gezapay/internal/pkg/mail"
)

type ConsumeUserRegisteredInput struct {
	EventID string `validate:"required"`
	UserID  int64  `validate:"required,gt=0"`
	Email   string `validate:"required,email"`
}

// ConsumeUserRegistered sends the welcome email for a new account. The
// confirmation code travels separately on the otp issued event.
func (s *Usecase) ConsumeUserRegistered(ctx context.Context, in ConsumeUserRegisteredInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeUserRegistered")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	appName := s.cfg.GetString("app.name")
	body := fmt.Sprintf(
		"Welcome to %s!\n\nYour account has been created. Check your inbox for the verification code to confirm your email address.\n\n%s",
		appName, s.signature(),
	)

	return s.deliverOnce(ctx, in.EventID, mail.Message{
		To:       []string{in.Email},
		Subject:  "Welcome to " + appName,
		TextBody: body,
	})
}
