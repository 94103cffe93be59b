package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ademolaidowu/gezapay/internal/auth/entity"
	"github.com/ademolaidowu/gezapay/internal/pkg/goerror"
)

type RegisterSendInput struct {
	Email string `validate:"required,email"`
}

// RegisterSend re-issues the confirmation OTP. Unknown email and
// already-confirmed account answer with the same message so the endpoint
// cannot be used to probe which addresses are registered.
func (s *Usecase) RegisterSend(ctx context.Context, in RegisterSendInput) error {
	ctx, span := s.startSpan(ctx, "RegisterSend")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "confirmation otp requested for unknown email")
		return goerror.NewBusiness("This email has already been verified", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}

	if user.IsConfirmed {
		return goerror.NewBusiness("This email has already been verified", goerror.CodeConflict)
	}

	return s.issueOTP(ctx, user, entity.PurposeAuth, entity.SendModeMail)
}
