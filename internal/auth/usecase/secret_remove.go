package usecase

import (
	"context"
	"log/slog"

	"github.com/ademolaidowu/gezapay/internal/pkg/goerror"
)

type SecretRemoveInput struct {
	UserID int64 `validate:"required,gt=0"`
}

// SecretRemove deletes the secret record. Outstanding codes stop verifying;
// the next issuance self-heals by regenerating a fresh record.
func (s *Usecase) SecretRemove(ctx context.Context, in SecretRemoveInput) error {
	ctx, span := s.startSpan(ctx, "SecretRemove")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, "auth:secrets", "remove"); err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if err := s.repoDB.DeleteOTPSecrets(ctx, in.UserID); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete otp secrets", "user_id", in.UserID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
