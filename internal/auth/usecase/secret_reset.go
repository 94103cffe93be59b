package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ademolaidowu/gezapay/internal/pkg/goerror"
)

type SecretResetInput struct {
	UserID int64 `validate:"required,gt=0"`
}

// SecretReset regenerates the full secret record, overwriting whatever is
// stored. Every outstanding code for the user stops verifying.
func (s *Usecase) SecretReset(ctx context.Context, in SecretResetInput) error {
	ctx, span := s.startSpan(ctx, "SecretReset")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, "auth:secrets", "reset"); err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if _, err := s.repoDB.GetUserByID(ctx, in.UserID); err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return goerror.NewBusiness("Account not found", goerror.CodeNotFound)
		}
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", in.UserID, "error", err)
		return goerror.NewServer(err)
	}

	record, err := s.newSecretRecord(in.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate secret record", "user_id", in.UserID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoDB.UpsertOTPSecrets(ctx, record); err != nil {
		slog.ErrorContext(ctx, "failed to repo upsert otp secrets", "user_id", in.UserID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
