package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ademolaidowu/gezapay/internal/auth/entity"
	"github.com/ademolaidowu/gezapay/internal/pkg/cryptor"
	"github.com/ademolaidowu/gezapay/internal/pkg/goerror"
)

type SecretRotateInput struct {
	UserID  int64  `validate:"required,gt=0"`
	Purpose string `validate:"required"`
}

// SecretRotate replaces a single purpose's secret. Outstanding codes derived
// from the old secret simply stop verifying; no further cleanup is needed.
func (s *Usecase) SecretRotate(ctx context.Context, in SecretRotateInput) error {
	ctx, span := s.startSpan(ctx, "SecretRotate")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, "auth:secrets", "rotate"); err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	purpose, err := entity.ParsePurpose(in.Purpose)
	if err != nil {
		return goerror.NewInvalidInput(nil, "purpose", "must be one of auth, reset_password, transactions, logout")
	}

	secret, err := s.totp.GenerateSecret()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate secret", "user_id", in.UserID, "error", err)
		return goerror.NewServer(err)
	}

	ciphertext, err := s.encryptor.Encrypt([]byte(secret), cryptor.Scope{
		UserID:  in.UserID,
		Purpose: purpose.String(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to encrypt secret", "user_id", in.UserID, "error", err)
		return goerror.NewServer(err)
	}

	err = s.repoDB.RotateOTPSecret(ctx, in.UserID, purpose, ciphertext)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("Secret record not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo rotate otp secret", "user_id", in.UserID, "purpose", purpose, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
