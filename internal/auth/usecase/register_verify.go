package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"github.com/ademolaidowu/gezapay/internal/auth/entity"
	"github.com/ademolaidowu/gezapay/internal/pkg/goerror"
)

type RegisterVerifyInput struct {
	Email string `validate:"required,email"`
	Code  string `validate:"required,len=6,numeric"`
}

// RegisterVerify confirms an account. The submitted code is accepted only
// when the newest auth-purpose ledger row is unverified, matches the code,
// and the TOTP window is still current; any failure yields the same error.
// The winner flips the code row and the account flags in one transaction.
func (s *Usecase) RegisterVerify(ctx context.Context, in RegisterVerifyInput) error {
	ctx, span := s.startSpan(ctx, "RegisterVerify")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "verification attempted for unknown email")
		return errInvalidOrExpiredCode()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}

	if user.IsConfirmed {
		return goerror.NewBusiness("This email has already been verified", goerror.CodeConflict)
	}

	ok, record, err := s.checkLatestCode(ctx, user.ID, entity.PurposeAuth, in.Code)
	if err != nil {
		return err
	}
	if !ok {
		return errInvalidOrExpiredCode()
	}

	won, err := s.repoDB.VerifyRegistration(ctx, entity.VerifyRegistration{
		CodeID: record.ID,
		UserID: user.ID,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo verify registration", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}
	if !won {
		slog.WarnContext(ctx, "concurrent verification lost the compare-and-swap", "user_id", user.ID)
		return errInvalidOrExpiredCode()
	}

	return nil
}

// checkLatestCode evaluates the triple verification condition against the
// newest ledger row: unverified, code equality, and current TOTP window.
func (s *Usecase) checkLatestCode(ctx context.Context, userID int64, purpose entity.Purpose, code string) (bool, *entity.OTPCode, error) {
	record, err := s.repoDB.GetLatestOTPCode(ctx, userID, purpose)
	if errors.Is(err, goerror.ErrNotFound) {
		return false, nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get latest otp code", "user_id", userID, "purpose", purpose, "error", err)
		return false, nil, goerror.NewServer(err)
	}

	if record.IsVerified {
		return false, nil, nil
	}
	if subtle.ConstantTimeCompare([]byte(record.Code), []byte(code)) != 1 {
		return false, nil, nil
	}

	sec, err := s.repoDB.GetOTPSecrets(ctx, userID)
	if errors.Is(err, goerror.ErrNotFound) {
		// Secrets removed after issuance; the code can no longer verify.
		return false, nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get otp secrets", "user_id", userID, "error", err)
		return false, nil, goerror.NewServer(err)
	}

	secret, err := s.decryptSecret(sec, purpose)
	if err != nil {
		slog.ErrorContext(ctx, "failed to decrypt otp secret", "user_id", userID, "purpose", purpose, "error", err)
		return false, nil, goerror.NewServer(err)
	}

	valid, err := s.totp.Validate(code, secret, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "otp secret is unusable", "user_id", userID, "purpose", purpose, "error", err)
		return false, nil, goerror.NewServer(err)
	}
	if !valid {
		return false, nil, nil
	}

	return true, record, nil
}
