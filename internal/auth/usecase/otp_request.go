package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ademolaidowu/gezapay/internal/auth/entity"
	"github.com/ademolaidowu/gezapay/internal/pkg/goerror"
)

type OTPRequestInput struct {
	Purpose  string `validate:"required"`
	SendMode string `validate:"omitempty"`
}

// OTPRequest issues a one-time code for the authenticated user. Every
// request appends a new ledger row; concurrent requests both append and the
// newest row supersedes the rest.
func (s *Usecase) OTPRequest(ctx context.Context, in OTPRequestInput) error {
	ctx, span := s.startSpan(ctx, "OTPRequest")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	purpose, err := entity.ParsePurpose(in.Purpose)
	if err != nil {
		return goerror.NewInvalidInput(nil, "purpose", "must be one of auth, reset_password, transactions, logout")
	}

	mode, err := entity.ParseSendMode(in.SendMode)
	if err != nil {
		return goerror.NewInvalidInput(nil, "send_mode", "must be one of mail, sms")
	}

	user, err := s.repoDB.GetUserByID(ctx, clm.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "authenticated user no longer exists", "user_id", clm.UserID)
		return goerror.NewBusiness("Account not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	if purpose == entity.PurposeAuth && user.IsConfirmed {
		return goerror.NewBusiness("This email has already been verified", goerror.CodeConflict)
	}

	return s.issueOTP(ctx, user, purpose, mode)
}
