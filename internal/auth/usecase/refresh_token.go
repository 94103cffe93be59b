package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ademolaidowu/gezapay/internal/pkg/goerror"
)

type RefreshTokenInput struct {
	RefreshToken string `validate:"required,len=64,hexadecimal"`
}

type RefreshTokenOutput struct {
	AccessToken string
}

// RefreshToken exchanges a valid refresh token for a new access token. The
// refresh token itself is not rotated; it stays valid until it expires or is
// revoked. Revoked, unknown, and expired tokens answer uniformly.
func (s *Usecase) RefreshToken(ctx context.Context, in RefreshTokenInput) (*RefreshTokenOutput, error) {
	ctx, span := s.startSpan(ctx, "RefreshToken")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	tokenHash, err := s.hmac.Hash(in.RefreshToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash refresh token", "error", err)
		return nil, goerror.NewServer(err)
	}

	rt, err := s.repoDB.GetUserRefreshToken(ctx, string(tokenHash))
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "refresh attempted with unknown token")
		return nil, errInvalidToken()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user refresh token", "error", err)
		return nil, goerror.NewServer(err)
	}

	if rt.Revoked {
		slog.WarnContext(ctx, "refresh attempted with revoked token", "refresh_token_id", rt.RefreshID)
		return nil, errInvalidToken()
	}

	if s.clock.Now().After(rt.ExpiresAt) {
		slog.WarnContext(ctx, "refresh attempted with expired token", "refresh_token_id", rt.RefreshID)
		return nil, errInvalidToken()
	}

	if !rt.UserIsConfirmed || !rt.UserIsActive {
		slog.WarnContext(ctx, "refresh attempted for unconfirmed or blocked account", "user_id", rt.UserID)
		return nil, errInvalidToken()
	}

	access, err := s.jwt.Generate(rt.UserID, rt.UserEmail)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access token", "user_id", rt.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &RefreshTokenOutput{AccessToken: access}, nil
}
