package usecase

import (
	"context"
	"log/slog"

	"github.com/ademolaidowu/gezapay/internal/auth/entity"
	"github.com/ademolaidowu/gezapay/internal/pkg/goerror"
)

type LogoutInput struct {
	Mode         string
	RefreshToken string
}

// Logout revokes refresh tokens. Mode "current" blacklists exactly the
// supplied token; mode "all" blacklists every token outstanding at query
// time. A token minted after the query is unaffected; that race is accepted.
// Revocation is never reversible and revoke-all is idempotent.
func (s *Usecase) Logout(ctx context.Context, in LogoutInput) error {
	ctx, span := s.startSpan(ctx, "Logout")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	mode, ok := entity.ParseLogoutMode(in.Mode)
	if !ok {
		return goerror.NewInvalidInput(nil, "mode", "must be one of current, all")
	}

	if mode == entity.LogoutModeAll {
		if err := s.repoDB.RevokeAllRefreshTokens(ctx, clm.UserID); err != nil {
			slog.ErrorContext(ctx, "failed to repo revoke all refresh tokens", "user_id", clm.UserID, "error", err)
			return goerror.NewServer(err)
		}
		return nil
	}

	if len(in.RefreshToken) != 64 {
		return errInvalidToken()
	}

	tokenHash, err := s.hmac.Hash(in.RefreshToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash refresh token", "error", err)
		return goerror.NewServer(err)
	}

	revoked, err := s.repoDB.RevokeRefreshToken(ctx, string(tokenHash))
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo revoke refresh token", "error", err)
		return goerror.NewServer(err)
	}
	if !revoked {
		slog.WarnContext(ctx, "logout attempted with unknown or already revoked token", "user_id", clm.UserID)
		return errInvalidToken()
	}

	return nil
}
