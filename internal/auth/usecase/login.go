package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ademolaidowu/gezapay/internal/pkg/goerror"
)

type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type LoginOutput struct {
	AccessToken  string
	RefreshToken string
}

// Login authenticates credentials and mints a token pair. Failure modes are
// deliberately distinguishable: unknown email, wrong password, unverified
// account, and blocked account each answer differently.
func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "login attempted with unknown email")
		return nil, goerror.NewBusiness("invalid email", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.password.Verify(user.Password, in.Password) {
		slog.WarnContext(ctx, "login attempted with wrong password", "user_id", user.ID)
		return nil, goerror.NewBusiness("wrong password", goerror.CodeUnauthorized)
	}

	if !user.IsConfirmed {
		slog.WarnContext(ctx, "login attempted on unverified account", "user_id", user.ID)
		return nil, goerror.NewBusiness("This email has not been verified", goerror.CodeForbidden)
	}

	if !user.IsActive {
		slog.WarnContext(ctx, "login attempted on blocked account", "user_id", user.ID)
		return nil, goerror.NewBusiness("This account has been blocked", goerror.CodeForbidden)
	}

	access, refresh, err := s.mintTokenPair(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{AccessToken: access, RefreshToken: refresh}, nil
}
