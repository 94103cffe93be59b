package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ademolaidowu/gezapay/internal/auth/entity"
	"github.com/ademolaidowu/gezapay/internal/pkg/goerror"
)

type RegisterInput struct {
	Email           string `validate:"required,email"`
	Password        string `validate:"required,password"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

// Register creates an unconfirmed account with its profile row and seeded
// secret record in one transaction, then issues the first confirmation OTP.
func (s *Usecase) Register(ctx context.Context, in RegisterInput) error {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	_, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	if err == nil {
		return goerror.NewBusiness("Email already registered", goerror.CodeConflict)
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}

	hashedPassword, err := s.password.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return goerror.NewServer(err)
	}

	user := entity.User{
		ID:       s.uid.Generate(),
		Email:    in.Email,
		Password: string(hashedPassword),
	}

	secrets, err := s.newSecretRecord(user.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate secret record", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	err = s.repoDB.CreateRegistration(ctx, entity.NewRegistration{
		User:    user,
		Profile: entity.UserProfile{UserID: user.ID},
		Secrets: secrets,
	})
	if errors.Is(err, goerror.ErrConflict) {
		return goerror.NewBusiness("Email already registered", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create registration", "email", user.Email, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoMessaging.PublishUserRegistered(ctx, UserRegisteredEvent{
		EventID: s.uuid.Generate(),
		UserID:  user.ID,
		Email:   user.Email,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish user registered event", "user_id", user.ID, "error", err)
	}

	return s.issueOTP(ctx, &user, entity.PurposeAuth, entity.SendModeMail)
}
