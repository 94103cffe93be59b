package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/casbin/casbin/v3"
	"go.opentelemetry.io/otel/trace"

	"github.com/ademolaidowu/gezapay/internal/auth/entity"
	"github.com/ademolaidowu/gezapay/internal/pkg/clock"
	"github.com/ademolaidowu/gezapay/internal/pkg/config"
	"github.com/ademolaidowu/gezapay/internal/pkg/cryptor"
	"github.com/ademolaidowu/gezapay/internal/pkg/goerror"
	"github.com/ademolaidowu/gezapay/internal/pkg/hash"
	"github.com/ademolaidowu/gezapay/internal/pkg/instrument"
	"github.com/ademolaidowu/gezapay/internal/pkg/jwt"
	"github.com/ademolaidowu/gezapay/internal/pkg/otp"
	"github.com/ademolaidowu/gezapay/internal/pkg/uid"
	"github.com/ademolaidowu/gezapay/internal/pkg/validator"
)

type OTPIssuedEvent struct {
	EventID  string
	UserID   int64
	Email    string
	Purpose  string
	Code     string
	SendMode string
}

type UserRegisteredEvent struct {
	EventID string
	UserID  int64
	Email   string
}

type repoMessaging interface {
	PublishOTPIssued(ctx context.Context, msg OTPIssuedEvent) error
	PublishUserRegistered(ctx context.Context, msg UserRegisteredEvent) error
}

type repoDB interface {
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	GetOTPSecrets(ctx context.Context, userID int64) (*entity.OTPSecrets, error)
	GetLatestOTPCode(ctx context.Context, userID int64, purpose entity.Purpose) (*entity.OTPCode, error)
	GetUserRefreshToken(ctx context.Context, tokenHash string) (*entity.UserRefreshToken, error)

	CreateOTPCode(ctx context.Context, in entity.OTPCode) error
	CreateRefreshToken(ctx context.Context, in entity.RefreshToken) error

	UpsertOTPSecrets(ctx context.Context, in entity.OTPSecrets) error
	RotateOTPSecret(ctx context.Context, userID int64, purpose entity.Purpose, ciphertext []byte) error
	DeleteOTPSecrets(ctx context.Context, userID int64) error
	UpdateUserProfile(ctx context.Context, in entity.UserProfile) error
	RevokeRefreshToken(ctx context.Context, tokenHash string) (bool, error)
	RevokeAllRefreshTokens(ctx context.Context, userID int64) error
	MarkOTPCodeVerified(ctx context.Context, codeID int64) (bool, error)

	CreateRegistration(ctx context.Context, in entity.NewRegistration) error
	VerifyRegistration(ctx context.Context, in entity.VerifyRegistration) (bool, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	password      hash.Hash
	encryptor     cryptor.Encryptor
	uid           uid.NumberID
	uuid          uid.StringID
	oid           uid.StringID
	totp          otp.OTP
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
	enforcer      *casbin.Enforcer
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Validator     validator.Validator
	Config        config.Config
	HMAC          hash.Hash
	Password      hash.Hash
	Encryptor     cryptor.Encryptor
	UID           uid.NumberID
	UUID          uid.StringID
	OID           uid.StringID
	Totp          otp.OTP
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
	Enforcer      *casbin.Enforcer
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		password:      dep.Password,
		encryptor:     dep.Encryptor,
		uid:           dep.UID,
		uuid:          dep.UUID,
		oid:           dep.OID,
		totp:          dep.Totp,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
		enforcer:      dep.Enforcer,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}

// errInvalidOrExpiredCode is the uniform verification outcome: no pending
// record, record already verified, code mismatch, and time-step mismatch are
// indistinguishable to the caller.
func errInvalidOrExpiredCode() error {
	return goerror.NewBusiness("invalid or expired code", goerror.CodeUnauthorized)
}

func errInvalidToken() error {
	return goerror.NewBusiness("token is invalid or expired", goerror.CodeUnauthorized)
}

func (s *Usecase) authenticated(ctx context.Context) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}
	return clm, nil
}

func (s *Usecase) authenticatedAndAuthorized(ctx context.Context, obj, act string) (*jwt.Claims, error) {
	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	ok, err := s.enforcer.Enforce(clm.Subject, obj, act)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check authorization", "user_id", clm.Subject, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !ok {
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}

	return clm, nil
}

// newSecretRecord generates one fresh secret per purpose and encrypts each
// under its own scope. Nothing is persisted.
func (s *Usecase) newSecretRecord(userID int64) (entity.OTPSecrets, error) {
	record := entity.OTPSecrets{UserID: userID}
	for _, purpose := range entity.Purposes() {
		secret, err := s.totp.GenerateSecret()
		if err != nil {
			return entity.OTPSecrets{}, err
		}

		ciphertext, err := s.encryptor.Encrypt([]byte(secret), cryptor.Scope{
			UserID:  userID,
			Purpose: purpose.String(),
		})
		if err != nil {
			return entity.OTPSecrets{}, err
		}
		record.SetSecret(purpose, ciphertext)
	}
	return record, nil
}

func (s *Usecase) decryptSecret(sec *entity.OTPSecrets, purpose entity.Purpose) (string, error) {
	plaintext, err := s.encryptor.Decrypt(sec.SecretFor(purpose), cryptor.Scope{
		UserID:  sec.UserID,
		Purpose: purpose.String(),
	})
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// secretForIssue returns the decrypted secret for issuing a code. A missing
// record is self-healed by regenerating the full set.
func (s *Usecase) secretForIssue(ctx context.Context, userID int64, purpose entity.Purpose) (string, error) {
	sec, err := s.repoDB.GetOTPSecrets(ctx, userID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "otp secret record is missing, regenerating", "user_id", userID)

		record, err := s.newSecretRecord(userID)
		if err != nil {
			return "", err
		}
		if err := s.repoDB.UpsertOTPSecrets(ctx, record); err != nil {
			return "", err
		}
		sec = &record
	} else if err != nil {
		return "", err
	}

	return s.decryptSecret(sec, purpose)
}

// issueOTP derives a code from the current secret, appends a ledger row, and
// publishes the delivery event. Publication happens after the row is durable
// and is fire-and-forget; delivery failure never rolls back issuance.
func (s *Usecase) issueOTP(ctx context.Context, user *entity.User, purpose entity.Purpose, mode entity.SendMode) error {
	secret, err := s.secretForIssue(ctx, user.ID, purpose)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load otp secret", "user_id", user.ID, "purpose", purpose, "error", err)
		return goerror.NewServer(err)
	}

	now := s.clock.Now()
	code, err := s.totp.GenerateCode(secret, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "user_id", user.ID, "purpose", purpose, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoDB.CreateOTPCode(ctx, entity.OTPCode{
		ID:        s.uid.Generate(),
		UserID:    user.ID,
		Purpose:   purpose,
		Code:      code,
		CreatedAt: now,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create otp code", "user_id", user.ID, "purpose", purpose, "error", err)
		return goerror.NewServer(err)
	}

	if mode == entity.SendModeSMS {
		slog.WarnContext(ctx, "sms delivery is not available, falling back to mail", "user_id", user.ID)
		mode = entity.SendModeMail
	}

	if err := s.repoMessaging.PublishOTPIssued(ctx, OTPIssuedEvent{
		EventID:  s.uuid.Generate(),
		UserID:   user.ID,
		Email:    user.Email,
		Purpose:  purpose.String(),
		Code:     code,
		SendMode: mode.String(),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish otp issued event", "user_id", user.ID, "error", err)
	}

	return nil
}

// mintTokenPair creates an access token and records a fresh refresh token.
func (s *Usecase) mintTokenPair(ctx context.Context, userID int64, email string) (access, refresh string, err error) {
	access, err = s.jwt.Generate(userID, email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access token", "user_id", userID, "error", err)
		return "", "", goerror.NewServer(err)
	}

	refresh = s.oid.Generate()
	refreshHash, err := s.hmac.Hash(refresh)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash refresh token", "user_id", userID, "error", err)
		return "", "", goerror.NewServer(err)
	}

	now := s.clock.Now()
	if err := s.repoDB.CreateRefreshToken(ctx, entity.RefreshToken{
		ID:        s.uid.Generate(),
		UserID:    userID,
		TokenHash: string(refreshHash),
		ExpiresAt: now.Add(s.cfg.GetDay("modules.auth.refresh_token_ttl_days")),
		CreatedAt: now,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create refresh token", "user_id", userID, "error", err)
		return "", "", goerror.NewServer(err)
	}

	return access, refresh, nil
}
