package db

import (
	"context"
	"fmt"

	"github.com/ademolaidowu/gezapay/internal/auth/entity"
	"github.com/ademolaidowu/gezapay/internal/pkg/goerror"
)

const upsertOTPSecrets = `
insert into auth_otp_secrets (user_id, auth_secret, reset_password_secret, transactions_secret, logout_secret, updated_at)
values ($1, $2, $3, $4, $5, now())
on conflict (user_id) do update set
	auth_secret = excluded.auth_secret,
	reset_password_secret = excluded.reset_password_secret,
	transactions_secret = excluded.transactions_secret,
	logout_secret = excluded.logout_secret,
	updated_at = now()`

// UpsertOTPSecrets replaces the whole fixed-shape record, creating it when
// missing.
func (s *DB) UpsertOTPSecrets(ctx context.Context, in entity.OTPSecrets) (err error) {
	ctx, span := s.startSpan(ctx, "UpsertOTPSecrets")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, upsertOTPSecrets,
		in.UserID, in.Auth, in.ResetPassword, in.Transactions, in.Logout)
	return s.mapError(err)
}

// RotateOTPSecret replaces a single purpose's secret, leaving the others
// untouched.
func (s *DB) RotateOTPSecret(ctx context.Context, userID int64, purpose entity.Purpose, ciphertext []byte) (err error) {
	ctx, span := s.startSpan(ctx, "RotateOTPSecret")
	defer func() { s.endSpan(span, err) }()

	column := secretColumn(purpose)
	if column == "" {
		return entity.ErrPurposeUnknown
	}

	query := fmt.Sprintf("update auth_otp_secrets set %s = $1, updated_at = now() where user_id = $2", column)
	tag, err := s.conn.Exec(ctx, query, ciphertext, userID)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}
	return nil
}

const deleteOTPSecrets = `delete from auth_otp_secrets where user_id = $1`

func (s *DB) DeleteOTPSecrets(ctx context.Context, userID int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteOTPSecrets")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, deleteOTPSecrets, userID)
	return s.mapError(err)
}

const updateUserProfile = `
update auth_user_profiles set
	first_name = $2, last_name = $3, phone = $4, gender = $5, type = $6,
	address = $7, city = $8, state = $9, zipcode = $10, country = $11,
	business = $12, business_id = $13
where user_id = $1`

func (s *DB) UpdateUserProfile(ctx context.Context, in entity.UserProfile) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserProfile")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, updateUserProfile,
		in.UserID, in.FirstName, in.LastName, in.Phone, string(in.Gender), string(in.Type),
		in.Address, in.City, in.State, in.Zipcode, in.Country, in.Business, in.BusinessID)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}
	return nil
}

// revokeRefreshToken is a compare-and-swap: zero rows means the token is
// unknown or already revoked. Revocation is never reversible.
const revokeRefreshToken = `
update auth_refresh_tokens set revoked = true
where token_hash = $1 and revoked = false`

func (s *DB) RevokeRefreshToken(ctx context.Context, tokenHash string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "RevokeRefreshToken")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, revokeRefreshToken, tokenHash)
	if err != nil {
		return false, s.mapError(err)
	}
	return tag.RowsAffected() > 0, nil
}

// revokeAllRefreshTokens blacklists every token outstanding at query time.
// Re-running is idempotent; already revoked rows are skipped by the filter.
const revokeAllRefreshTokens = `
update auth_refresh_tokens set revoked = true
where user_id = $1 and revoked = false`

func (s *DB) RevokeAllRefreshTokens(ctx context.Context, userID int64) (err error) {
	ctx, span := s.startSpan(ctx, "RevokeAllRefreshTokens")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, revokeAllRefreshTokens, userID)
	return s.mapError(err)
}
