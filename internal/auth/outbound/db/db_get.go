package db

import (
	"context"

	"github.com/ademolaidowu/gezapay/internal/auth/entity"
)

const getUserByEmail = `
select id, email, password, is_confirmed, is_active, created_at
from auth_users
where lower(email) = lower($1)`

func (s *DB) GetUserByEmail(ctx context.Context, email string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByEmail")
	defer func() { s.endSpan(span, err) }()

	var u entity.User
	err = s.conn.QueryRow(ctx, getUserByEmail, email).
		Scan(&u.ID, &u.Email, &u.Password, &u.IsConfirmed, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &u, nil
}

const getUserByID = `
select id, email, password, is_confirmed, is_active, created_at
from auth_users
where id = $1`

func (s *DB) GetUserByID(ctx context.Context, id int64) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { s.endSpan(span, err) }()

	var u entity.User
	err = s.conn.QueryRow(ctx, getUserByID, id).
		Scan(&u.ID, &u.Email, &u.Password, &u.IsConfirmed, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &u, nil
}

const getOTPSecrets = `
select user_id, auth_secret, reset_password_secret, transactions_secret, logout_secret
from auth_otp_secrets
where user_id = $1`

func (s *DB) GetOTPSecrets(ctx context.Context, userID int64) (_ *entity.OTPSecrets, err error) {
	ctx, span := s.startSpan(ctx, "GetOTPSecrets")
	defer func() { s.endSpan(span, err) }()

	var sec entity.OTPSecrets
	err = s.conn.QueryRow(ctx, getOTPSecrets, userID).
		Scan(&sec.UserID, &sec.Auth, &sec.ResetPassword, &sec.Transactions, &sec.Logout)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &sec, nil
}

// getLatestOTPCode relies on the append-only ledger: the newest row per
// (user, purpose) is the only verification candidate.
const getLatestOTPCode = `
select id, user_id, purpose, code, is_verified, created_at
from auth_otp_codes
where user_id = $1 and purpose = $2
order by created_at desc, id desc
limit 1`

func (s *DB) GetLatestOTPCode(ctx context.Context, userID int64, purpose entity.Purpose) (_ *entity.OTPCode, err error) {
	ctx, span := s.startSpan(ctx, "GetLatestOTPCode")
	defer func() { s.endSpan(span, err) }()

	var c entity.OTPCode
	err = s.conn.QueryRow(ctx, getLatestOTPCode, userID, purpose.String()).
		Scan(&c.ID, &c.UserID, &c.Purpose, &c.Code, &c.IsVerified, &c.CreatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &c, nil
}

const getUserRefreshToken = `
select u.id, u.email, u.is_confirmed, u.is_active, rt.id, rt.revoked, rt.expires_at
from auth_refresh_tokens rt
join auth_users u on u.id = rt.user_id
where rt.token_hash = $1`

func (s *DB) GetUserRefreshToken(ctx context.Context, tokenHash string) (_ *entity.UserRefreshToken, err error) {
	ctx, span := s.startSpan(ctx, "GetUserRefreshToken")
	defer func() { s.endSpan(span, err) }()

	var rt entity.UserRefreshToken
	err = s.conn.QueryRow(ctx, getUserRefreshToken, tokenHash).
		Scan(&rt.UserID, &rt.UserEmail, &rt.UserIsConfirmed, &rt.UserIsActive,
			&rt.RefreshID, &rt.Revoked, &rt.ExpiresAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &rt, nil
}
