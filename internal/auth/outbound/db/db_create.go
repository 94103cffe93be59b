package db

import (
	"context"

	"github.com/ademolaidowu/gezapay/internal/auth/entity"
)

// createOTPCode always appends; prior unverified rows become unreachable
// because resolution targets the newest row only.
const createOTPCode = `
insert into auth_otp_codes (id, user_id, purpose, code, is_verified, created_at)
values ($1, $2, $3, $4, false, $5)`

func (s *DB) CreateOTPCode(ctx context.Context, in entity.OTPCode) (err error) {
	ctx, span := s.startSpan(ctx, "CreateOTPCode")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, createOTPCode, in.ID, in.UserID, in.Purpose.String(), in.Code, in.CreatedAt)
	return s.mapError(err)
}

const createRefreshToken = `
insert into auth_refresh_tokens (id, user_id, token_hash, revoked, expires_at, created_at)
values ($1, $2, $3, false, $4, $5)`

func (s *DB) CreateRefreshToken(ctx context.Context, in entity.RefreshToken) (err error) {
	ctx, span := s.startSpan(ctx, "CreateRefreshToken")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, createRefreshToken, in.ID, in.UserID, in.TokenHash, in.ExpiresAt, in.CreatedAt)
	return s.mapError(err)
}
