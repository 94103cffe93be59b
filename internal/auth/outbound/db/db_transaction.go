package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/ademolaidowu/gezapay/internal/auth/entity"
)

const createUser = `
insert into auth_users (id, email, password, is_confirmed, is_active, created_at)
values ($1, $2, $3, false, false, now())`

const createUserProfile = `
insert into auth_user_profiles (user_id) values ($1)`

// CreateRegistration writes the user, its empty profile row, and the seeded
// secret record in one transaction. Every account has exactly one profile
// and a fully populated secret record before first use.
func (s *DB) CreateRegistration(ctx context.Context, in entity.NewRegistration) (err error) {
	ctx, span := s.startSpan(ctx, "CreateRegistration")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback", "error", rErr)
		}
	}()

	if _, err = tx.Exec(ctx, createUser, in.User.ID, in.User.Email, in.User.Password); err != nil {
		return s.mapError(err)
	}

	if _, err = tx.Exec(ctx, createUserProfile, in.User.ID); err != nil {
		return s.mapError(err)
	}

	if _, err = tx.Exec(ctx, upsertOTPSecrets,
		in.User.ID, in.Secrets.Auth, in.Secrets.ResetPassword,
		in.Secrets.Transactions, in.Secrets.Logout); err != nil {
		return s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}

// markOTPCodeVerified is the single-use compare-and-swap: under concurrent
// submissions of the same code, exactly one update reports a row.
const markOTPCodeVerified = `
update auth_otp_codes set is_verified = true
where id = $1 and is_verified = false`

const confirmUser = `
update auth_users set is_confirmed = true, is_active = true
where id = $1`

// VerifyRegistration marks the OTP row verified and confirms the account in
// one transaction. It returns false when another request already won the
// compare-and-swap; the transaction is then rolled back.
func (s *DB) VerifyRegistration(ctx context.Context, in entity.VerifyRegistration) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "VerifyRegistration")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback", "error", rErr)
		}
	}()

	tag, err := tx.Exec(ctx, markOTPCodeVerified, in.CodeID)
	if err != nil {
		return false, s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err = tx.Exec(ctx, confirmUser, in.UserID); err != nil {
		return false, s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return false, s.mapError(err)
	}

	return true, nil
}

// MarkOTPCodeVerified applies the same compare-and-swap outside a
// registration context, for purposes that do not touch account flags.
func (s *DB) MarkOTPCodeVerified(ctx context.Context, codeID int64) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "MarkOTPCodeVerified")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, markOTPCodeVerified, codeID)
	if err != nil {
		return false, s.mapError(err)
	}
	return tag.RowsAffected() > 0, nil
}
