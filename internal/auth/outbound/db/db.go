// Package db is the pgx-backed repository for the auth domain.
package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ademolaidowu/gezapay/internal/auth/entity"
	"github.com/ademolaidowu/gezapay/internal/pkg/goerror"
	"github.com/ademolaidowu/gezapay/internal/pkg/instrument"
)

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, ins: ins}
}

func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// secretColumn maps a purpose to its column in auth_otp_secrets. The purpose
// enum is closed, so the column name never comes from user input.
func secretColumn(p entity.Purpose) string {
	switch p {
	case entity.PurposeAuth:
		return "auth_secret"
	case entity.PurposeResetPassword:
		return "reset_password_secret"
	case entity.PurposeTransactions:
		return "transactions_secret"
	case entity.PurposeLogout:
		return "logout_secret"
	default:
		return ""
	}
}
