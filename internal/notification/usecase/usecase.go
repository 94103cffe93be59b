package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/trace"

	"github.com/ademolaidowu/gezapay/internal/pkg/config"
	"github.com/ademolaidowu/gezapay/internal/pkg/idempotency"
	"github.com/ademolaidowu/gezapay/internal/pkg/instrument"
	"github.com/ademolaidowu/gezapay/internal/pkg/mail"
	"github.com/ademolaidowu/gezapay/internal/pkg/validator"
)

type repoMail interface {
	Send(ctx context.Context, msg mail.Message) error
}

type Usecase struct {
	cfg       config.Config
	validator validator.Validator
	repoMail  repoMail
	idem      idempotency.Idempotency
	ins       instrument.Instrumentation
}

type Dependency struct {
	Config      config.Config
	Validator   validator.Validator
	RepoMail    repoMail
	Idempotency idempotency.Idempotency
	Instrument  instrument.Instrumentation
}

func NewNotification(dep Dependency) *Usecase {
	return &Usecase{
		cfg:       dep.Config,
		validator: dep.Validator,
		repoMail:  dep.RepoMail,
		idem:      dep.Idempotency,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

// deliverOnce sends the email exactly once per event. Duplicate deliveries of
// the same event (broker redelivery, competing workers) are dropped, transient
// SMTP failures are retried with fibonacci backoff before the message is
// handed back to the broker.
func (s *Usecase) deliverOnce(ctx context.Context, eventID string, msg mail.Message) error {
	err := s.idem.Exec(ctx, eventID, func(ctx context.Context) error {
		backoff := retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))
		return retry.Do(ctx, backoff, func(ctx context.Context) error {
			if err := s.repoMail.Send(ctx, msg); err != nil {
				return retry.RetryableError(err)
			}
			return nil
		})
	}, idempotency.WithStateTTL(24*time.Hour))

	switch {
	case errors.Is(err, idempotency.ErrAlreadyCompleted), errors.Is(err, idempotency.ErrAlreadyInProgress):
		slog.WarnContext(ctx, "skipping duplicate notification delivery", "event_id", eventID, "state", err)
		return nil
	case err != nil:
		return err
	default:
		return nil
	}
}
