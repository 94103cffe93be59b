// Package notification consumes domain events and delivers them as email.
package notification

import (
	"context"

	"github.com/ademolaidowu/gezapay/internal/notification/inbound"
	"github.com/ademolaidowu/gezapay/internal/notification/outbound/email"
	"github.com/ademolaidowu/gezapay/internal/notification/usecase"
	"github.com/ademolaidowu/gezapay/internal/pkg/config"
	"github.com/ademolaidowu/gezapay/internal/pkg/goroutine"
	"github.com/ademolaidowu/gezapay/internal/pkg/idempotency"
	"github.com/ademolaidowu/gezapay/internal/pkg/instrument"
	"github.com/ademolaidowu/gezapay/internal/pkg/mail"
	"github.com/ademolaidowu/gezapay/internal/pkg/messaging"
	"github.com/ademolaidowu/gezapay/internal/pkg/uid"
	"github.com/ademolaidowu/gezapay/internal/pkg/validator"
)

type Dependency struct {
	Ctx         context.Context
	Messaging   messaging.Messaging
	Config      config.Config
	Instrument  instrument.Instrumentation
	UUID        uid.StringID
	Goroutine   *goroutine.Manager
	Validator   validator.Validator
	Mail        mail.Mail
	Idempotency idempotency.Idempotency
}

func New(dep Dependency) error {
	repoMail := email.New(dep.Mail, dep.Instrument)

	uc := usecase.NewNotification(usecase.Dependency{
		Config:      dep.Config,
		Validator:   dep.Validator,
		RepoMail:    repoMail,
		Idempotency: dep.Idempotency,
		Instrument:  dep.Instrument,
	})

	if dep.Ctx != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)
	}

	return nil
}
