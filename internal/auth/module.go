// Package auth wires the identity domain: registration with email OTP
// confirmation, per-purpose rotating secrets, and revocable token pairs.
package auth

import (
	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ademolaidowu/gezapay/internal/auth/inbound"
	"github.com/ademolaidowu/gezapay/internal/auth/outbound/db"
	"github.com/ademolaidowu/gezapay/internal/auth/outbound/mq"
	"github.com/ademolaidowu/gezapay/internal/auth/usecase"
	"github.com/ademolaidowu/gezapay/internal/pkg/clock"
	"github.com/ademolaidowu/gezapay/internal/pkg/config"
	"github.com/ademolaidowu/gezapay/internal/pkg/cryptor"
	"github.com/ademolaidowu/gezapay/internal/pkg/hash"
	"github.com/ademolaidowu/gezapay/internal/pkg/instrument"
	"github.com/ademolaidowu/gezapay/internal/pkg/jwt"
	"github.com/ademolaidowu/gezapay/internal/pkg/messaging"
	"github.com/ademolaidowu/gezapay/internal/pkg/otp"
	"github.com/ademolaidowu/gezapay/internal/pkg/router"
	"github.com/ademolaidowu/gezapay/internal/pkg/uid"
	"github.com/ademolaidowu/gezapay/internal/pkg/validator"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Enforcer   *casbin.Enforcer           `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	OID        uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Password   hash.Hash                  `validate:"required"`
	Encryptor  cryptor.Encryptor          `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Totp       otp.OTP                    `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbAuth := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbAuth,
		RepoMessaging: repoMsg,
		Validator:     dep.Validator,
		Config:        dep.Config,
		HMAC:          dep.HMAC,
		Password:      dep.Password,
		Encryptor:     dep.Encryptor,
		UID:           dep.UID,
		UUID:          dep.UUID,
		OID:           dep.OID,
		Totp:          dep.Totp,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
		Enforcer:      dep.Enforcer,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
