package app

import (
	"log/slog"
	"os"

	"github.com/ademolaidowu/gezapay/internal/auth"
	"github.com/ademolaidowu/gezapay/internal/notification"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.auth.enabled") {
		if err := auth.New(auth.Dependency{
			DBConn:     a.dbConn,
			Enforcer:   a.casbin,
			Router:     a.router,
			Messaging:  a.messaging,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			OID:        a.oid,
			HMAC:       a.hmac,
			Password:   a.password,
			Encryptor:  a.encryptor,
			Clock:      a.clock,
			Totp:       a.totp,
			Validator:  a.validator,
			JWT:        a.jwt,
		}); err != nil {
			slog.Error("failed to init module auth", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			Ctx:         a.ctx,
			Messaging:   a.messaging,
			Config:      a.config,
			Instrument:  a.ins,
			UUID:        a.uuid,
			Goroutine:   a.goroutine,
			Validator:   a.validator,
			Mail:        a.mail,
			Idempotency: a.idemp,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}
}
