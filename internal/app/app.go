package app

import (
	"context"
	"net/http"

	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ademolaidowu/gezapay/internal/pkg/clock"
	"github.com/ademolaidowu/gezapay/internal/pkg/config"
	"github.com/ademolaidowu/gezapay/internal/pkg/cryptor"
	"github.com/ademolaidowu/gezapay/internal/pkg/goroutine"
	"github.com/ademolaidowu/gezapay/internal/pkg/hash"
	"github.com/ademolaidowu/gezapay/internal/pkg/idempotency"
	"github.com/ademolaidowu/gezapay/internal/pkg/instrument"
	"github.com/ademolaidowu/gezapay/internal/pkg/jwt"
	"github.com/ademolaidowu/gezapay/internal/pkg/mail"
	"github.com/ademolaidowu/gezapay/internal/pkg/messaging"
	"github.com/ademolaidowu/gezapay/internal/pkg/otp"
	"github.com/ademolaidowu/gezapay/internal/pkg/router"
	"github.com/ademolaidowu/gezapay/internal/pkg/uid"
	"github.com/ademolaidowu/gezapay/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	password  hash.Hash
	uid       uid.NumberID
	oid       uid.StringID
	uuid      uid.StringID
	totp      otp.OTP
	jwt       jwt.JWT
	encryptor cryptor.Encryptor

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	mail      mail.Mail
	messaging messaging.Messaging
	casbin    *casbin.Enforcer

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initMessaging()
	app.initCasbin()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
