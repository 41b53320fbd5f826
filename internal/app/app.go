package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/gomarket/internal/pkg/clock"
	"github.com/shandysiswandi/gomarket/internal/pkg/config"
	"github.com/shandysiswandi/gomarket/internal/pkg/cooldown"
	"github.com/shandysiswandi/gomarket/internal/pkg/goroutine"
	"github.com/shandysiswandi/gomarket/internal/pkg/hash"
	"github.com/shandysiswandi/gomarket/internal/pkg/instrument"
	"github.com/shandysiswandi/gomarket/internal/pkg/jwt"
	"github.com/shandysiswandi/gomarket/internal/pkg/mail"
	"github.com/shandysiswandi/gomarket/internal/pkg/messaging"
	"github.com/shandysiswandi/gomarket/internal/pkg/otp"
	"github.com/shandysiswandi/gomarket/internal/pkg/router"
	"github.com/shandysiswandi/gomarket/internal/pkg/session"
	"github.com/shandysiswandi/gomarket/internal/pkg/sms"
	"github.com/shandysiswandi/gomarket/internal/pkg/uid"
	"github.com/shandysiswandi/gomarket/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine     *goroutine.Manager
	validator     validator.Validator
	clock         clock.Clocker
	hmac          hash.Hash
	bcrypt        hash.Hash
	uid           uid.NumberID
	uuid          uid.StringID
	jwt           jwt.JWT
	otpGenerator  *otp.Generator
	sessionCookie *session.Cookie

	// resources
	dbConn    *pgxpool.Pool
	cacheConn redis.UniversalClient
	otpStore  otp.Store
	cooldown  cooldown.Cooldown
	mail      mail.Mail
	sms       sms.Sender
	messaging messaging.Messaging

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
	app.initOTP()
	app.initMail()
	app.initSMS()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
