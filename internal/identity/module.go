package identity

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/gomarket/internal/identity/inbound"
	"github.com/shandysiswandi/gomarket/internal/identity/outbound/db"
	"github.com/shandysiswandi/gomarket/internal/identity/outbound/delivery"
	"github.com/shandysiswandi/gomarket/internal/identity/outbound/mq"
	"github.com/shandysiswandi/gomarket/internal/identity/usecase"
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

type Dependency struct {
	Ctx           context.Context            `validate:"required"`
	DBConn        *pgxpool.Pool              `validate:"required"`
	Goroutine     *goroutine.Manager         `validate:"required"`
	Router        *router.Router             `validate:"required"`
	Messaging     messaging.Messaging        `validate:"required"`
	Mail          mail.Mail                  `validate:"required"`
	SMS           sms.Sender                 `validate:"required"`
	OTPStore      otp.Store                  `validate:"required"`
	OTPGenerator  *otp.Generator             `validate:"required"`
	Cooldown      cooldown.Cooldown          `validate:"required"`
	SessionCookie *session.Cookie            `validate:"required"`
	Config        config.Config              `validate:"required"`
	Instrument    instrument.Instrumentation `validate:"required"`
	UID           uid.NumberID               `validate:"required"`
	HMAC          hash.Hash                  `validate:"required"`
	Bcrypt        hash.Hash                  `validate:"required"`
	Clock         clock.Clocker              `validate:"required"`
	Validator     validator.Validator        `validate:"required"`
	JWT           jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbIdentity := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Clock, dep.Instrument)
	repoDelivery := delivery.New(dep.Mail, dep.SMS, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbIdentity,
		RepoMessaging: repoMsg,
		RepoDelivery:  repoDelivery,
		OTPStore:      dep.OTPStore,
		OTPGenerator:  dep.OTPGenerator,
		Cooldown:      dep.Cooldown,
		Validator:     dep.Validator,
		Config:        dep.Config,
		HMAC:          dep.HMAC,
		Bcrypt:        dep.Bcrypt,
		UID:           dep.UID,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, inbound.HTTPConfig{
		Cookie: dep.SessionCookie,
		Clock:  dep.Clock,
		OTPLimiter: router.NewRateLimiter(
			dep.Config.GetInt("modules.identity.rate_limit.otp_per_minute"),
			dep.Config.GetInt("modules.identity.rate_limit.otp_burst"),
			dep.Clock,
		),
		LoginLimiter: router.NewRateLimiter(
			dep.Config.GetInt("modules.identity.rate_limit.login_per_minute"),
			dep.Config.GetInt("modules.identity.rate_limit.login_burst"),
			dep.Clock,
		),
	})

	if email := dep.Config.GetString("modules.identity.bootstrap_admin.email"); email != "" {
		if err := uc.BootstrapAdmin(dep.Ctx, usecase.BootstrapAdminInput{
			Email:    email,
			Password: dep.Config.GetString("modules.identity.bootstrap_admin.password"),
		}); err != nil {
			return err
		}
	}

	if every := dep.Config.GetSecond("modules.identity.otp.sweep_interval_seconds"); every > 0 {
		dep.Goroutine.Go(dep.Ctx, func(ctx context.Context) error {
			return sweep(ctx, dep.OTPStore, every)
		})
	}

	return nil
}

// sweep drops expired codes until ctx is done. Expired codes are already
// rejected on read; this only bounds memory.
func sweep(ctx context.Context, store otp.Store, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := store.Sweep(ctx)
			if err != nil {
				slog.WarnContext(ctx, "failed to sweep expired otp codes", "error", err)
				continue
			}
			if n > 0 {
				slog.DebugContext(ctx, "swept expired otp codes", "count", n)
			}
		}
	}
}
