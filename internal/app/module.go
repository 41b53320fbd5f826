package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/gomarket/internal/audit"
	"github.com/shandysiswandi/gomarket/internal/identity"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.identity.enabled") {
		if err := identity.New(identity.Dependency{
			Ctx:           a.ctx,
			DBConn:        a.dbConn,
			Goroutine:     a.goroutine,
			Router:        a.router,
			Messaging:     a.messaging,
			Mail:          a.mail,
			SMS:           a.sms,
			OTPStore:      a.otpStore,
			OTPGenerator:  a.otpGenerator,
			Cooldown:      a.cooldown,
			SessionCookie: a.sessionCookie,
			Config:        a.config,
			Instrument:    a.ins,
			UID:           a.uid,
			HMAC:          a.hmac,
			Bcrypt:        a.bcrypt,
			Clock:         a.clock,
			Validator:     a.validator,
			JWT:           a.jwt,
		}); err != nil {
			slog.Error("failed to init module identity", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.audit.enabled") {
		if err := audit.New(audit.Dependency{
			Ctx:        a.ctx,
			DBConn:     a.dbConn,
			Messaging:  a.messaging,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			Clock:      a.clock,
			Goroutine:  a.goroutine,
			Validator:  a.validator,
			Router:     a.router,
		}); err != nil {
			slog.Error("failed to init module audit", "error", err)
			os.Exit(1)
		}
	}
}
