package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	auditEntity "github.com/shandysiswandi/gomarket/internal/audit/entity"
	identityEntity "github.com/shandysiswandi/gomarket/internal/identity/entity"
	"github.com/shandysiswandi/gomarket/internal/pkg/clock"
	"github.com/shandysiswandi/gomarket/internal/pkg/config"
	"github.com/shandysiswandi/gomarket/internal/pkg/cooldown"
	"github.com/shandysiswandi/gomarket/internal/pkg/goroutine"
	"github.com/shandysiswandi/gomarket/internal/pkg/hash"
	"github.com/shandysiswandi/gomarket/internal/pkg/instrument"
	"github.com/shandysiswandi/gomarket/internal/pkg/jwt"
	"github.com/shandysiswandi/gomarket/internal/pkg/mail"
	"github.com/shandysiswandi/gomarket/internal/pkg/messaging"
	"github.com/shandysiswandi/gomarket/internal/pkg/migration"
	"github.com/shandysiswandi/gomarket/internal/pkg/otp"
	"github.com/shandysiswandi/gomarket/internal/pkg/router"
	"github.com/shandysiswandi/gomarket/internal/pkg/session"
	"github.com/shandysiswandi/gomarket/internal/pkg/sms"
	"github.com/shandysiswandi/gomarket/internal/pkg/uid"
	"github.com/shandysiswandi/gomarket/internal/pkg/validator"
	"github.com/shandysiswandi/gomarket/migrations"
)

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))
	a.hmac = hash.NewHMACSHA256(a.config.GetString("hash.hmac.secret"))
	a.bcrypt = hash.NewBcrypt(a.config.GetInt("hash.bcrypt.cost"), a.config.GetString("hash.bcrypt.pepper"))
	a.otpGenerator = otp.NewGenerator(a.config.GetInt("modules.identity.otp.length"))

	validator, err := validator.NewV10Validator(
		validator.WithEnum("role", identityEntity.Roles()...),
		validator.WithEnum("user_status", identityEntity.UserStatuses()...),
		validator.WithEnum("audit_event", auditEntity.Events()...),
	)
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	snow, err := uid.NewSnowflake(a.config.GetInt64("app.node_id"))
	if err != nil {
		slog.Error("failed to init uid number snowflake", "error", err)
		os.Exit(1)
	}
	a.uid = snow

	cookie, err := session.NewCookie(session.CookieConfig{
		Name:       a.config.GetString("session.cookie.name"),
		Path:       a.config.GetString("session.cookie.path"),
		Domain:     a.config.GetString("session.cookie.domain"),
		Secure:     a.config.GetBool("session.cookie.secure"),
		SameSite:   a.config.GetString("session.cookie.same_site"),
		Production: a.config.GetString("app.env") == "production",
	})
	if err != nil {
		slog.Error("failed to init session cookie", "error", err)
		os.Exit(1)
	}
	a.sessionCookie = cookie
}

func (a *App) initJWT() {
	defaultJWT, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(a.config.GetString("jwt.secret")),
		Issuer:    a.config.GetString("jwt.issuer"),
		Audiences: a.config.GetArray("jwt.audiences"),
		TTL:       a.config.GetMinute("jwt.ttl_minutes"),
		Clock:     a.clock,
		UUID:      a.uuid,
	})
	if err != nil {
		slog.Error("failed to init jwt token", "error", err)
		os.Exit(1)
	}
	a.jwt = defaultJWT
}

func (a *App) initDatabase() {
	dsn := a.config.GetString("database.url")

	if a.config.GetBool("database.migrate_on_start") {
		if err := migration.Up(dsn, migrations.FS, "."); err != nil {
			slog.Error("failed to run DB migrations", "error", err)
			os.Exit(1)
		}
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		slog.Error("failed to parse DB connection string.", "error", err)
		os.Exit(1)
	}

	config.MaxConns = a.config.GetInt32("database.pool.max_conns")
	config.MinConns = a.config.GetInt32("database.pool.min_conns")
	config.MaxConnLifetime = a.config.GetSecond("database.pool.max_conn_lifetime_seconds")
	config.MaxConnIdleTime = a.config.GetSecond("database.pool.max_conn_idle_seconds")
	config.HealthCheckPeriod = a.config.GetSecond("database.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(a.ctx, config)
	if err != nil {
		slog.Error("failed to create DB connection pool", "error", err)
		os.Exit(1)
	}

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		slog.Error("failed to ping DB", "error", err)
		os.Exit(1)
	}

	a.dbConn = pool
}

// initCache connects redis when redis.url is set. Without it the OTP store
// and cooldown stay in process, which only holds for a single instance.
func (a *App) initCache() {
	url := strings.TrimSpace(a.config.GetString("redis.url"))
	if url == "" {
		slog.Warn("redis.url is empty, falling back to in-process otp store and cooldown")
		return
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		slog.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("failed to init redis", "error", err)
		os.Exit(1)
	}

	a.cacheConn = rdb
}

func (a *App) initOTP() {
	driver := a.config.GetString("modules.identity.otp.driver")
	if driver == "" && a.cacheConn != nil {
		driver = otp.DriverRedis
	}

	store, err := otp.NewFromDriver(driver, otp.FactoryOptions{
		Clock: a.clock,
		Redis: a.cacheConn,
		RedisOptions: []otp.RedisOption{
			otp.WithPrefix(a.config.GetString("modules.identity.otp.redis_prefix")),
		},
	})
	if err != nil {
		slog.Error("failed to init otp store", "error", err, "driver", driver)
		os.Exit(1)
	}
	a.otpStore = store

	if a.cacheConn != nil {
		a.cooldown = cooldown.NewRedis(a.cacheConn)
	} else {
		a.cooldown = cooldown.NewMemory(a.clock)
	}
}

func (a *App) initMail() {
	driver := a.config.GetString("mail.driver")
	if driver == mail.DriverLog {
		a.mail = mail.NewLog()
		return
	}

	mail, err := mail.NewSMTP(mail.SMTPConfig{
		Host:     a.config.GetString("mail.host"),
		Port:     a.config.GetInt("mail.port"),
		Username: a.config.GetString("mail.username"),
		Password: a.config.GetString("mail.password"),
		From:     a.config.GetString("mail.from"),
	})
	if err != nil {
		slog.Error("failed to init mail", "error", err)
		os.Exit(1)
	}

	a.mail = mail
}

func (a *App) initSMS() {
	driver := a.config.GetString("sms.driver")
	if driver == sms.DriverLog {
		a.sms = sms.NewLog()
		return
	}

	gateway, err := sms.NewGateway(sms.GatewayConfig{
		URL:         a.config.GetString("sms.gateway.url"),
		APIKey:      a.config.GetString("sms.gateway.api_key"),
		SenderID:    a.config.GetString("sms.gateway.sender_id"),
		Timeout:     a.config.GetSecond("sms.gateway.timeout_seconds"),
		MaxRetries:  uint64(max(a.config.GetInt("sms.gateway.max_retries"), 0)),
		BaseBackoff: time.Duration(a.config.GetInt("sms.gateway.base_backoff_ms")) * time.Millisecond,
	})
	if err != nil {
		slog.Error("failed to init sms gateway", "error", err)
		os.Exit(1)
	}

	a.sms = gateway
}

func (a *App) initMessaging() {
	driver := a.config.GetString("messaging.driver")
	client, err := messaging.NewFromDriver(driver, messaging.FactoryOptions{
		NATS: messaging.NATSConfig{
			URL: a.config.GetString("messaging.nats.url"),
			Options: []nats.Option{
				nats.Name(a.config.GetString("messaging.nats.name")),
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(a.config.GetSecond("messaging.nats.timeout_seconds")),
				nats.ReconnectWait(a.config.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.PingInterval(a.config.GetSecond("messaging.nats.ping_interval_seconds")),
				nats.MaxPingsOutstanding(a.config.GetInt("messaging.nats.max_pings_outstanding")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
	})
	if err != nil {
		slog.Error("failed to init messaging", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.messaging = client
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:        a.config,
		UUID:          a.uuid,
		JWT:           a.jwt,
		Instrument:    a.ins,
		SessionCookie: a.sessionCookie.Name(),
	})
	a.router.GETRaw("/health", http.HandlerFunc(a.health))

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{instrument.CorrelationHeader},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Messaging",
			fn: func(context.Context) error {
				return a.messaging.Close()
			},
		},
		{
			name: "Mail",
			fn: func(context.Context) error {
				return a.mail.Close()
			},
		},
		{
			name: "Redis",
			fn: func(context.Context) error {
				if a.cacheConn == nil {
					return nil
				}
				return a.cacheConn.Close()
			},
		},
		{
			name: "Database",
			fn: func(context.Context) error {
				a.dbConn.Close()

				return nil
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
