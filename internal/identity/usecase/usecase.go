package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shandysiswandi/gomarket/internal/identity/entity"
	"github.com/shandysiswandi/gomarket/internal/pkg/clock"
	"github.com/shandysiswandi/gomarket/internal/pkg/config"
	"github.com/shandysiswandi/gomarket/internal/pkg/cooldown"
	"github.com/shandysiswandi/gomarket/internal/pkg/goerror"
	"github.com/shandysiswandi/gomarket/internal/pkg/hash"
	"github.com/shandysiswandi/gomarket/internal/pkg/instrument"
	"github.com/shandysiswandi/gomarket/internal/pkg/jwt"
	"github.com/shandysiswandi/gomarket/internal/pkg/otp"
	"github.com/shandysiswandi/gomarket/internal/pkg/uid"
	"github.com/shandysiswandi/gomarket/internal/pkg/validator"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultOTPTTL         = 5 * time.Minute
	defaultOTPMaxAttempts = 5
	defaultResendCooldown = 30 * time.Second
)

type OTPIssuedEvent struct {
	Identifier string
	Channel    entity.Channel
	IP         string
	ExpiresAt  time.Time
}

type OTPVerificationEvent struct {
	Identifier string
	Outcome    otp.Outcome
	UserID     int64
	IP         string
}

type SessionStartedEvent struct {
	UserID     int64
	Identifier string
	Role       entity.Role
	Method     string
	NewUser    bool
	IP         string
}

// CodeDelivery is a plaintext code on its way to the user. It must never be logged.
type CodeDelivery struct {
	Channel entity.Channel
	To      string
	Code    string
	TTL     time.Duration
}

type repoMessaging interface {
	PublishOTPIssued(ctx context.Context, msg OTPIssuedEvent) error
	PublishOTPVerification(ctx context.Context, msg OTPVerificationEvent) error
	PublishSessionStarted(ctx context.Context, msg SessionStartedEvent) error
}

type repoDelivery interface {
	SendCode(ctx context.Context, in CodeDelivery) error
}

type repoDB interface {
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*entity.User, error)
	GetUserList(ctx context.Context, filter entity.UserListFilter) ([]entity.User, int64, error)

	CreateUser(ctx context.Context, user entity.User) error
	UpdateUserStatus(ctx context.Context, id int64, status entity.UserStatus) error
	UpdateUserRole(ctx context.Context, id int64, role entity.Role) error
	UpdateUserLastLogin(ctx context.Context, id int64, at time.Time) error
}

type codeGenerator interface {
	Generate() (string, error)
	Length() int
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	repoDelivery  repoDelivery
	otpStore      otp.Store
	otpGenerator  codeGenerator
	cooldown      cooldown.Cooldown
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	bcrypt        hash.Hash
	uid           uid.NumberID
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation

	dummyOnce sync.Once
	dummyHash string

	otpIssued   metric.Int64Counter
	otpVerified metric.Int64Counter
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	RepoDelivery  repoDelivery
	OTPStore      otp.Store
	OTPGenerator  codeGenerator
	Cooldown      cooldown.Cooldown
	Validator     validator.Validator
	Config        config.Config
	HMAC          hash.Hash
	Bcrypt        hash.Hash
	UID           uid.NumberID
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	s := &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		repoDelivery:  dep.RepoDelivery,
		otpStore:      dep.OTPStore,
		otpGenerator:  dep.OTPGenerator,
		cooldown:      dep.Cooldown,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		bcrypt:        dep.Bcrypt,
		uid:           dep.UID,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
	}

	meter := s.ins.Meter("identity.usecase")

	var err error
	s.otpIssued, err = meter.Int64Counter("identity.otp.issued", metric.WithDescription("One-time codes issued"))
	if err != nil {
		slog.Error("failed to create otp issued counter", "error", err)
	}
	s.otpVerified, err = meter.Int64Counter("identity.otp.verified", metric.WithDescription("One-time code verification attempts by outcome"))
	if err != nil {
		slog.Error("failed to create otp verified counter", "error", err)
	}

	return s
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

func (s *Usecase) otpTTL() time.Duration {
	if ttl := s.cfg.GetSecond("modules.identity.otp.ttl_seconds"); ttl > 0 {
		return ttl
	}
	return defaultOTPTTL
}

// otpMaxAttempts reads the failed-attempt budget. Unset means the default,
// a negative value disables the budget.
func (s *Usecase) otpMaxAttempts() int {
	n := s.cfg.GetInt("modules.identity.otp.max_attempts")
	switch {
	case n < 0:
		return 0
	case n == 0:
		return defaultOTPMaxAttempts
	default:
		return n
	}
}

// otpResendCooldown is the quiet window between two codes for one identifier.
// A negative value disables it.
func (s *Usecase) otpResendCooldown() time.Duration {
	d := s.cfg.GetSecond("modules.identity.otp.resend_cooldown_seconds")
	switch {
	case d < 0:
		return 0
	case d == 0:
		return defaultResendCooldown
	default:
		return d
	}
}

// codeDigest binds the code to its identifier so equal codes issued to two
// identifiers never share a digest.
func (s *Usecase) codeDigest(identifier, code string) (string, error) {
	digest, err := s.hmac.Hash(identifier + ":" + code)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (s *Usecase) ensureUserStatusAllowed(ctx context.Context, user *entity.User) error {
	err := user.Status.CanSignIn()
	switch {
	case err == nil:
		return nil

	case errors.Is(err, entity.ErrUserStatusBanned):
		slog.WarnContext(ctx, "user account is banned", "user_id", user.ID)
		return goerror.NewBusiness("account is banned", goerror.CodeForbidden)

	case errors.Is(err, entity.ErrUserStatusInactive):
		slog.WarnContext(ctx, "user account is inactive", "user_id", user.ID)
		return goerror.NewBusiness("account is inactive", goerror.CodeForbidden)

	default:
		slog.WarnContext(ctx, "user account status is unrecognized", "user_id", user.ID, "status", user.Status)
		return goerror.NewBusiness("account status is unrecognized", goerror.CodeForbidden)
	}
}

// SessionOutput is a freshly minted session credential.
type SessionOutput struct {
	UserID    int64
	Role      entity.Role
	Token     string
	ExpiresAt time.Time
	NewUser   bool
}

func (s *Usecase) startSession(ctx context.Context, user *entity.User, method, ip string, newUser bool) (*SessionOutput, error) {
	token, expiresAt, err := s.jwt.Generate(user.ID, user.Role.String())
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate session token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoDB.UpdateUserLastLogin(ctx, user.ID, s.clock.Now()); err != nil {
		slog.WarnContext(ctx, "failed to repo update last login", "user_id", user.ID, "error", err)
	}

	if err := s.repoMessaging.PublishSessionStarted(ctx, SessionStartedEvent{
		UserID:     user.ID,
		Identifier: entity.MaskIdentifier(user.Identifier()),
		Role:       user.Role,
		Method:     method,
		NewUser:    newUser,
		IP:         ip,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish session started", "user_id", user.ID, "error", err)
	}

	return &SessionOutput{
		UserID:    user.ID,
		Role:      user.Role,
		Token:     token,
		ExpiresAt: expiresAt,
		NewUser:   newUser,
	}, nil
}
