package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/gomarket/internal/identity/entity"
	"github.com/shandysiswandi/gomarket/internal/pkg/clock"
	"github.com/shandysiswandi/gomarket/internal/pkg/config"
	"github.com/shandysiswandi/gomarket/internal/pkg/cooldown"
	"github.com/shandysiswandi/gomarket/internal/pkg/goerror"
	"github.com/shandysiswandi/gomarket/internal/pkg/hash"
	"github.com/shandysiswandi/gomarket/internal/pkg/instrument"
	"github.com/shandysiswandi/gomarket/internal/pkg/jwt"
	"github.com/shandysiswandi/gomarket/internal/pkg/otp"
	"github.com/shandysiswandi/gomarket/internal/pkg/validator"
)

var testStart = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

type fakeDB struct {
	mu        sync.Mutex
	users     map[int64]entity.User
	createErr error
	getErr    error
	// raceWinner is inserted by CreateUser just before it reports a conflict.
	raceWinner *entity.User
	lastFilter entity.UserListFilter
}

func newFakeDB(users ...entity.User) *fakeDB {
	f := &fakeDB{users: map[int64]entity.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeDB) find(match func(entity.User) bool) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (f *fakeDB) GetUserByID(_ context.Context, id int64) (*entity.User, error) {
	return f.find(func(u entity.User) bool { return u.ID == id })
}

func (f *fakeDB) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	return f.find(func(u entity.User) bool { return u.Email != "" && u.Email == email })
}

func (f *fakeDB) GetUserByPhone(_ context.Context, phone string) (*entity.User, error) {
	return f.find(func(u entity.User) bool { return u.Phone != "" && u.Phone == phone })
}

func (f *fakeDB) GetUserList(_ context.Context, filter entity.UserListFilter) ([]entity.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastFilter = filter
	var out []entity.User
	for _, u := range f.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeDB) CreateUser(_ context.Context, user entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.raceWinner != nil {
		f.users[f.raceWinner.ID] = *f.raceWinner
		return goerror.ErrConflict
	}
	if f.createErr != nil {
		return f.createErr
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeDB) update(id int64, fn func(*entity.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return goerror.ErrNotFound
	}
	fn(&u)
	f.users[id] = u
	return nil
}

func (f *fakeDB) UpdateUserStatus(_ context.Context, id int64, status entity.UserStatus) error {
	return f.update(id, func(u *entity.User) { u.Status = status })
}

func (f *fakeDB) UpdateUserRole(_ context.Context, id int64, role entity.Role) error {
	return f.update(id, func(u *entity.User) { u.Role = role })
}

func (f *fakeDB) UpdateUserLastLogin(_ context.Context, id int64, at time.Time) error {
	return f.update(id, func(u *entity.User) { u.LastLoginAt = &at })
}

type fakeMessaging struct {
	mu           sync.Mutex
	issued       []OTPIssuedEvent
	verification []OTPVerificationEvent
	sessions     []SessionStartedEvent
}

func (f *fakeMessaging) PublishOTPIssued(_ context.Context, msg OTPIssuedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued = append(f.issued, msg)
	return nil
}

func (f *fakeMessaging) PublishOTPVerification(_ context.Context, msg OTPVerificationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verification = append(f.verification, msg)
	return nil
}

func (f *fakeMessaging) PublishSessionStarted(_ context.Context, msg SessionStartedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, msg)
	return nil
}

type fakeDelivery struct {
	mu   sync.Mutex
	sent []CodeDelivery
	err  error
}

func (f *fakeDelivery) SendCode(_ context.Context, in CodeDelivery) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, in)
	return nil
}

func (f *fakeDelivery) last(t *testing.T) CodeDelivery {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "no code delivered")
	return f.sent[len(f.sent)-1]
}

type sequenceID struct {
	mu   sync.Mutex
	next int64
}

func (s *sequenceID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

type fixedUUID string

func (f fixedUUID) Generate() string { return string(f) }

// countingHash records how many password compares ran.
type countingHash struct {
	*hash.Bcrypt
	verifies atomic.Int32
}

func (c *countingHash) Verify(hashed, str string) bool {
	c.verifies.Add(1)
	return c.Bcrypt.Verify(hashed, str)
}

type fixture struct {
	uc       *Usecase
	db       *fakeDB
	msg      *fakeMessaging
	delivery *fakeDelivery
	store    *otp.MemoryStore
	clock    *clock.Manual
	jwt      *jwt.Symmetric
	bcrypt   *countingHash
}

func newFixture(t *testing.T, cfgYAML string, users ...entity.User) *fixture {
	t.Helper()

	clk := clock.NewManual(testStart)

	cfg, err := config.NewViperFromBytes("yaml", []byte(cfgYAML))
	require.NoError(t, err)

	v, err := validator.NewV10Validator(
		validator.WithEnum("role", entity.Roles()...),
		validator.WithEnum("user_status", entity.UserStatuses()...),
	)
	require.NoError(t, err)

	signer, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("usecase-test-", 6)),
		Issuer:    "gomarket",
		Audiences: []string{"gomarket-web"},
		TTL:       time.Hour,
		Clock:     clk,
		UUID:      fixedUUID("0196f2d4-0000-7000-8000-000000000001"),
	})
	require.NoError(t, err)

	f := &fixture{
		db:       newFakeDB(users...),
		msg:      &fakeMessaging{},
		delivery: &fakeDelivery{},
		store:    otp.NewMemoryStore(clk),
		clock:    clk,
		jwt:      signer,
		bcrypt:   &countingHash{Bcrypt: hash.NewBcrypt(4, "")},
	}

	f.uc = New(Dependency{
		RepoDB:        f.db,
		RepoMessaging: f.msg,
		RepoDelivery:  f.delivery,
		OTPStore:      f.store,
		OTPGenerator:  otp.NewGenerator(6),
		Cooldown:      cooldown.NewMemory(clk),
		Validator:     v,
		Config:        cfg,
		HMAC:          hash.NewHMACSHA256("otp-digest-secret"),
		Bcrypt:        f.bcrypt,
		UID:           &sequenceID{next: 1000},
		Clock:         clk,
		JWT:           signer,
		Instrument:    instrument.NewNoop(),
	})

	return f
}

func requireCode(t *testing.T, err error, code goerror.Code) {
	t.Helper()

	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr), "expected *goerror.Error, got %v", err)
	require.Equal(t, code, gerr.Code(), "message: %s", gerr.Msg())
}

func withClaims(ctx context.Context, userID int64, role entity.Role) context.Context {
	return jwt.SetAuth(ctx, jwt.Claims{UserID: userID, Role: role.String()})
}
