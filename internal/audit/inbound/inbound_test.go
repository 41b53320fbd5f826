package inbound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/gomarket/internal/audit/entity"
	"github.com/shandysiswandi/gomarket/internal/audit/usecase"
	"github.com/shandysiswandi/gomarket/internal/pkg/clock"
	"github.com/shandysiswandi/gomarket/internal/pkg/config"
	"github.com/shandysiswandi/gomarket/internal/pkg/goroutine"
	"github.com/shandysiswandi/gomarket/internal/pkg/instrument"
	"github.com/shandysiswandi/gomarket/internal/pkg/jwt"
	"github.com/shandysiswandi/gomarket/internal/pkg/messaging"
	"github.com/shandysiswandi/gomarket/internal/pkg/router"
	"github.com/shandysiswandi/gomarket/internal/pkg/uid"
	"github.com/shandysiswandi/gomarket/internal/shared/event"
)

type recorder struct {
	mu       sync.Mutex
	issued   []usecase.ConsumeOTPIssuedInput
	verified []usecase.ConsumeOTPVerificationInput
	sessions []usecase.ConsumeSessionStartedInput
	cIDs     []string
	list     usecase.LogListInput
}

func (r *recorder) ConsumeOTPIssued(ctx context.Context, in usecase.ConsumeOTPIssuedInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issued = append(r.issued, in)
	r.cIDs = append(r.cIDs, instrument.GetCorrelationID(ctx))
	return nil
}

func (r *recorder) ConsumeOTPVerification(_ context.Context, in usecase.ConsumeOTPVerificationInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verified = append(r.verified, in)
	return nil
}

func (r *recorder) ConsumeSessionStarted(_ context.Context, in usecase.ConsumeSessionStartedInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, in)
	return nil
}

func (r *recorder) LogList(_ context.Context, in usecase.LogListInput) (*usecase.LogListOutput, error) {
	r.mu.Lock()
	r.list = in
	r.mu.Unlock()

	return &usecase.LogListOutput{
		Page:  1,
		Size:  20,
		Total: 1,
		Logs: []entity.Log{{
			ID:         9,
			Event:      entity.EventSessionStarted,
			Identifier: "b***@market.example",
			Outcome:    "otp",
			UserID:     42,
		}},
	}, nil
}

func (r *recorder) counts() (int, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.issued), len(r.verified), len(r.sessions)
}

type fixedUUID string

func (f fixedUUID) Generate() string { return string(f) }

func TestMQConsumer(t *testing.T) {
	// Arrange
	cfg, err := config.NewViperFromBytes("yaml", []byte(`
modules:
  audit:
    consumer_names:
      - identity.otp.issued.audit
      - identity.otp.verification.audit
      - identity.session.started.audit
`))
	require.NoError(t, err)

	bus := messaging.NewMemory()
	rec := &recorder{}
	routine := goroutine.NewManager(10)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, routine.Wait())
	})

	RegisterMQConsumer(ctx, cfg, routine, bus, fixedUUID("generated"), rec, instrument.NewNoop())

	publish := func(subject string, payload any, headers ...messaging.Header) {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		_, err = bus.Publish(context.Background(), subject, messaging.OutgoingMessage{Body: body, Headers: headers})
		require.NoError(t, err)
	}

	// Act
	// Publishing before the consumers subscribe is dropped, so keep trying.
	require.Eventually(t, func() bool {
		publish(event.OTPIssuedDestination, event.OTPIssuedMessage{Identifier: "+91******9999", Channel: "sms"},
			messaging.Header{Key: keyOfCorrelationID, Value: []byte("cid-1")})
		publish(event.OTPVerificationDestination, event.OTPVerificationMessage{Identifier: "+91******9999", Outcome: "verified", UserID: 42})
		publish(event.SessionStartedDestination, event.SessionStartedMessage{UserID: 42, Identifier: "+91******9999", Method: "otp"})

		issued, verified, sessions := rec.counts()
		return issued > 0 && verified > 0 && sessions > 0
	}, 2*time.Second, 20*time.Millisecond)

	// Assert
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, "sms", rec.issued[0].Channel)
	assert.Equal(t, "cid-1", rec.cIDs[0])
	assert.Equal(t, "verified", rec.verified[0].Outcome)
	assert.Equal(t, int64(42), rec.verified[0].UserID)
	assert.Equal(t, "otp", rec.sessions[0].Method)
}

func TestMQHandlerMalformedBody(t *testing.T) {
	rec := &recorder{}
	h := &MQHandler{uc: rec, uuid: fixedUUID("generated"), ins: instrument.NewNoop()}

	err := h.SessionStarted(context.Background(), stubMessage("{not json"))

	require.NoError(t, err, "malformed bodies are acked")
	_, _, sessions := rec.counts()
	assert.Zero(t, sessions)
}

type stubMessage string

func (m stubMessage) Body() []byte                { return []byte(m) }
func (m stubMessage) Headers() []messaging.Header { return nil }
func (m stubMessage) Subject() string             { return event.SessionStartedDestination }
func (m stubMessage) Timestamp() time.Time        { return time.Time{} }
func (m stubMessage) Ack(context.Context) error   { return nil }
func (m stubMessage) Nack(context.Context) error  { return nil }

func TestLogListEndpoint(t *testing.T) {
	cfg, err := config.NewViperFromBytes("yaml", []byte("{}"))
	require.NoError(t, err)

	signer, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("audit-inbound-", 5)),
		Issuer:    "gomarket",
		Audiences: []string{"gomarket-web"},
		TTL:       time.Hour,
		Clock:     clock.New(),
		UUID:      uid.NewUUID(),
	})
	require.NoError(t, err)

	rec := &recorder{}
	r := router.NewRouter(router.Config{
		Config:     cfg,
		UUID:       uid.NewUUID(),
		JWT:        signer,
		Instrument: instrument.NewNoop(),
	})
	RegisterHTTPEndpoint(r, rec)

	get := func(t *testing.T, path, role string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if role != "" {
			token, _, err := signer.Generate(1, role)
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("Admin", func(t *testing.T) {
		w := get(t, "/api/v1/admin/audit-logs?event=session.started&user_id=42&page=1", "ADMIN")

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var env struct {
			Data LogListResponse `json:"data"`
			Meta map[string]any  `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		require.Len(t, env.Data.Logs, 1)
		assert.Equal(t, "session.started", env.Data.Logs[0].Event)
		assert.Equal(t, float64(1), env.Meta["total"])
		assert.Equal(t, "session.started", rec.list.Event)
		assert.Equal(t, int64(42), rec.list.UserID)
	})

	t.Run("BadUserID", func(t *testing.T) {
		w := get(t, "/api/v1/admin/audit-logs?user_id=abc", "ADMIN")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Buyer", func(t *testing.T) {
		w := get(t, "/api/v1/admin/audit-logs", "BUYER")

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Anonymous", func(t *testing.T) {
		w := get(t, "/api/v1/admin/audit-logs", "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
