package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	// DriverGateway selects the HTTP gateway.
	DriverGateway = "gateway"
	// DriverLog selects the logging sender.
	DriverLog = "log"
)

var (
	// ErrAPIKeyRequired is returned when the gateway has no credentials.
	ErrAPIKeyRequired = errors.New("sms: api key is required")
	// ErrURLRequired is returned when the gateway URL is missing.
	ErrURLRequired = errors.New("sms: gateway url is required")
	// ErrNoRecipient is returned when the phone number is empty.
	ErrNoRecipient = errors.New("sms: recipient is required")
	// ErrRejected wraps a non-retryable gateway response.
	ErrRejected = errors.New("sms: gateway rejected message")
)

// Message is a single text message.
type Message struct {
	// To is an E.164 phone number.
	To   string
	Body string
}

// Sender delivers text messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// GatewayConfig configures the HTTP gateway client.
type GatewayConfig struct {
	URL      string
	APIKey   string
	SenderID string
	// Timeout bounds each attempt. Default 10s.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt. Default 3.
	MaxRetries uint64
	// BaseBackoff is the first retry delay. Default 200ms.
	BaseBackoff time.Duration
	HTTPClient  *http.Client
}

// Gateway posts messages as JSON to an SMS provider.
type Gateway struct {
	url        string
	apiKey     string
	senderID   string
	client     *http.Client
	maxRetries uint64
	backoff    time.Duration
}

var _ Sender = (*Gateway)(nil)

// NewGateway builds a Gateway client.
func NewGateway(cfg GatewayConfig) (*Gateway, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, ErrURLRequired
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrAPIKeyRequired
	}

	g := &Gateway{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		senderID:   cfg.SenderID,
		client:     cfg.HTTPClient,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.BaseBackoff,
	}
	if g.client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		g.client = &http.Client{Timeout: timeout}
	}
	if g.maxRetries == 0 {
		g.maxRetries = 3
	}
	if g.backoff <= 0 {
		g.backoff = 200 * time.Millisecond
	}

	return g, nil
}

type gatewayRequest struct {
	To     string `json:"to"`
	From   string `json:"from,omitempty"`
	Text   string `json:"text"`
	Source string `json:"source"`
}

// Send posts msg to the gateway, retrying transient failures.
func (g *Gateway) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	payload, err := json.Marshal(gatewayRequest{To: msg.To, From: g.senderID, Text: msg.Body, Source: "gomarket"})
	if err != nil {
		return err
	}

	b := retry.NewFibonacci(g.backoff)
	b = retry.WithCappedDuration(5*time.Second, b)
	b = retry.WithMaxRetries(g.maxRetries, b)

	return retry.Do(ctx, b, func(ctx context.Context) error {
		return g.post(ctx, payload)
	})
}

func (g *Gateway) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		return retry.RetryableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err = fmt.Errorf("%w: status=%d body=%s", ErrRejected, resp.StatusCode, strings.TrimSpace(string(snippet)))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return retry.RetryableError(err)
	}

	return err
}

// Log is a Sender that writes a log line instead of sending. The body is not
// logged because it carries one-time codes.
type Log struct{}

// NewLog returns a Log sender.
func NewLog() *Log { return &Log{} }

func (*Log) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	slog.InfoContext(ctx, "sms not sent, log driver active", "body_length", len(msg.Body))
	return nil
}
