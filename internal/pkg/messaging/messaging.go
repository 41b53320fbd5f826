package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrUnsupported is returned when a feature is not supported by the selected broker.
var ErrUnsupported = errors.New("messaging: unsupported operation")

// Messaging is a broker-agnostic client that can publish and consume messages.
type Messaging interface {
	io.Closer

	Publisher
	Consumer
}

// Publisher publishes messages to a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, msg OutgoingMessage) (PublishResult, error)
}

// Consumer consumes messages from a subject until ctx is done.
type Consumer interface {
	Consume(ctx context.Context, subject string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes a received message.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is a message to be published.
type OutgoingMessage struct {
	Body    []byte
	Headers []Header
	// Delay requests deferred delivery. No current driver supports it.
	Delay time.Duration
}

// Header is a key/value pair carried with a message.
type Header struct {
	Key   string
	Value []byte
}

// PublishResult carries what the broker reports back.
type PublishResult struct {
	Subject   string
	Timestamp time.Time
}

// Message is a received message.
type Message interface {
	Body() []byte
	Headers() []Header
	Subject() string
	Timestamp() time.Time

	// Ack acknowledges successful processing.
	Ack(ctx context.Context) error
	// Nack requests redelivery where the broker supports it.
	Nack(ctx context.Context) error
}

// HeaderValue returns the first value for key, or "".
func HeaderValue(msg Message, key string) string {
	for _, h := range msg.Headers() {
		if h.Key == key {
			return string(h.Value)
		}
	}

	return ""
}
