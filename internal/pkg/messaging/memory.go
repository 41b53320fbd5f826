package messaging

import (
	"context"
	"io"
	"sync"
	"time"
)

// Memory is an in-process bus. Each Consume call receives every message
// published to its subject after it subscribed, unless it shares a queue group
// with another consumer, in which case one of them receives it.
type Memory struct {
	mu     sync.RWMutex
	groups map[string][]*memoryGroup
	closed bool
}

type memoryGroup struct {
	name string
	ch   chan *memoryMessage
	refs int
}

var _ Messaging = (*Memory)(nil)

// NewMemory returns an empty in-process bus.
func NewMemory() *Memory {
	return &Memory{groups: make(map[string][]*memoryGroup)}
}

// Close stops accepting publishes. Running consumers return when their context ends.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	return nil
}

// Publish fans the message out to every group subscribed to subject.
// It blocks while a group's buffer is full, until ctx is done.
func (m *Memory) Publish(ctx context.Context, subject string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if subject == "" {
		return PublishResult{}, ErrSubjectRequired
	}
	if msg.Delay > 0 {
		return PublishResult{}, ErrUnsupported
	}

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return PublishResult{}, io.ErrClosedPipe
	}
	groups := append([]*memoryGroup{}, m.groups[subject]...)
	m.mu.RUnlock()

	now := time.Now()
	for _, g := range groups {
		mm := &memoryMessage{
			subject: subject,
			body:    append([]byte(nil), msg.Body...),
			headers: append([]Header(nil), msg.Headers...),
			at:      now,
		}
		select {
		case g.ch <- mm:
		case <-ctx.Done():
			return PublishResult{}, ctx.Err()
		}
	}

	return PublishResult{Subject: subject, Timestamp: now}, nil
}

// Consume registers handler on subject and blocks until ctx is done.
func (m *Memory) Consume(ctx context.Context, subject string, handler Handler, opts ...ConsumeOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if subject == "" {
		return ErrSubjectRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}

	co := newConsumeOptions(opts...)
	g, err := m.join(subject, co.queueGroup)
	if err != nil {
		return err
	}
	defer m.leave(subject, g)

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case msg := <-g.ch:
					herr := callHandlerWithRecover(ctx, DriverMemory, subject, func() error {
						return handler(ctx, msg)
					})
					if co.autoAck {
						_ = settle(ctx, msg, herr)
					}
				}
			}
		})
	}

	wg.Wait()

	return ctx.Err()
}

func (m *Memory) join(subject, queueGroup string) (*memoryGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, io.ErrClosedPipe
	}

	if queueGroup != "" {
		for _, g := range m.groups[subject] {
			if g.name == queueGroup {
				g.refs++
				return g, nil
			}
		}
	}

	g := &memoryGroup{name: queueGroup, ch: make(chan *memoryMessage, 64), refs: 1}
	m.groups[subject] = append(m.groups[subject], g)

	return g, nil
}

func (m *Memory) leave(subject string, g *memoryGroup) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g.refs--
	if g.refs > 0 {
		return
	}

	groups := m.groups[subject]
	for i := range groups {
		if groups[i] == g {
			m.groups[subject] = append(groups[:i], groups[i+1:]...)
			break
		}
	}
}

type memoryMessage struct {
	subject string
	body    []byte
	headers []Header
	at      time.Time
}

func (m *memoryMessage) Body() []byte               { return m.body }
func (m *memoryMessage) Headers() []Header          { return m.headers }
func (m *memoryMessage) Subject() string            { return m.subject }
func (m *memoryMessage) Timestamp() time.Time       { return m.at }
func (m *memoryMessage) Ack(context.Context) error  { return nil }
func (m *memoryMessage) Nack(context.Context) error { return nil }
