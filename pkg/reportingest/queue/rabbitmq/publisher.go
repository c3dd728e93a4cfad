// Package rabbitmq implements the notification event publisher on top of
// AMQP 0-9-1. The publisher owns a long-lived connection/channel pair and
// survives broker restarts across the process lifetime: transient
// connection and channel failures are retried against a bounded budget
// while unroutable or malformed messages fail permanently without retry.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/streetfix/report-ingest/pkg/reportingest"
)

// connState represents the state of the broker connection
type connState int

// Possible connection states
const (
	stateDisconnected connState = iota
	stateConnecting
	stateReady
)

// String returns the string representation of connState
func (s connState) String() string {
	switch s {
	case stateDisconnected:
		return "disconnected"
	case stateConnecting:
		return "connecting"
	case stateReady:
		return "ready"
	default:
		return "unknown"
	}
}

const (
	defaultMaxAttempts   = 3
	defaultSizeWarnBytes = 64 * 1024
)

// Connection abstracts an AMQP connection so tests can script transport
// failures without a broker.
type Connection interface {
	Channel() (Channel, error)
	Close() error
	IsClosed() bool
}

// Channel abstracts the subset of an AMQP channel the publisher uses.
// *amqp.Channel satisfies it.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Tx() error
	TxCommit() error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	NotifyReturn(c chan amqp.Return) chan amqp.Return
	Close() error
}

// Dialer establishes a broker connection
type Dialer func(url string) (Connection, error)

type amqpConnection struct {
	*amqp.Connection
}

func (c amqpConnection) Channel() (Channel, error) {
	return c.Connection.Channel()
}

func defaultDialer(url string) (Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return amqpConnection{conn}, nil
}

// Publisher implements reportingest.EventPublisher. Publishing is
// serialized behind a mutex: the underlying channel is not safe for
// concurrent use.
type Publisher struct {
	url           string
	queue         string
	dial          Dialer
	maxAttempts   int
	sizeWarnBytes int
	logger        *slog.Logger

	mu      sync.Mutex
	state   connState
	conn    Connection
	ch      Channel
	returns chan amqp.Return
}

// PublisherOption represents a functional option for configuring the publisher
type PublisherOption func(*Publisher)

// WithDialer overrides how broker connections are established
func WithDialer(dial Dialer) PublisherOption {
	return func(p *Publisher) {
		p.dial = dial
	}
}

// WithMaxAttempts sets the bounded retry budget per publish call
func WithMaxAttempts(n int) PublisherOption {
	return func(p *Publisher) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// WithSizeWarning sets the serialized-size soft warning threshold in bytes
func WithSizeWarning(bytes int) PublisherOption {
	return func(p *Publisher) {
		p.sizeWarnBytes = bytes
	}
}

// WithLogger sets the structured logger for the publisher
func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// New creates a publisher for one durable queue. No connection is made
// until the first publish attempt.
func New(url, queue string, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		url:           url,
		queue:         queue,
		dial:          defaultDialer,
		maxAttempts:   defaultMaxAttempts,
		sizeWarnBytes: defaultSizeWarnBytes,
		logger:        slog.Default(),
		state:         stateDisconnected,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish validates the event, then delivers it with persistent delivery
// inside an AMQP transaction. A nil return means the broker has accepted
// and will retain the message. Transient connection/channel failures each
// consume one attempt and trigger a reconnect; unroutable messages fail
// immediately and leave the healthy channel in place.
func (p *Publisher) Publish(ctx context.Context, event reportingest.NotificationEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: %w", reportingest.ErrEventInvalid, err)
	}
	if len(body) > p.sizeWarnBytes {
		p.logger.Warn("notification event exceeds size threshold",
			"queue", p.queue, "bytes", len(body), "threshold", p.sizeWarnBytes)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err := p.connectLocked(); err != nil {
			p.logger.Warn("broker connection failed",
				"queue", p.queue, "attempt", attempt, "error", err)
			lastErr = err
			continue
		}

		err := p.publishLocked(ctx, event.ID, body)
		if err == nil {
			return nil
		}
		if errors.Is(err, reportingest.ErrUnroutable) {
			// The channel itself is healthy; the condition will not change
			// without external action.
			return &reportingest.PublishError{Queue: p.queue, Attempts: attempt, Err: err}
		}

		p.logger.Warn("publish attempt failed",
			"queue", p.queue, "attempt", attempt, "error", err)
		p.teardownLocked()
		lastErr = err
	}

	return &reportingest.PublishError{
		Queue:    p.queue,
		Attempts: p.maxAttempts,
		Err:      fmt.Errorf("%w: %w", reportingest.ErrPublishGaveUp, lastErr),
	}
}

// Close releases the connection/channel pair
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.teardownLocked()
	return nil
}

// connectLocked moves the publisher to the ready state: establish the
// connection, open a channel, declare the durable queue and select
// transactional mode. Caller holds p.mu.
func (p *Publisher) connectLocked() error {
	if p.state == stateReady && p.conn != nil && !p.conn.IsClosed() {
		return nil
	}
	p.teardownLocked()
	p.state = stateConnecting

	conn, err := p.dial(p.url)
	if err != nil {
		p.state = stateDisconnected
		return fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		p.state = stateDisconnected
		return fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		p.state = stateDisconnected
		return fmt.Errorf("declare queue %s: %w", p.queue, err)
	}

	if err := ch.Tx(); err != nil {
		ch.Close()
		conn.Close()
		p.state = stateDisconnected
		return fmt.Errorf("select tx mode: %w", err)
	}

	p.conn = conn
	p.ch = ch
	p.returns = ch.NotifyReturn(make(chan amqp.Return, 1))
	p.state = stateReady
	return nil
}

// publishLocked sends one persistent message and commits the channel
// transaction. A basic.return delivered by the broker marks the message
// unroutable. Caller holds p.mu with the publisher in the ready state.
func (p *Publisher) publishLocked(ctx context.Context, messageID string, body []byte) error {
	err := p.ch.PublishWithContext(ctx, "", p.queue, true, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	if err := p.ch.TxCommit(); err != nil {
		return fmt.Errorf("tx commit: %w", err)
	}

	// basic.return for an unroutable mandatory message arrives before the
	// commit acknowledgment, so a buffered non-blocking read suffices.
	select {
	case ret := <-p.returns:
		return fmt.Errorf("%w: %s (code %d)", reportingest.ErrUnroutable, ret.ReplyText, ret.ReplyCode)
	default:
		return nil
	}
}

// teardownLocked discards the connection/channel pair. Caller holds p.mu.
func (p *Publisher) teardownLocked() {
	if p.ch != nil {
		p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
	p.returns = nil
	p.state = stateDisconnected
}
