package reportingest

import "context"

// NoopPublisher is an EventPublisher that validates events and drops them.
// Useful for deployments without a broker and for tests.
type NoopPublisher struct{}

// NewNoopPublisher creates a new no-op publisher
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (p *NoopPublisher) Publish(ctx context.Context, event NotificationEvent) error {
	return event.Validate()
}

func (p *NoopPublisher) Close() error {
	return nil
}
