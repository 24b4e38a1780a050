package nats

import (
	"context"
	"errors"
	"sync"
)

// MockPublisher is a mock implementation of Publisher for testing.
type MockPublisher struct {
	mu           sync.RWMutex
	events       []*DepositEvent
	publishError error
	closed       bool
}

// NewMockPublisher creates a new mock publisher for testing.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		events: make([]*DepositEvent, 0),
	}
}

// PublishDeposit records the event and returns any configured error.
func (m *MockPublisher) PublishDeposit(ctx context.Context, event *DepositEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.publishError != nil {
		return m.publishError
	}

	m.events = append(m.events, event)
	return nil
}

// Close marks the publisher as closed.
func (m *MockPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// GetPublishedEvents returns all published events (for testing).
func (m *MockPublisher) GetPublishedEvents() []*DepositEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]*DepositEvent, len(m.events))
	copy(events, m.events)
	return events
}

// SetPublishError configures the mock to return an error on PublishDeposit.
func (m *MockPublisher) SetPublishError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishError = err
}

// IsClosed returns whether the publisher has been closed.
func (m *MockPublisher) IsClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// MockSubscriber replays a fixed set of events for testing.
type MockSubscriber struct {
	mu     sync.Mutex
	events []*DepositEvent
	opts   []SubscribeOptions
	closed bool
}

// NewMockSubscriber creates a subscriber that delivers events in order.
func NewMockSubscriber(events ...*DepositEvent) *MockSubscriber {
	return &MockSubscriber{events: events}
}

// Subscribe delivers every queued event whose validator matches opts, then
// waits for ctx like a live subscription would.
func (m *MockSubscriber) Subscribe(ctx context.Context, opts SubscribeOptions, handler func(*DepositEvent) error) error {
	m.mu.Lock()
	m.opts = append(m.opts, opts)
	events := make([]*DepositEvent, len(m.events))
	copy(events, m.events)
	m.mu.Unlock()

	for _, event := range events {
		if opts.Validator != "" && event.Validator != opts.Validator {
			continue
		}
		if err := handler(event); err != nil {
			if errors.Is(err, ErrStopSubscription) {
				return nil
			}
			return err
		}
	}

	<-ctx.Done()
	return nil
}

// Close marks the subscriber as closed.
func (m *MockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// GetSubscriptions returns the options of every Subscribe call.
func (m *MockSubscriber) GetSubscriptions() []SubscribeOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SubscribeOptions, len(m.opts))
	copy(out, m.opts)
	return out
}

// IsClosed returns whether the subscriber has been closed.
func (m *MockSubscriber) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
