package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// ErrStopSubscription ends Subscribe cleanly when returned by a handler.
var ErrStopSubscription = errors.New("stop subscription")

// Subscriber streams deposit events from JetStream.
type Subscriber interface {
	// Subscribe delivers events for validator (every validator when empty)
	// to handler until ctx is done or handler returns an error.
	Subscribe(ctx context.Context, opts SubscribeOptions, handler func(*DepositEvent) error) error

	Close() error
}

type SubscribeOptions struct {
	Validator string
	// Durable names a consumer that survives restarts. Empty means ephemeral.
	Durable string
}

// FilterSubject returns the subject carrying events for one validator, or
// the whole stream when validator is empty.
func FilterSubject(validator string) string {
	if validator == "" {
		return StreamSubjects
	}
	return fmt.Sprintf("deposits.%s", validator)
}

// DecodeDepositEvent parses a published event payload.
func DecodeDepositEvent(data []byte) (*DepositEvent, error) {
	var event DepositEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to decode deposit event: %w", err)
	}
	if event.Signature == "" || event.Validator == "" {
		return nil, fmt.Errorf("failed to decode deposit event: missing signature or validator")
	}
	return &event, nil
}

type JetStreamSubscriber struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *slog.Logger
}

func NewSubscriber(natsURL string, logger *slog.Logger) (*JetStreamSubscriber, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("validator-pda-subscriber"),
		nats.Timeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &JetStreamSubscriber{nc: nc, js: js, logger: logger}, nil
}

func (s *JetStreamSubscriber) Subscribe(ctx context.Context, opts SubscribeOptions, handler func(*DepositEvent) error) error {
	consumerConfig := jetstream.ConsumerConfig{
		FilterSubject: FilterSubject(opts.Validator),
		AckPolicy:     jetstream.AckExplicitPolicy,
	}
	if opts.Durable != "" {
		consumerConfig.Durable = opts.Durable
		consumerConfig.Name = opts.Durable
	}

	cons, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, consumerConfig)
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	msgChan := make(chan jetstream.Msg, 10)
	cc, err := cons.Consume(func(msg jetstream.Msg) {
		select {
		case msgChan <- msg:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}
	defer cc.Stop()

	s.logger.DebugContext(ctx, "subscribed to deposit events",
		"subject", consumerConfig.FilterSubject,
		"durable", opts.Durable,
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-msgChan:
			event, err := DecodeDepositEvent(msg.Data())
			if err != nil {
				s.logger.WarnContext(ctx, "skipping malformed deposit event",
					"subject", msg.Subject(),
					"error", err,
				)
				_ = msg.Ack()
				continue
			}

			if err := handler(event); err != nil {
				_ = msg.Ack()
				if errors.Is(err, ErrStopSubscription) {
					return nil
				}
				return err
			}
			_ = msg.Ack()
		}
	}
}

func (s *JetStreamSubscriber) Close() error {
	if s.nc != nil {
		s.nc.Close()
	}
	return nil
}
