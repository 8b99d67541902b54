package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/erp/product-dimension/internal/domain/shared"
	"github.com/erp/product-dimension/internal/infrastructure/config"
	"github.com/erp/product-dimension/internal/infrastructure/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// AMQPChannel is the subset of *amqp.Channel the forwarder needs
type AMQPChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// ChannelDialer opens a channel with the exchange declared
type ChannelDialer func() (AMQPChannel, error)

// AMQPForwarder is a wildcard handler that forwards every domain event to a
// RabbitMQ topic exchange. The routing key is "<prefix>.<EventType>".
type AMQPForwarder struct {
	dial       ChannelDialer
	serializer *EventSerializer
	exchange   string
	prefix     string
	timeout    time.Duration
	backoff    time.Duration
	logger     *zap.Logger

	mu         sync.Mutex
	ch         AMQPChannel
	lastDialAt time.Time
}

// NewAMQPForwarder creates a forwarder that opens channels through dial
func NewAMQPForwarder(cfg config.EventConfig, dial ChannelDialer, serializer *EventSerializer, log *zap.Logger) *AMQPForwarder {
	if log == nil {
		log = zap.NewNop()
	}
	if serializer == nil {
		serializer = NewCatalogEventSerializer()
	}
	return &AMQPForwarder{
		dial:       dial,
		serializer: serializer,
		exchange:   cfg.AMQPExchange,
		prefix:     cfg.AMQPRoutingKey,
		timeout:    cfg.PublishTimeout,
		backoff:    cfg.ReconnectBackoff,
		logger:     log.Named("amqp_forwarder"),
	}
}

// DialAMQP returns a ChannelDialer for a broker URL that declares a durable
// topic exchange on every new channel
func DialAMQP(url, exchange string) ChannelDialer {
	return func() (AMQPChannel, error) {
		conn, err := amqp.Dial(url)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to open channel: %w", err)
		}
		if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
		}
		return &connChannel{Channel: ch, conn: conn}, nil
	}
}

// connChannel closes its connection together with the channel
type connChannel struct {
	*amqp.Channel
	conn *amqp.Connection
}

func (c *connChannel) Close() error {
	_ = c.Channel.Close()
	return c.conn.Close()
}

// EventTypes returns nil so the forwarder receives every event
func (f *AMQPForwarder) EventTypes() []string {
	return nil
}

// RoutingKey returns the routing key used for an event type
func (f *AMQPForwarder) RoutingKey(eventType string) string {
	if f.prefix == "" {
		return eventType
	}
	return f.prefix + "." + eventType
}

// Handle publishes the event as a persistent JSON message
func (f *AMQPForwarder) Handle(ctx context.Context, event shared.DomainEvent) error {
	body, err := f.serializer.Serialize(event)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", event.EventType(), err)
	}

	ch, err := f.channel()
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID().String(),
		Timestamp:    event.OccurredAt(),
		Type:         event.EventType(),
		Body:         body,
		Headers: amqp.Table{
			"aggregate_id":   event.AggregateID().String(),
			"aggregate_type": event.AggregateType(),
		},
	}
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		msg.CorrelationId = requestID
	}

	pubCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		pubCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	key := f.RoutingKey(event.EventType())
	if err := ch.PublishWithContext(pubCtx, f.exchange, key, false, false, msg); err != nil {
		f.reset(ch)
		return fmt.Errorf("failed to publish %s to %s: %w", event.EventType(), f.exchange, err)
	}

	f.logger.Debug("event forwarded",
		zap.String("event_type", event.EventType()),
		zap.String("routing_key", key),
	)
	return nil
}

// Close closes the open channel, if any
func (f *AMQPForwarder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ch == nil {
		return nil
	}
	err := f.ch.Close()
	f.ch = nil
	return err
}

// channel returns the open channel, dialing at most once per backoff period
func (f *AMQPForwarder) channel() (AMQPChannel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ch != nil {
		return f.ch, nil
	}
	if !f.lastDialAt.IsZero() && time.Since(f.lastDialAt) < f.backoff {
		return nil, fmt.Errorf("amqp channel unavailable, retrying after %s", f.backoff)
	}
	f.lastDialAt = time.Now()

	ch, err := f.dial()
	if err != nil {
		return nil, err
	}
	f.ch = ch
	f.logger.Info("amqp channel opened", zap.String("exchange", f.exchange))
	return ch, nil
}

func (f *AMQPForwarder) reset(failed AMQPChannel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ch == failed {
		_ = f.ch.Close()
		f.ch = nil
	}
}

var _ shared.EventHandler = (*AMQPForwarder)(nil)
