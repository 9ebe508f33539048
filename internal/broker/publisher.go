package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/salao-caixa/caixa-backend/internal/websocket"
)

const (
	exchangeKind   = "topic"
	publishTimeout = 5 * time.Second
	queueSize      = 256
)

// Channel is the subset of an AMQP channel the publisher needs
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher forwards ledger and catalog events to an AMQP topic exchange.
// The routing key is the event type, e.g. "movement.created".
// Publish never blocks the caller: events are queued and sent by Run.
type Publisher struct {
	conn     *amqp091.Connection
	channel  Channel
	exchange string
	logger   zerolog.Logger

	queue     chan websocket.Event
	closeOnce sync.Once
}

// Ensure Publisher implements EventPublisher
var _ websocket.EventPublisher = (*Publisher)(nil)

// Dial connects to the broker and declares the exchange
func Dial(url, exchange string, logger zerolog.Logger) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p, err := NewPublisher(channel, exchange, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewPublisher declares the exchange on an open channel
func NewPublisher(channel Channel, exchange string, logger zerolog.Logger) (*Publisher, error) {
	err := channel.ExchangeDeclare(
		exchange,     // name
		exchangeKind, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Publisher{
		channel:  channel,
		exchange: exchange,
		logger:   logger.With().Str("component", "amqp_publisher").Logger(),
		queue:    make(chan websocket.Event, queueSize),
	}, nil
}

// Publish queues the event. When the queue is full the event is dropped.
func (p *Publisher) Publish(event websocket.Event) {
	select {
	case p.queue <- event:
	default:
		p.logger.Warn().Str("type", event.Type).Msg("Broker queue full, dropping event")
	}
}

// Run sends queued events until ctx is cancelled, then drains what is left
func (p *Publisher) Run(ctx context.Context) error {
	p.logger.Info().Str("exchange", p.exchange).Msg("AMQP publisher started")
	for {
		select {
		case <-ctx.Done():
			p.drain()
			p.logger.Info().Msg("AMQP publisher stopped")
			return nil
		case event := <-p.queue:
			p.send(ctx, event)
		}
	}
}

func (p *Publisher) drain() {
	for {
		select {
		case event := <-p.queue:
			p.send(context.Background(), event)
		default:
			return
		}
	}
}

func (p *Publisher) send(ctx context.Context, event websocket.Event) {
	body, err := event.ToJSON()
	if err != nil {
		p.logger.Error().Err(err).Str("type", event.Type).Msg("Failed to marshal event")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange, // exchange
		event.Type, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    event.Timestamp,
			Type:         event.Type,
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error().Err(err).Str("type", event.Type).Msg("Failed to publish event")
		return
	}
	p.logger.Debug().Str("type", event.Type).Msg("Event published")
}

// Close releases the channel and connection
func (p *Publisher) Close() error {
	var err error
	p.closeOnce.Do(func() {
		if cerr := p.channel.Close(); cerr != nil {
			err = cerr
		}
		if p.conn != nil {
			if cerr := p.conn.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	})
	return err
}
