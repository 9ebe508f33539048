package broker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/salao-caixa/caixa-backend/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type mockChannel struct {
	mu          sync.Mutex
	declared    []string
	declareErr  error
	publishErr  error
	messages    []published
	closeCalled int
}

func (m *mockChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.declared = append(m.declared, name+":"+kind)
	return m.declareErr
}

func (m *mockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return m.publishErr
	}
	m.messages = append(m.messages, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (m *mockChannel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCalled++
	return nil
}

func (m *mockChannel) sent() []published {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]published, len(m.messages))
	copy(out, m.messages)
	return out
}

func TestNewPublisher_DeclaresTopicExchange(t *testing.T) {
	ch := &mockChannel{}
	_, err := NewPublisher(ch, "caixa.events", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"caixa.events:topic"}, ch.declared)
}

func TestNewPublisher_DeclareError(t *testing.T) {
	ch := &mockChannel{declareErr: errors.New("access refused")}
	_, err := NewPublisher(ch, "caixa.events", zerolog.Nop())
	assert.ErrorContains(t, err, "declare exchange")
	assert.Equal(t, 1, ch.closeCalled)
}

func TestPublisher_RunSendsEvents(t *testing.T) {
	ch := &mockChannel{}
	p, err := NewPublisher(ch, "caixa.events", zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = p.Run(ctx)
		close(done)
	}()

	p.Publish(websocket.MovementCreated(map[string]int64{"id": 1}))
	p.Publish(websocket.ServiceDeleted(map[string]string{"id": "10"}))

	require.Eventually(t, func() bool { return len(ch.sent()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	msgs := ch.sent()
	assert.Equal(t, "caixa.events", msgs[0].exchange)
	assert.Equal(t, "movement.created", msgs[0].key)
	assert.Equal(t, "service.deleted", msgs[1].key)
	assert.Equal(t, "application/json", msgs[0].msg.ContentType)
	assert.Equal(t, amqp091.Persistent, msgs[0].msg.DeliveryMode)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(msgs[0].msg.Body, &body))
	assert.Equal(t, "movement.created", body["type"])
	assert.Equal(t, "movement", body["entity"])
}

func TestPublisher_DrainsOnShutdown(t *testing.T) {
	ch := &mockChannel{}
	p, err := NewPublisher(ch, "caixa.events", zerolog.Nop())
	require.NoError(t, err)

	p.Publish(websocket.MovementUpdated(nil))
	p.Publish(websocket.MovementDeleted(nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, p.Run(ctx))

	assert.Len(t, ch.sent(), 2)
}

func TestPublisher_PublishDoesNotBlockWhenFull(t *testing.T) {
	ch := &mockChannel{}
	p, err := NewPublisher(ch, "caixa.events", zerolog.Nop())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		for i := 0; i < queueSize+10; i++ {
			p.Publish(websocket.MovementCreated(i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
	assert.Len(t, p.queue, queueSize)
}

func TestPublisher_PublishErrorIsLogged(t *testing.T) {
	ch := &mockChannel{publishErr: errors.New("channel closed")}
	p, err := NewPublisher(ch, "caixa.events", zerolog.Nop())
	require.NoError(t, err)

	p.Publish(websocket.MovementCreated(nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NotPanics(t, func() { _ = p.Run(ctx) })
	assert.Empty(t, ch.sent())
}

func TestPublisher_CloseOnce(t *testing.T) {
	ch := &mockChannel{}
	p, err := NewPublisher(ch, "caixa.events", zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, ch.closeCalled)
}
