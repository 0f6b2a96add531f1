package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"warden/internal/identity/models"
	"warden/pkg/requestcontext"
)

const (
	routingKey     = "mail.outbound"
	publishTimeout = 3 * time.Second
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMailer publishes mail jobs to a durable topic exchange.
type RabbitMailer struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	exchange string
}

// DialRabbit connects and declares the exchange.
func DialRabbit(url, exchange string) (*RabbitMailer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}
	return &RabbitMailer{conn: conn, ch: ch, exchange: exchange}, nil
}

func (m *RabbitMailer) Send(ctx context.Context, msg *models.Mail) error {
	body, err := json.Marshal(jobFrom(msg))
	if err != nil {
		return fmt.Errorf("marshal mail job: %w", err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, publishTimeout)
		defer cancel()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	err = m.ch.PublishWithContext(ctx, m.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		MessageId:    uuid.NewString(),
		Timestamp:    requestcontext.Now(ctx),
		Headers: amqp.Table{
			"X-Request-ID": requestcontext.RequestID(ctx),
		},
	})
	if err != nil {
		return fmt.Errorf("publish mail job: %w", err)
	}
	return nil
}

// Health reports whether the connection is open.
func (m *RabbitMailer) Health(context.Context) error {
	if m.conn == nil || m.conn.IsClosed() {
		return fmt.Errorf("rabbitmq connection closed")
	}
	return nil
}

func (m *RabbitMailer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ch != nil {
		_ = m.ch.Close()
	}
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}
