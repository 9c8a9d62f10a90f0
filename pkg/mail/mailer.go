// Package mail hands outgoing account mail to a broker. A separate worker
// renders and delivers it.
package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"bookmarket.backend/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Kinds of account mail
const (
	KindEmailVerification = "email_verification"
	KindPasswordReset     = "password_reset"
)

// Message is one outgoing mail
type Message struct {
	Kind    string    `json:"kind"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Link    string    `json:"link"`
	SentAt  time.Time `json:"sentAt"`
}

// Mailer sends account mail
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log. Used when no broker is configured.
type LogMailer struct{}

// Send logs msg. The link is only logged at debug level.
func (LogMailer) Send(ctx context.Context, msg Message) error {
	logger.Info(ctx, "Mail queued (log only)", zap.String("kind", msg.Kind), zap.String("to", msg.To))
	logger.Debug(ctx, "Mail link", zap.String("kind", msg.Kind), zap.String("link", msg.Link))
	return nil
}

type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPMailer publishes messages as persistent JSON onto a durable queue
type AMQPMailer struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    amqpChannel
	queue string
	now   func() time.Time
}

var dialAMQP = amqp.Dial

// NewAMQPMailer dials the broker and declares the queue
func NewAMQPMailer(url, queue string) (*AMQPMailer, error) {
	if queue == "" {
		return nil, errors.New("mail queue name is required")
	}
	conn, err := dialAMQP(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	m, err := newAMQPMailer(ch, queue)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	m.conn = conn
	return m, nil
}

func newAMQPMailer(ch amqpChannel, queue string) (*AMQPMailer, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return &AMQPMailer{ch: ch, queue: queue, now: time.Now}, nil
}

// Send publishes msg on the mail queue
func (m *AMQPMailer) Send(ctx context.Context, msg Message) error {
	if msg.SentAt.IsZero() {
		msg.SentAt = m.now().UTC()
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	err = m.ch.PublishWithContext(ctx, "", m.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    msg.SentAt,
		Type:         msg.Kind,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish mail: %w", err)
	}
	return nil
}

// Close closes the channel and the connection
func (m *AMQPMailer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	err := m.ch.Close()
	if m.conn != nil {
		if cerr := m.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
