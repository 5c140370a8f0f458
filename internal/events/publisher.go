package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/finbank/ledger-service/internal/domain"
)

// Routing keys for ledger events on the topic exchange.
const (
	TransactionPostedKey = "ledger.transaction.posted"
	TransferCompletedKey = "ledger.transfer.completed"
)

// RabbitMQPublisher implements domain.EventPublisher on top of a RabbitMQ
// topic exchange. Publishing is best-effort: the ledger state is already
// committed by the time an event goes out.
type RabbitMQPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewRabbitMQPublisher connects to RabbitMQ and declares the topic exchange.
func NewRabbitMQPublisher(url, exchange string) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &RabbitMQPublisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

// Close releases the channel and connection.
func (p *RabbitMQPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

// transactionPayload is the wire form of a ledger entry inside an event.
type transactionPayload struct {
	TransactionID int64  `json:"transactionId"`
	AccountID     int64  `json:"accountId"`
	UserID        int64  `json:"userId"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
	Type          string `json:"type"`
	ReferenceID   string `json:"referenceId"`
	Timestamp     string `json:"timestamp"`
}

// PublishTransactionPosted emits a ledger.transaction.posted event.
func (p *RabbitMQPublisher) PublishTransactionPosted(ctx context.Context, transaction *domain.Transaction) error {
	event := map[string]any{
		"eventId":     uuid.New().String(),
		"eventType":   "transaction.posted",
		"occurredAt":  time.Now().UTC().Format(time.RFC3339),
		"transaction": toPayload(transaction),
	}
	return p.publish(ctx, TransactionPostedKey, event)
}

// PublishTransferCompleted emits a ledger.transfer.completed event carrying
// both legs.
func (p *RabbitMQPublisher) PublishTransferCompleted(ctx context.Context, debit, credit *domain.Transaction) error {
	event := map[string]any{
		"eventId":    uuid.New().String(),
		"eventType":  "transfer.completed",
		"occurredAt": time.Now().UTC().Format(time.RFC3339),
		"debit":      toPayload(debit),
		"credit":     toPayload(credit),
	}
	return p.publish(ctx, TransferCompletedKey, event)
}

func (p *RabbitMQPublisher) publish(ctx context.Context, routingKey string, event map[string]any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func toPayload(t *domain.Transaction) transactionPayload {
	return transactionPayload{
		TransactionID: t.ID,
		AccountID:     t.AccountID,
		UserID:        t.UserID,
		Amount:        t.Amount.StringFixed(2),
		Description:   t.Description,
		Type:          string(t.Type),
		ReferenceID:   t.ReferenceID,
		Timestamp:     t.Timestamp.UTC().Format(time.RFC3339),
	}
}
