package events

import (
	"context"
	"encoding/json"
	"time"

	"escrowbook/internal/pkg/config"
	"escrowbook/internal/pkg/errs"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const statusChangedKey = "booking.status.changed"

// StatusChanged is the event emitted after every applied transition so
// downstream consumers (notifications, analytics) can follow the lifecycle.
type StatusChanged struct {
	BookingID  uuid.UUID `json:"booking_id"`
	Previous   string    `json:"previous"`
	Next       string    `json:"next"`
	ActorRole  string    `json:"actor_role"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(cfg config.AMQPConfig) (*Publisher, func(), error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, nil, errs.Wrap(err, "failed to dial broker")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, errs.Wrap(err, "failed to open channel")
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, errs.Wrap(err, "failed to declare exchange")
	}

	p := &Publisher{conn: conn, ch: ch, exchange: cfg.Exchange}
	cleanup := func() {
		_ = p.ch.Close()
		_ = p.conn.Close()
	}
	return p, cleanup, nil
}

func (p *Publisher) PublishStatusChanged(ctx context.Context, ev StatusChanged) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return errs.Wrap(err, "failed to encode status event")
	}
	err = p.ch.PublishWithContext(ctx, p.exchange, statusChangedKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
		Timestamp:   ev.OccurredAt,
	})
	return errs.Wrap(err, "failed to publish status event")
}
