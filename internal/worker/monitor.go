package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"escrowbook/internal/domain/escrow"
	"escrowbook/internal/pkg/config"
	"escrowbook/internal/pkg/errs"
	"escrowbook/internal/usecase/commands"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ledgerMessage is the wire shape of one confirmed ledger event.
type ledgerMessage struct {
	Kind      string    `json:"kind"`
	BookingID uuid.UUID `json:"booking_id"`
	TxRef     string    `json:"tx_ref"`
	Seq       int64     `json:"seq"`
	EmittedAt time.Time `json:"emitted_at"`
}

// Monitor consumes confirmed ledger events from the durable queue and feeds
// them to the resolver. The broker delivers at least once; idempotency comes
// from the per-booking replay guard, not from the transport.
type Monitor struct {
	cfg    config.AMQPConfig
	ledger commands.LedgerCommands
	logger *slog.Logger

	stop chan struct{}
	done chan struct{}
}

func NewMonitor(cfg config.AMQPConfig, ledger commands.LedgerCommands, logger *slog.Logger) *Monitor {
	return &Monitor{
		cfg:    cfg,
		ledger: ledger,
		logger: logger,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (m *Monitor) Start() {
	go m.run()
}

func (m *Monitor) Stop() {
	close(m.stop)
	<-m.done
}

// run keeps a reconnect loop with capped exponential backoff so a broker
// restart never takes the monitor down for good.
func (m *Monitor) run() {
	defer close(m.done)
	backoff := time.Second

	for {
		select {
		case <-m.stop:
			return
		default:
		}

		conn, err := amqp.Dial(m.cfg.URL)
		if err != nil {
			m.logger.Warn("monitor: broker dial failed, retrying", "error", err, "backoff", backoff)
			if !m.sleep(backoff) {
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := m.consumeLoop(conn); err != nil {
			m.logger.Warn("monitor: consume loop ended, reconnecting", "error", err)
		}
		_ = conn.Close()
		if !m.sleep(2 * time.Second) {
			return
		}
	}
}

func (m *Monitor) sleep(d time.Duration) bool {
	select {
	case <-m.stop:
		return false
	case <-time.After(d):
		return true
	}
}

func (m *Monitor) consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return errs.Wrap(err, "failed to open channel")
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(m.cfg.Prefetch, 0, false); err != nil {
		return errs.Wrap(err, "failed to set QoS")
	}
	if _, err := ch.QueueDeclare(m.cfg.LedgerQueue, true, false, false, false, nil); err != nil {
		return errs.Wrap(err, "failed to declare ledger queue")
	}

	deliveries, err := ch.Consume(m.cfg.LedgerQueue, m.cfg.ConsumerName, false, false, false, false, nil)
	if err != nil {
		return errs.Wrap(err, "failed to start consuming")
	}

	for {
		select {
		case <-m.stop:
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errs.New("deliveries channel closed")
			}
			m.handle(d)
		}
	}
}

func (m *Monitor) handle(d amqp.Delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var msg ledgerMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		m.logger.Error("monitor: undecodable ledger message dropped", "error", err)
		_ = d.Nack(false, false)
		return
	}

	ev := escrow.LedgerEvent{
		Kind:      escrow.EventKind(msg.Kind),
		BookingID: msg.BookingID,
		TxRef:     msg.TxRef,
		Seq:       msg.Seq,
		EmittedAt: msg.EmittedAt,
	}

	err := m.ledger.Resolve(ctx, m.cfg.ConsumerName, ev)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errs.Is(err, errs.ErrEventUnresolvable):
		// The ledger is authoritative but this event cannot be expressed as a
		// lifecycle transition. Log for manual follow-up and drop: requeueing
		// would block every later event behind it.
		m.logger.Error("monitor: unresolvable ledger event dropped",
			"booking_id", ev.BookingID, "kind", ev.Kind, "seq", ev.Seq, "tx_ref", ev.TxRef, "error", err)
		_ = d.Ack(false)
	case errs.Is(err, errs.ErrStaleVersion):
		// Lost a version race; redeliver so the event applies on the fresh row.
		_ = d.Nack(false, true)
	default:
		m.logger.Warn("monitor: ledger event processing failed, requeueing",
			"booking_id", ev.BookingID, "seq", ev.Seq, "error", err)
		_ = d.Nack(false, true)
	}
}
