package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"restaurant-floor/internal/common/mq"
	"restaurant-floor/internal/domain"
	"restaurant-floor/internal/summary"
)

const source = "floor-service"

// Sender is the part of mq.Client the publisher needs.
type Sender interface {
	Publish(ctx context.Context, exchange, key, messageID string, body []byte, headers amqp.Table) error
}

var _ Sender = (*mq.Client)(nil)

// AMQP routes floor events by type onto the floor topic exchange and
// broadcasts summaries on the notifications fanout.
type AMQP struct {
	sender Sender
}

func NewAMQP(s Sender) *AMQP { return &AMQP{sender: s} }

func (p *AMQP) PublishEvent(ctx context.Context, ev domain.FloorEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", ev.ID, err)
	}
	return p.sender.Publish(ctx, mq.FloorExchange, ev.RoutingKey(), ev.ID, body, amqp.Table{
		"x-source":   source,
		"x-table-id": int32(ev.TableID),
	})
}

func (p *AMQP) PublishSummary(ctx context.Context, r summary.Report) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal summary %s: %w", r.Date, err)
	}
	return p.sender.Publish(ctx, mq.NotificationsExchange, "", uuid.NewString(), body, amqp.Table{
		"x-source": source,
		"x-kind":   "daily_summary",
		"x-date":   r.Date,
	})
}

// Nop drops everything. Used when RabbitMQ is disabled.
type Nop struct{}

func (Nop) PublishEvent(context.Context, domain.FloorEvent) error { return nil }
func (Nop) PublishSummary(context.Context, summary.Report) error  { return nil }
