package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"restaurant-floor/internal/common/clock"
	"restaurant-floor/internal/common/logger"
	"restaurant-floor/internal/common/mq"
	"restaurant-floor/internal/domain"
	"restaurant-floor/internal/microservices/archiver/repository"
	"restaurant-floor/internal/summary"
)

var (
	ErrRequeue = errors.New("requeue")     // nack(requeue=true)
	ErrDLQ     = errors.New("dead_letter") // nack(requeue=false)
)

// Consumer is the part of mq.Client the archiver reads from.
type Consumer interface {
	Consume(queue, consumer string, prefetch int) (<-chan amqp.Delivery, error)
}

var _ Consumer = (*mq.Client)(nil)

type ArchiverServiceInterface interface {
	Run(ctx context.Context) error
	Handle(ctx context.Context, body []byte) error
	Today() time.Time
	DailyReport(ctx context.Context, date time.Time) (summary.DailySummary, bool, error)
}

type ArchiverService struct {
	repo     repository.ArchiveRepositoryInterface
	consumer Consumer
	clock    clock.Clock
	lg       *logger.Logger
	loc      *time.Location

	Queue       string
	ConsumerTag string
	Prefetch    int
}

func NewArchiverService(repo repository.ArchiveRepositoryInterface, consumer Consumer, c clock.Clock, lg *logger.Logger, loc *time.Location) *ArchiverService {
	if c == nil {
		c = clock.Real()
	}
	if loc == nil {
		loc = time.Local
	}
	return &ArchiverService{
		repo:        repo,
		consumer:    consumer,
		clock:       c,
		lg:          lg,
		loc:         loc,
		Queue:       mq.ArchiveQueue,
		ConsumerTag: "sales-archiver",
		Prefetch:    10,
	}
}

// Run consumes settled orders until ctx is done.
func (as *ArchiverService) Run(ctx context.Context) error {
	msgs, err := as.consumer.Consume(as.Queue, as.ConsumerTag, as.Prefetch)
	if err != nil {
		return fmt.Errorf("consume %s: %w", as.Queue, err)
	}
	as.lg.Info("consumer_started", map[string]any{"queue": as.Queue, "prefetch": as.Prefetch})

	for {
		select {
		case <-ctx.Done():
			as.lg.Info("graceful_shutdown", map[string]any{"queue": as.Queue})
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			err := as.Handle(ctx, d.Body)
			switch {
			case err == nil:
				_ = d.Ack(false)
			case errors.Is(err, ErrDLQ):
				as.lg.Error("message_dead_lettered", err, map[string]any{"message_id": d.MessageId})
				_ = d.Nack(false, false)
			default:
				as.lg.Error("message_requeued", err, map[string]any{"message_id": d.MessageId})
				_ = d.Nack(false, true)
			}
		}
	}
}

// Handle archives one floor event. Events other than close and cancel are
// acknowledged and skipped.
func (as *ArchiverService) Handle(ctx context.Context, body []byte) error {
	var ev domain.FloorEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: decode event: %v", ErrDLQ, err)
	}
	if ev.Type != domain.EventOrderClosed && ev.Type != domain.EventOrderCanceled {
		as.lg.Debug("event_skipped", map[string]any{"event_id": ev.ID, "type": ev.Type})
		return nil
	}
	if _, err := uuid.Parse(ev.ID); err != nil {
		return fmt.Errorf("%w: event id %q: %v", ErrDLQ, ev.ID, err)
	}
	if ev.Order == nil || ev.Order.ClosedAt == nil || ev.Order.IsOpen() {
		return fmt.Errorf("%w: event %s carries no settled order", ErrDLQ, ev.ID)
	}

	stored, err := as.repo.SaveOrder(ctx, ev, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequeue, err)
	}
	if !stored {
		as.lg.Debug("duplicate_event", map[string]any{"event_id": ev.ID, "order_id": ev.Order.ID})
		return nil
	}
	as.lg.Info("order_archived", map[string]any{
		"event_id": ev.ID,
		"order_id": ev.Order.ID,
		"status":   ev.Order.Status,
		"total":    domain.Money(ev.Order.Total),
	})
	return nil
}

// Today is the current date in the archive's reporting zone.
func (as *ArchiverService) Today() time.Time { return as.clock.Now().In(as.loc) }

// DailyReport summarizes the archived orders of date's calendar day in
// date's location.
func (as *ArchiverService) DailyReport(ctx context.Context, date time.Time) (summary.DailySummary, bool, error) {
	y, m, d := date.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	to := from.AddDate(0, 0, 1)

	orders, err := as.repo.OrdersClosedBetween(ctx, from, to)
	if err != nil {
		return summary.DailySummary{}, false, err
	}
	s, ok := summary.Summarize(orders, date)
	return s, ok, nil
}
