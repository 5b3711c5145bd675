package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"restaurant-floor/internal/common/logger"
	"restaurant-floor/internal/common/mq"
	"restaurant-floor/internal/summary"
)

// Subscriber is the part of mq.Client the notificator listens with.
type Subscriber interface {
	Subscribe(exchange, consumer string) (<-chan amqp.Delivery, error)
}

var _ Subscriber = (*mq.Client)(nil)

// NotificatorService follows the floor's running daily summary and logs each
// refresh.
type NotificatorService struct {
	sub Subscriber
	lg  *logger.Logger

	// Last is the most recent report seen, nil before the first one.
	Last *summary.Report
}

func NewNotificatorService(sub Subscriber, lg *logger.Logger) *NotificatorService {
	return &NotificatorService{sub: sub, lg: lg}
}

func (ns *NotificatorService) Run(ctx context.Context) error {
	msgs, err := ns.sub.Subscribe(mq.NotificationsExchange, "summary-subscriber")
	if err != nil {
		return err
	}
	ns.lg.Info("subscribed", map[string]any{"exchange": mq.NotificationsExchange})
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			if err := ns.Notify(d.Body); err != nil {
				ns.lg.Error("notification_dropped", err, map[string]any{"message_id": d.MessageId})
			}
		}
	}
}

// Notify records one summary message.
func (ns *NotificatorService) Notify(body []byte) error {
	var r summary.Report
	if err := json.Unmarshal(body, &r); err != nil {
		return fmt.Errorf("decode summary: %w", err)
	}
	if r.Date == "" {
		return errors.New("summary without date")
	}
	ns.Last = &r
	fields := map[string]any{
		"date":           r.Date,
		"total":          r.TotalAmount,
		"order_count":    r.OrderCount,
		"average_ticket": r.AverageTicket,
		"canceled":       r.CanceledOrders,
	}
	if len(r.PeakHours) > 0 {
		fields["peak_hour"] = r.PeakHours[0].Hour
	}
	if len(r.TopSellingItems) > 0 {
		fields["top_item"] = r.TopSellingItems[0].Name
	}
	ns.lg.Info("daily_summary_received", fields)
	return nil
}
