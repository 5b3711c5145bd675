package mq

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"restaurant-floor/internal/common/config"
)

const (
	FloorExchange         = "floor_topic"
	NotificationsExchange = "floor_notifications"
	DeadLetterExchange    = "floor_dlx"

	ArchiveQueue      = "archive.q"
	ArchiveDeadLetter = "archive.dlq"
)

// ArchiveBindings are the floor events the archiver stores.
var ArchiveBindings = []string{"order.closed", "order.canceled"}

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	acks <-chan amqp.Confirmation
	// confirms arrive in publish order, so publishes are serialized
	mu sync.Mutex
}

func (c *Client) Channel() *amqp.Channel { return c.ch }

func Dial(cfg config.MQ) (*Client, error) {
	vhost := cfg.VHost
	if vhost == "" || vhost == "/" {
		vhost = ""
	}
	scheme := "amqp"
	if cfg.UseTLS {
		scheme = "amqps"
	}
	url := fmt.Sprintf("%s://%s:%s@%s:%d/%s", scheme, cfg.User, cfg.Pass, cfg.Host, cfg.Port, vhost)

	var (
		conn *amqp.Connection
		err  error
	)
	if cfg.UseTLS {
		conn, err = amqp.DialTLS(url, &tls.Config{MinVersion: tls.VersionTLS12})
	} else {
		conn, err = amqp.Dial(url)
	}
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	return &Client{conn: conn, ch: ch, acks: acks}, nil
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func (c *Client) Ping() error {
	if c == nil || c.conn == nil || c.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
}

// DeclareAll declares every exchange and queue the floor uses. Safe to call
// from each service on start.
func (c *Client) DeclareAll() error {
	if c == nil || c.ch == nil {
		return fmt.Errorf("nil channel")
	}
	if err := c.ch.ExchangeDeclare(FloorExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", FloorExchange, err)
	}
	if err := c.ch.ExchangeDeclare(NotificationsExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", NotificationsExchange, err)
	}
	if err := c.ch.ExchangeDeclare(DeadLetterExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", DeadLetterExchange, err)
	}
	if _, err := c.ch.QueueDeclare(ArchiveQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    DeadLetterExchange,
		"x-dead-letter-routing-key": ArchiveDeadLetter,
	}); err != nil {
		return fmt.Errorf("declare %s: %w", ArchiveQueue, err)
	}
	if _, err := c.ch.QueueDeclare(ArchiveDeadLetter, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", ArchiveDeadLetter, err)
	}
	if err := c.ch.QueueBind(ArchiveDeadLetter, ArchiveDeadLetter, DeadLetterExchange, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", ArchiveDeadLetter, err)
	}
	for _, key := range ArchiveBindings {
		if err := c.ch.QueueBind(ArchiveQueue, key, FloorExchange, false, nil); err != nil {
			return fmt.Errorf("bind %s to %s: %w", ArchiveQueue, key, err)
		}
	}
	return nil
}

// Publish sends a persistent JSON message and waits for the broker's
// confirm.
func (c *Client) Publish(ctx context.Context, exchange, key, messageID string, body []byte, headers amqp.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ch.PublishWithContext(ctx, exchange, key, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    messageID,
		Timestamp:    time.Now().UTC(),
		Headers:      headers,
		Body:         body,
	}); err != nil {
		return err
	}

	select {
	case conf := <-c.acks:
		if conf.Ack {
			return nil
		}
		return errors.New("publish NACK from broker")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) Consume(queue, consumer string, prefetch int) (<-chan amqp.Delivery, error) {
	if err := c.ch.Qos(prefetch, 0, false); err != nil {
		return nil, err
	}
	return c.ch.Consume(queue, consumer, false, false, false, false, nil)
}

// Subscribe binds a private, auto-deleted queue to a fanout exchange and
// consumes it with auto-ack. Subscribers only see messages sent while they
// are connected.
func (c *Client) Subscribe(exchange, consumer string) (<-chan amqp.Delivery, error) {
	q, err := c.ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare subscriber queue: %w", err)
	}
	if err := c.ch.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind %s to %s: %w", q.Name, exchange, err)
	}
	return c.ch.Consume(q.Name, consumer, true, true, false, false, nil)
}
