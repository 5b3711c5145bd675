package db

import (
	"context"
	"fmt"
)

// Schema is the archive layout. Amounts are stored in cents. Floor order ids
// restart with the floor process, so archived orders get their own key and
// the event id is what makes an archive write idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS order_events (
    event_id    UUID        PRIMARY KEY,
    order_id    INTEGER     NOT NULL,
    event_type  TEXT        NOT NULL,
    payload     JSONB       NOT NULL,
    occurred_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
    archive_id           BIGSERIAL   PRIMARY KEY,
    event_id             UUID        NOT NULL UNIQUE REFERENCES order_events (event_id),
    order_id             INTEGER     NOT NULL,
    table_id             INTEGER     NOT NULL,
    status               TEXT        NOT NULL,
    payment_method       TEXT,
    total_cents          BIGINT      NOT NULL,
    discount_cents       BIGINT      NOT NULL DEFAULT 0,
    service_charge_cents BIGINT      NOT NULL DEFAULT 0,
    waiter               TEXT,
    notes                TEXT,
    created_at           TIMESTAMPTZ NOT NULL,
    closed_at            TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS orders_closed_at_idx ON orders (closed_at);

CREATE TABLE IF NOT EXISTS order_items (
    archive_id   BIGINT  NOT NULL REFERENCES orders (archive_id) ON DELETE CASCADE,
    position     INTEGER NOT NULL,
    menu_item_id INTEGER NOT NULL,
    quantity     INTEGER NOT NULL CHECK (quantity >= 1),
    price_cents  BIGINT  NOT NULL,
    PRIMARY KEY (archive_id, position)
);
`

func (c *Conn) Migrate(ctx context.Context) error {
	if _, err := c.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
