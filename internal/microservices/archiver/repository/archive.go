package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"restaurant-floor/internal/common/db"
	"restaurant-floor/internal/domain"
)

var ErrNoOrder = errors.New("event carries no order")

type ArchiveRepositoryInterface interface {
	// SaveOrder stores a settled order with the event that announced it.
	// stored is false when the event was archived before.
	SaveOrder(ctx context.Context, ev domain.FloorEvent, payload []byte) (stored bool, err error)
	// OrdersClosedBetween returns orders with closed_at in [from, to).
	OrdersClosedBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error)
}

type ArchiveRepository struct {
	db *db.Conn
}

func NewArchiveRepository(conn *db.Conn) ArchiveRepositoryInterface {
	return &ArchiveRepository{db: conn}
}

func (r *ArchiveRepository) SaveOrder(ctx context.Context, ev domain.FloorEvent, payload []byte) (bool, error) {
	if ev.Order == nil {
		return false, ErrNoOrder
	}
	o := ev.Order
	if o.ClosedAt == nil {
		return false, fmt.Errorf("order %d has no close time", o.ID)
	}
	eventID, err := uuid.Parse(ev.ID)
	if err != nil {
		return false, fmt.Errorf("event id %q: %w", ev.ID, err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		INSERT INTO order_events (event_id, order_id, event_type, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id) DO NOTHING
	`, eventID, o.ID, string(ev.Type), payload, ev.OccurredAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert order event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, tx.Commit(ctx)
	}

	var archiveID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO orders
		    (event_id, order_id, table_id, status, payment_method, total_cents, discount_cents,
		     service_charge_cents, waiter, notes, created_at, closed_at)
		VALUES
		    ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING archive_id
	`,
		eventID,
		o.ID,
		o.TableID,
		string(o.Status),
		nullIfEmpty(string(o.PaymentMethod)),
		ToCents(o.Total),
		ToCents(o.Discount),
		ToCents(o.ServiceCharge),
		nullIfEmpty(o.Waiter),
		nullIfEmpty(o.Notes),
		o.CreatedAt,
		*o.ClosedAt,
	).Scan(&archiveID)
	if err != nil {
		return false, fmt.Errorf("failed to insert order %d: %w", o.ID, err)
	}

	rows := make([][]any, 0, len(o.Lines))
	for i, l := range o.Lines {
		rows = append(rows, []any{archiveID, int32(i), int32(l.MenuItemID), int32(l.Quantity), ToCents(l.Price)})
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"order_items"},
		[]string{"archive_id", "position", "menu_item_id", "quantity", "price_cents"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return false, fmt.Errorf("failed to insert items of order %d: %w", o.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

func (r *ArchiveRepository) OrdersClosedBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT archive_id, order_id, table_id, status, COALESCE(payment_method, ''),
		       total_cents, discount_cents, service_charge_cents,
		       COALESCE(waiter, ''), COALESCE(notes, ''), created_at, closed_at
		FROM orders
		WHERE closed_at >= $1 AND closed_at < $2
		ORDER BY closed_at, archive_id
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		orders []domain.Order
		ids    []int64
		index  = map[int64]int{}
	)
	for rows.Next() {
		var (
			o                    domain.Order
			archiveID            int64
			status, method       string
			total, discount, svc int64
			closedAt             time.Time
		)
		if err := rows.Scan(&archiveID, &o.ID, &o.TableID, &status, &method,
			&total, &discount, &svc, &o.Waiter, &o.Notes, &o.CreatedAt, &closedAt); err != nil {
			return nil, err
		}
		o.Status = domain.OrderStatus(status)
		o.PaymentMethod = domain.PaymentMethod(method)
		o.Total, o.Discount, o.ServiceCharge = FromCents(total), FromCents(discount), FromCents(svc)
		o.ClosedAt = &closedAt
		index[archiveID] = len(orders)
		ids = append(ids, archiveID)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	items, err := r.db.Query(ctx, `
		SELECT archive_id, menu_item_id, quantity, price_cents
		FROM order_items
		WHERE archive_id = ANY($1)
		ORDER BY archive_id, position
	`, ids)
	if err != nil {
		return nil, err
	}
	defer items.Close()
	for items.Next() {
		var (
			archiveID int64
			l         domain.OrderLine
			price     int64
		)
		if err := items.Scan(&archiveID, &l.MenuItemID, &l.Quantity, &price); err != nil {
			return nil, err
		}
		l.Price = FromCents(price)
		i := index[archiveID]
		orders[i].Lines = append(orders[i].Lines, l)
	}
	return orders, items.Err()
}

// ToCents rounds half away from zero to whole cents.
func ToCents(d decimal.Decimal) int64 { return d.Shift(2).Round(0).IntPart() }

func FromCents(c int64) decimal.Decimal { return decimal.New(c, -2) }

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
