package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"pos-analytics/db"
	"pos-analytics/models"
)

var (
	ErrItemNotFound      = errors.New("item not on this order")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvoiceNotFound   = errors.New("invoice not found")
	ErrOrderLocked       = errors.New("order already sent to the kitchen; record a modification instead")
	ErrReasonRequired    = errors.New("a reason is required for modifications")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrUnauthorized      = errors.New("not authorized")
	ErrAlreadyPlaced     = errors.New("order already placed for this invoice")
)

var statusTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:   {models.OrderStatusPreparing, models.OrderStatusCancelled},
	models.OrderStatusPreparing: {models.OrderStatusReady, models.OrderStatusCancelled},
	models.OrderStatusReady:     {models.OrderStatusDelivered},
	models.OrderStatusDelivered: {models.OrderStatusCompleted},
}

// ValidStatusTransition reports whether an order may move from one status to
// another. Completed and cancelled orders are final.
func ValidStatusTransition(from, to models.OrderStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// statusColumn is the timestamp column stamped when an order enters status.
func statusColumn(status models.OrderStatus) (string, bool) {
	switch status {
	case models.OrderStatusPreparing:
		return "preparing_at", true
	case models.OrderStatusReady:
		return "ready_at", true
	case models.OrderStatusDelivered:
		return "delivered_at", true
	case models.OrderStatusCompleted:
		return "completed_at", true
	case models.OrderStatusCancelled:
		return "cancelled_at", true
	default:
		return "", false
	}
}

func requireStaff(session *models.Session) error {
	if session == nil || session.Role == models.RoleUnknown {
		return ErrUnauthorized
	}
	return nil
}

func itemsSubtotal(items []models.LineItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Price * it.Quantity
	}
	return sum
}

// PlaceOrder turns an open invoice into a pending kitchen order. The invoice
// is claimed with a conditional update, so concurrent placements of the same
// invoice yield exactly one order; the others get ErrAlreadyPlaced.
func PlaceOrder(ctx context.Context, session *models.Session, invoiceID string) (*models.Order, error) {
	if err := requireStaff(session); err != nil {
		return nil, err
	}
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o := models.Order{
		ID:            uuid.NewString(),
		InvoiceID:     invoiceID,
		Status:        models.OrderStatusPending,
		SentToKitchen: true,
	}
	var items []byte
	err = tx.QueryRow(ctx, `
		UPDATE invoices SET order_placed = true, order_id = $2
		WHERE id = $1 AND NOT order_placed
		RETURNING items, subtotal, discount_amount, discount_name, tax, service_charge, total,
			order_type, table_id, table_name, server_id`,
		invoiceID, o.ID,
	).Scan(&items, &o.Subtotal, &o.Discount.Amount, &o.Discount.Name, &o.Tax, &o.ServiceCharge, &o.Total,
		&o.OrderType, &o.Table.ID, &o.Table.Name, &o.ServerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if checkErr := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)`, invoiceID).Scan(&exists); checkErr != nil {
				return nil, checkErr
			}
			if exists {
				return nil, ErrAlreadyPlaced
			}
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("claim invoice: %w", err)
	}
	if err := decodeJSON(items, &o.Items); err != nil {
		return nil, fmt.Errorf("invoice %s items: %w", invoiceID, err)
	}
	if o.ServerID == "" {
		o.ServerID = session.UserID
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (
			id, invoice_id, created_at, items, subtotal, discount_amount, discount_name,
			tax, service_charge, total, order_type, table_id, table_name, server_id,
			status, sent_to_kitchen
		) VALUES ($1, $2, now(), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, true)
		RETURNING created_at`,
		o.ID, invoiceID, string(items), o.Subtotal, o.Discount.Amount, o.Discount.Name,
		o.Tax, o.ServiceCharge, o.Total, o.OrderType, o.Table.ID, o.Table.Name, o.ServerID,
		o.Status.String(),
	).Scan(&o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &o, nil
}

// SetItemQuantity returns a copy of items with itemID set to qty. A
// quantity of zero or less removes the line.
func SetItemQuantity(items []models.LineItem, itemID string, qty float64) ([]models.LineItem, error) {
	out := make([]models.LineItem, 0, len(items))
	found := false
	for _, it := range items {
		if it.ID != itemID {
			out = append(out, it)
			continue
		}
		found = true
		if qty > 0 {
			it.Quantity = qty
			out = append(out, it)
		}
	}
	if !found {
		return nil, ErrItemNotFound
	}
	return out, nil
}

// InvoiceItems returns the lines of an invoice and whether it was placed.
func InvoiceItems(ctx context.Context, invoiceID string) ([]models.LineItem, bool, error) {
	var raw []byte
	var placed bool
	err := db.Pool.QueryRow(ctx, `SELECT items, order_placed FROM invoices WHERE id = $1`, invoiceID).Scan(&raw, &placed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, ErrInvoiceNotFound
		}
		return nil, false, err
	}
	var items []models.LineItem
	if err := decodeJSON(raw, &items); err != nil {
		return nil, false, fmt.Errorf("invoice %s items: %w", invoiceID, err)
	}
	return items, placed, nil
}

// UpdateInvoiceItems replaces the lines of an invoice that has not been
// placed yet. Placed invoices return ErrOrderLocked.
func UpdateInvoiceItems(ctx context.Context, session *models.Session, invoiceID string, items []models.LineItem) error {
	if err := requireStaff(session); err != nil {
		return err
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	tag, err := db.Pool.Exec(ctx, `
		UPDATE invoices
		SET items = $2, subtotal = $3, total = $3 - discount_amount + tax + service_charge
		WHERE id = $1 AND NOT order_placed`,
		invoiceID, string(raw), itemsSubtotal(items),
	)
	if err != nil {
		return fmt.Errorf("update invoice items: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return lockedOrMissing(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)`, invoiceID, ErrInvoiceNotFound)
	}
	return nil
}

// UpdateOrderItems edits an order directly while it has not been sent to the
// kitchen. Afterwards changes go through RecordModification.
func UpdateOrderItems(ctx context.Context, session *models.Session, orderID string, items []models.LineItem) error {
	if err := requireStaff(session); err != nil {
		return err
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	tag, err := db.Pool.Exec(ctx, `
		UPDATE orders
		SET items = $2, subtotal = $3, total = $3 - discount_amount + tax + service_charge, updated_at = now()
		WHERE id = $1 AND NOT sent_to_kitchen`,
		orderID, string(raw), itemsSubtotal(items),
	)
	if err != nil {
		return fmt.Errorf("update order items: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return lockedOrMissing(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID, ErrOrderNotFound)
	}
	return nil
}

func lockedOrMissing(ctx context.Context, existsSQL, id string, missing error) error {
	var exists bool
	if err := db.Pool.QueryRow(ctx, existsSQL, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrOrderLocked
	}
	return missing
}

// NewModification builds a modification entry attributed to session.
func NewModification(session *models.Session, modType, itemID, reason string, at time.Time) (models.Modification, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return models.Modification{}, ErrReasonRequired
	}
	if err := requireStaff(session); err != nil {
		return models.Modification{}, err
	}
	return models.Modification{
		ID:        uuid.NewString(),
		Type:      modType,
		ItemID:    itemID,
		Reason:    reason,
		ActorID:   session.UserID,
		ActorName: session.Name,
		ActorRole: session.Role.String(),
		At:        at.UTC(),
	}, nil
}

// RecordModification appends a change request to an order's modification
// log. The append happens in a single statement, so concurrent requests are
// all kept.
func RecordModification(ctx context.Context, session *models.Session, orderID, modType, itemID, reason string) (*models.Modification, error) {
	m, err := NewModification(session, modType, itemID, reason, time.Now())
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal([]models.Modification{m})
	if err != nil {
		return nil, err
	}
	tag, err := db.Pool.Exec(ctx, `
		UPDATE orders SET modifications = modifications || $2::jsonb
		WHERE id = $1`,
		orderID, string(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("record modification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrOrderNotFound
	}
	return &m, nil
}

// UpdateOrderStatus moves an order along the kitchen workflow and stamps the
// matching timestamp. The update only applies if the status is unchanged
// since it was read; a lost race returns ErrInvalidTransition.
func UpdateOrderStatus(ctx context.Context, session *models.Session, orderID string, to models.OrderStatus) error {
	if err := requireStaff(session); err != nil {
		return err
	}
	col, ok := statusColumn(to)
	if !ok {
		return fmt.Errorf("%w: to %v", ErrInvalidTransition, to)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current string
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, orderID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return err
	}
	from := models.ParseOrderStatus(current)
	if !ValidStatusTransition(from, to) {
		return fmt.Errorf("%w: %v to %v", ErrInvalidTransition, from, to)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE orders SET status = $2, `+col+` = now(), updated_at = now()
		WHERE id = $1 AND status = $3`,
		orderID, to.String(), current,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %v changed concurrently", ErrInvalidTransition, from)
	}
	return tx.Commit(ctx)
}

// GetOrder loads one order.
func GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	o, err := scanOrder(db.Pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}
