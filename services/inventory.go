package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"pos-analytics/db"
	"pos-analytics/models"
)

// Inventory history actions.
const (
	InventoryActionRestock    = "restock"
	InventoryActionAdjustment = "adjustment"
	InventoryActionUsage      = "usage"
)

var ErrInventoryItemNotFound = errors.New("inventory item not found")

func validInventoryAction(action string) bool {
	switch action {
	case InventoryActionRestock, InventoryActionAdjustment, InventoryActionUsage:
		return true
	}
	return false
}

// AdjustInventory changes an item's quantity by delta and appends the change
// to its history. Usage also lands in inventory_usage, costed at the item's
// unit cost, so depletion and COGS see it. Only managers may adjust stock.
func AdjustInventory(ctx context.Context, session *models.Session, itemID string, delta float64, action string) (float64, error) {
	if !session.CanManage() {
		return 0, ErrUnauthorized
	}
	if !validInventoryAction(action) {
		return 0, fmt.Errorf("unknown inventory action %q", action)
	}
	now := time.Now().UTC()
	entry := models.InventoryUpdate{
		ID:       uuid.NewString(),
		Action:   action,
		Quantity: delta,
		ActorID:  session.UserID,
		At:       now,
	}
	raw, err := json.Marshal([]models.InventoryUpdate{entry})
	if err != nil {
		return 0, err
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var quantity, costPerUnit float64
	err = tx.QueryRow(ctx, `
		UPDATE inventory_items
		SET quantity = quantity + $2, history = history || $3::jsonb
		WHERE id = $1
		RETURNING quantity, cost_per_unit`,
		itemID, delta, string(raw),
	).Scan(&quantity, &costPerUnit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrInventoryItemNotFound
		}
		return 0, fmt.Errorf("adjust inventory: %w", err)
	}

	if action == InventoryActionUsage && delta < 0 {
		used := -delta
		_, err = tx.Exec(ctx, `
			INSERT INTO inventory_usage (id, item_id, quantity, cost, date)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.NewString(), itemID, used, used*costPerUnit, now,
		)
		if err != nil {
			return 0, fmt.Errorf("record usage: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return quantity, nil
}
