package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"pos-analytics/db"
	"pos-analytics/models"
)

func TestValidStatusTransition(t *testing.T) {
	tests := []struct {
		from, to models.OrderStatus
		want     bool
	}{
		{models.OrderStatusPending, models.OrderStatusPreparing, true},
		{models.OrderStatusPending, models.OrderStatusCancelled, true},
		{models.OrderStatusPending, models.OrderStatusReady, false},
		{models.OrderStatusPreparing, models.OrderStatusReady, true},
		{models.OrderStatusPreparing, models.OrderStatusCancelled, true},
		{models.OrderStatusReady, models.OrderStatusDelivered, true},
		{models.OrderStatusReady, models.OrderStatusCancelled, false},
		{models.OrderStatusDelivered, models.OrderStatusCompleted, true},
		{models.OrderStatusCompleted, models.OrderStatusPending, false},
		{models.OrderStatusCancelled, models.OrderStatusPending, false},
		{models.OrderStatusUnknown, models.OrderStatusPreparing, false},
		{models.OrderStatusPending, models.OrderStatusPending, false},
	}
	for _, tt := range tests {
		got := ValidStatusTransition(tt.from, tt.to)
		if got != tt.want {
			t.Errorf("ValidStatusTransition(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestStatusColumn(t *testing.T) {
	tests := []struct {
		status models.OrderStatus
		col    string
		ok     bool
	}{
		{models.OrderStatusPreparing, "preparing_at", true},
		{models.OrderStatusReady, "ready_at", true},
		{models.OrderStatusDelivered, "delivered_at", true},
		{models.OrderStatusCompleted, "completed_at", true},
		{models.OrderStatusCancelled, "cancelled_at", true},
		{models.OrderStatusPending, "", false},
		{models.OrderStatusUnknown, "", false},
	}
	for _, tt := range tests {
		col, ok := statusColumn(tt.status)
		if col != tt.col || ok != tt.ok {
			t.Errorf("statusColumn(%v) = %q, %v, want %q, %v", tt.status, col, ok, tt.col, tt.ok)
		}
	}
}

func TestRequireStaff(t *testing.T) {
	if err := requireStaff(nil); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("requireStaff(nil) = %v, want ErrUnauthorized", err)
	}
	if err := requireStaff(&models.Session{Role: models.RoleUnknown}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("requireStaff(unknown) = %v, want ErrUnauthorized", err)
	}
	if err := requireStaff(&models.Session{Role: models.RoleWaiter}); err != nil {
		t.Errorf("requireStaff(waiter) = %v, want nil", err)
	}
}

func TestItemsSubtotal(t *testing.T) {
	items := []models.LineItem{
		{ID: "a", Price: 10, Quantity: 2},
		{ID: "b", Price: 2.5, Quantity: 4},
	}
	if got := itemsSubtotal(items); got != 30 {
		t.Errorf("itemsSubtotal = %v, want 30", got)
	}
	if got := itemsSubtotal(nil); got != 0 {
		t.Errorf("itemsSubtotal(nil) = %v, want 0", got)
	}
}

func TestSetItemQuantity(t *testing.T) {
	items := []models.LineItem{
		{ID: "burger", Name: "Burger", Price: 12, Quantity: 1},
		{ID: "fries", Name: "Fries", Price: 4, Quantity: 2},
	}

	got, err := SetItemQuantity(items, "burger", 3)
	if err != nil {
		t.Fatalf("SetItemQuantity(burger, 3) error = %v", err)
	}
	if len(got) != 2 || got[0].Quantity != 3 || got[1].Quantity != 2 {
		t.Errorf("SetItemQuantity(burger, 3) = %+v", got)
	}
	if items[0].Quantity != 1 {
		t.Errorf("input modified: burger quantity = %v, want 1", items[0].Quantity)
	}

	got, err = SetItemQuantity(items, "fries", 0)
	if err != nil {
		t.Fatalf("SetItemQuantity(fries, 0) error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "burger" {
		t.Errorf("SetItemQuantity(fries, 0) = %+v, want only burger", got)
	}

	if _, err := SetItemQuantity(items, "salad", 1); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("SetItemQuantity(salad) error = %v, want ErrItemNotFound", err)
	}
}

func TestNewModification(t *testing.T) {
	waiter := &models.Session{UserID: "e1", Name: "Ana", Role: models.RoleWaiter}
	at := time.Date(2026, 10, 15, 12, 30, 0, 0, time.FixedZone("X", 3600))

	if _, err := NewModification(waiter, models.ModificationRemoveItem, "i1", "   ", at); !errors.Is(err, ErrReasonRequired) {
		t.Errorf("blank reason: err = %v, want ErrReasonRequired", err)
	}
	if _, err := NewModification(nil, models.ModificationNote, "", "allergy", at); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("nil session: err = %v, want ErrUnauthorized", err)
	}

	m, err := NewModification(waiter, models.ModificationRemoveItem, "i1", "  customer changed mind ", at)
	if err != nil {
		t.Fatalf("NewModification: %v", err)
	}
	if m.ID == "" {
		t.Error("modification has no id")
	}
	if m.Reason != "customer changed mind" {
		t.Errorf("Reason = %q, want trimmed", m.Reason)
	}
	if m.ActorID != "e1" || m.ActorName != "Ana" || m.ActorRole != "Waiter" {
		t.Errorf("actor = %s/%s/%s, want e1/Ana/Waiter", m.ActorID, m.ActorName, m.ActorRole)
	}
	if !m.At.Equal(at) || m.At.Location() != time.UTC {
		t.Errorf("At = %v, want %v in UTC", m.At, at)
	}
}

func TestValidInventoryAction(t *testing.T) {
	for _, a := range []string{InventoryActionRestock, InventoryActionAdjustment, InventoryActionUsage} {
		if !validInventoryAction(a) {
			t.Errorf("validInventoryAction(%q) = false, want true", a)
		}
	}
	if validInventoryAction("steal") {
		t.Error("validInventoryAction(\"steal\") = true, want false")
	}
}

func TestAdjustInventoryRequiresManager(t *testing.T) {
	waiter := &models.Session{UserID: "e1", Role: models.RoleWaiter}
	_, err := AdjustInventory(context.Background(), waiter, "flour", -1, InventoryActionUsage)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("AdjustInventory(waiter) = %v, want ErrUnauthorized", err)
	}
}

func TestOrderLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping order integration test in short mode")
	}
	if db.Pool == nil {
		t.Skip("skipping order integration test: no DB pool")
	}
	ctx := context.Background()
	session := &models.Session{UserID: "it-waiter", Name: "IT", Role: models.RoleWaiter}
	const invoiceID = "it-invoice-1"

	_, _ = db.Pool.Exec(ctx, `DELETE FROM orders WHERE invoice_id = $1`, invoiceID)
	_, _ = db.Pool.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, invoiceID)
	_, err := db.Pool.Exec(ctx, `INSERT INTO invoices (id, items, order_type) VALUES ($1, '[]'::jsonb, 'dine-in')`, invoiceID)
	if err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	defer func() {
		_, _ = db.Pool.Exec(ctx, `DELETE FROM orders WHERE invoice_id = $1`, invoiceID)
		_, _ = db.Pool.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, invoiceID)
	}()

	items := []models.LineItem{{ID: "burger", Name: "Burger", Price: 10, Quantity: 2}}
	if err := UpdateInvoiceItems(ctx, session, invoiceID, items); err != nil {
		t.Fatalf("UpdateInvoiceItems: %v", err)
	}
	o, err := PlaceOrder(ctx, session, invoiceID)
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if o.Subtotal != 20 || o.Status != models.OrderStatusPending {
		t.Errorf("placed order subtotal=%v status=%v, want 20 pending", o.Subtotal, o.Status)
	}
	if _, err := PlaceOrder(ctx, session, invoiceID); !errors.Is(err, ErrAlreadyPlaced) {
		t.Errorf("second PlaceOrder = %v, want ErrAlreadyPlaced", err)
	}
	if err := UpdateInvoiceItems(ctx, session, invoiceID, items); !errors.Is(err, ErrOrderLocked) {
		t.Errorf("UpdateInvoiceItems after placement = %v, want ErrOrderLocked", err)
	}
	if err := UpdateOrderItems(ctx, session, o.ID, items); !errors.Is(err, ErrOrderLocked) {
		t.Errorf("UpdateOrderItems after kitchen = %v, want ErrOrderLocked", err)
	}
	if _, err := RecordModification(ctx, session, o.ID, models.ModificationNote, "", "no onions"); err != nil {
		t.Fatalf("RecordModification: %v", err)
	}
	if err := UpdateOrderStatus(ctx, session, o.ID, models.OrderStatusReady); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("pending -> ready = %v, want ErrInvalidTransition", err)
	}
	if err := UpdateOrderStatus(ctx, session, o.ID, models.OrderStatusPreparing); err != nil {
		t.Fatalf("pending -> preparing: %v", err)
	}
	got, err := GetOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got.Status != models.OrderStatusPreparing || got.PreparingAt == nil {
		t.Errorf("status=%v preparingAt=%v, want preparing with timestamp", got.Status, got.PreparingAt)
	}
	if len(got.Modifications) != 1 || got.Modifications[0].Reason != "no onions" {
		t.Errorf("modifications = %+v, want one \"no onions\"", got.Modifications)
	}
}
