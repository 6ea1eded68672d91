package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"

	"pos-analytics/models"
)

// Dump is an export of the point-of-sale collections keyed by table name.
type Dump struct {
	Employees      []models.Employee         `json:"employees"`
	InventoryItems []models.InventoryItem    `json:"inventory_items"`
	MenuItems      []models.MenuItem         `json:"menu_items"`
	Orders         []models.Order            `json:"orders"`
	InventoryUsage []models.UsageRecord      `json:"inventory_usage"`
	Shifts         []models.Shift            `json:"employee_shifts"`
	Expenses       []models.Expense          `json:"expenses"`
	Feedback       []models.Feedback         `json:"customer_feedback"`
	Waste          []models.WasteRecord      `json:"waste_records"`
	Deliveries     []models.SupplierDelivery `json:"supplier_deliveries"`
}

func idOrNew(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func jsonArg(v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Statements converts the dump into idempotent inserts. Rows whose id already
// exists are left untouched.
func (d *Dump) Statements() ([]Statement, error) {
	var out []Statement
	add := func(sql string, args ...interface{}) {
		out = append(out, Statement{SQL: sql, Args: args})
	}

	for _, e := range d.Employees {
		add(`INSERT INTO employees (id, name, role, hourly_rate, overtime_rate, is_active)
			VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (id) DO NOTHING`,
			idOrNew(e.ID), e.Name, e.Role.String(), e.HourlyRate, e.OvertimeRate, e.Active)
	}
	for _, it := range d.InventoryItems {
		history, err := jsonArg(nonNil(it.History))
		if err != nil {
			return nil, fmt.Errorf("inventory %s: %w", it.ID, err)
		}
		add(`INSERT INTO inventory_items (id, name, quantity, unit, cost_per_unit, min_quantity, type, history)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (id) DO NOTHING`,
			idOrNew(it.ID), it.Name, it.Quantity, it.Unit, it.CostPerUnit, it.MinQuantity, it.Type.String(), history)
	}
	for _, m := range d.MenuItems {
		ingredients, err := jsonArg(nonNil(m.Ingredients))
		if err != nil {
			return nil, fmt.Errorf("menu item %s: %w", m.ID, err)
		}
		add(`INSERT INTO menu_items (id, name, price, category, ingredients)
			VALUES ($1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`,
			idOrNew(m.ID), m.Name, m.Price, m.Category, ingredients)
	}
	for _, o := range d.Orders {
		items, err := jsonArg(nonNil(o.Items))
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", o.ID, err)
		}
		mods, err := jsonArg(nonNil(o.Modifications))
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", o.ID, err)
		}
		var invoiceID interface{}
		if o.InvoiceID != "" {
			invoiceID = o.InvoiceID
		}
		add(`INSERT INTO orders (id, invoice_id, created_at, updated_at, items, subtotal, discount_amount,
				discount_name, tax, service_charge, total, order_type, table_id, table_name, server_id,
				status, sent_to_kitchen, modifications, preparing_at, ready_at, completed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
			ON CONFLICT (id) DO NOTHING`,
			idOrNew(o.ID), invoiceID, o.CreatedAt, o.UpdatedAt, items, o.Subtotal, o.Discount.Amount,
			o.Discount.Name, o.Tax, o.ServiceCharge, o.Total, o.OrderType, o.Table.ID, o.Table.Name, o.ServerID,
			o.Status.String(), o.SentToKitchen, mods, o.PreparingAt, o.ReadyAt, o.CompletedAt)
	}
	for _, u := range d.InventoryUsage {
		add(`INSERT INTO inventory_usage (id, item_id, quantity, cost, date) VALUES ($1, $2, $3, $4, $5)`,
			uuid.NewString(), u.ItemID, u.Quantity, u.Cost, u.Date)
	}
	for _, s := range d.Shifts {
		add(`INSERT INTO employee_shifts (id, employee_id, employee_role, date, scheduled_start, scheduled_end,
				actual_start, actual_end, hours_worked, is_late, late_by, regular_hours, overtime_hours,
				regular_pay, overtime_pay, total_pay)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			ON CONFLICT (id) DO NOTHING`,
			idOrNew(s.ID), s.EmployeeID, s.EmployeeRole.String(), s.Date, s.ScheduledStart, s.ScheduledEnd,
			s.ActualStart, s.ActualEnd, s.HoursWorked, s.IsLate, s.LateBy, s.RegularHours, s.OvertimeHours,
			s.RegularPay, s.OvertimePay, s.TotalPay)
	}
	for _, e := range d.Expenses {
		add(`INSERT INTO expenses (id, category, amount, date, vendor, payment_method, is_recurring)
			VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (id) DO NOTHING`,
			idOrNew(e.ID), e.Category, e.Amount, e.Date, e.Vendor, e.PaymentMethod, e.Recurring)
	}
	for _, f := range d.Feedback {
		categories, err := jsonArg(f.Categories)
		if err != nil {
			return nil, fmt.Errorf("feedback %s: %w", f.ID, err)
		}
		add(`INSERT INTO customer_feedback (id, order_id, rating, comment, categories, created_at)
			VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (id) DO NOTHING`,
			idOrNew(f.ID), f.OrderID, f.Rating, f.Comment, categories, f.CreatedAt)
	}
	for _, w := range d.Waste {
		add(`INSERT INTO waste_records (id, item_id, item_name, quantity, cost, date, reason)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.NewString(), w.ItemID, w.ItemName, w.Quantity, w.Cost, w.Date, w.Reason)
	}
	for _, dl := range d.Deliveries {
		lines, err := jsonArg(nonNil(dl.Lines))
		if err != nil {
			return nil, fmt.Errorf("delivery %s: %w", dl.ID, err)
		}
		add(`INSERT INTO supplier_deliveries (id, supplier_name, delivered_at, lines, total_cost, is_on_time, is_complete, is_correct)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (id) DO NOTHING`,
			idOrNew(dl.ID), dl.SupplierName, dl.DeliveredAt, lines, dl.TotalCost, dl.OnTime, dl.Complete, dl.Correct)
	}
	return out, nil
}

// nonNil keeps empty JSON arrays from being encoded as null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// DecodeDump reads a JSON dump.
func DecodeDump(r io.Reader) (*Dump, error) {
	var d Dump
	dec := json.NewDecoder(r)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode dump: %w", err)
	}
	return &d, nil
}

// ImportRecords loads a JSON dump through w and returns the number of rows
// written.
func ImportRecords(ctx context.Context, w BatchWriter, r io.Reader) (int, error) {
	d, err := DecodeDump(r)
	if err != nil {
		return 0, err
	}
	stmts, err := d.Statements()
	if err != nil {
		return 0, err
	}
	return w.Write(ctx, stmts)
}
