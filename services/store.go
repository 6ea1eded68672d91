package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pos-analytics/analytics"
	"pos-analytics/dashboard"
	"pos-analytics/models"
)

// Store reads dashboard records from Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// rangeFilter returns a WHERE condition on col for r using $1 and $2.
// Custom ranges include their end instant.
func rangeFilter(col string, r analytics.Range) string {
	op := "<"
	if r.Inclusive {
		op = "<="
	}
	return fmt.Sprintf("%s >= $1 AND %s %s $2", col, col, op)
}

func decodeJSON(raw []byte, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// collect scans every row with scan and closes rows.
func collect[T any](rows pgx.Rows, scan func(pgx.Rows) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

const orderColumns = `id, COALESCE(invoice_id, ''), created_at, updated_at, items,
	subtotal, discount_amount, discount_name, tax, service_charge, total,
	order_type, table_id, table_name, server_id, status, sent_to_kitchen,
	modifications, preparing_at, ready_at, completed_at`

func scanOrder(row pgx.Row) (models.Order, error) {
	var o models.Order
	var items, mods []byte
	var status string
	err := row.Scan(&o.ID, &o.InvoiceID, &o.CreatedAt, &o.UpdatedAt, &items,
		&o.Subtotal, &o.Discount.Amount, &o.Discount.Name, &o.Tax, &o.ServiceCharge, &o.Total,
		&o.OrderType, &o.Table.ID, &o.Table.Name, &o.ServerID, &status, &o.SentToKitchen,
		&mods, &o.PreparingAt, &o.ReadyAt, &o.CompletedAt)
	if err != nil {
		return o, err
	}
	o.Status = models.ParseOrderStatus(status)
	if err := decodeJSON(items, &o.Items); err != nil {
		return o, fmt.Errorf("order %s items: %w", o.ID, err)
	}
	if err := decodeJSON(mods, &o.Modifications); err != nil {
		return o, fmt.Errorf("order %s modifications: %w", o.ID, err)
	}
	return o, nil
}

func (s *Store) Orders(ctx context.Context, r analytics.Range) ([]models.Order, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+rangeFilter("created_at", r)+` ORDER BY created_at`, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (models.Order, error) { return scanOrder(row) })
}

func (s *Store) InventoryItems(ctx context.Context) ([]models.InventoryItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, quantity, unit, cost_per_unit, min_quantity, type, history
		FROM inventory_items ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (models.InventoryItem, error) {
		var it models.InventoryItem
		var typ string
		var history []byte
		if err := row.Scan(&it.ID, &it.Name, &it.Quantity, &it.Unit, &it.CostPerUnit, &it.MinQuantity, &typ, &history); err != nil {
			return it, err
		}
		it.Type = models.ParseIngredientType(typ)
		if err := decodeJSON(history, &it.History); err != nil {
			return it, fmt.Errorf("inventory %s history: %w", it.ID, err)
		}
		return it, nil
	})
}

func (s *Store) MenuItems(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, price, category, ingredients FROM menu_items ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query menu: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (models.MenuItem, error) {
		var m models.MenuItem
		var ingredients []byte
		if err := row.Scan(&m.ID, &m.Name, &m.Price, &m.Category, &ingredients); err != nil {
			return m, err
		}
		if err := decodeJSON(ingredients, &m.Ingredients); err != nil {
			return m, fmt.Errorf("menu item %s ingredients: %w", m.ID, err)
		}
		return m, nil
	})
}

func (s *Store) InventoryUsage(ctx context.Context, r analytics.Range) ([]models.UsageRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT item_id, quantity, cost, date FROM inventory_usage WHERE `+rangeFilter("date", r), r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (models.UsageRecord, error) {
		var u models.UsageRecord
		err := row.Scan(&u.ItemID, &u.Quantity, &u.Cost, &u.Date)
		return u, err
	})
}

func (s *Store) Employees(ctx context.Context) ([]models.Employee, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, role, hourly_rate, overtime_rate, is_active
		FROM employees ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (models.Employee, error) {
		var e models.Employee
		var role string
		if err := row.Scan(&e.ID, &e.Name, &role, &e.HourlyRate, &e.OvertimeRate, &e.Active); err != nil {
			return e, err
		}
		e.Role = models.ParseRole(role)
		return e, nil
	})
}

func (s *Store) Shifts(ctx context.Context, r analytics.Range) ([]models.Shift, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, employee_id, employee_role, date, scheduled_start, scheduled_end,
			actual_start, actual_end, hours_worked, is_late, late_by,
			regular_hours, overtime_hours, regular_pay, overtime_pay, total_pay
		FROM employee_shifts WHERE `+rangeFilter("date", r), r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("query shifts: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (models.Shift, error) {
		var sh models.Shift
		var role string
		err := row.Scan(&sh.ID, &sh.EmployeeID, &role, &sh.Date, &sh.ScheduledStart, &sh.ScheduledEnd,
			&sh.ActualStart, &sh.ActualEnd, &sh.HoursWorked, &sh.IsLate, &sh.LateBy,
			&sh.RegularHours, &sh.OvertimeHours, &sh.RegularPay, &sh.OvertimePay, &sh.TotalPay)
		sh.EmployeeRole = models.ParseRole(role)
		return sh, err
	})
}

func (s *Store) Expenses(ctx context.Context, r analytics.Range) ([]models.Expense, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, category, amount, date, vendor, payment_method, is_recurring
		FROM expenses WHERE `+rangeFilter("date", r), r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (models.Expense, error) {
		var e models.Expense
		err := row.Scan(&e.ID, &e.Category, &e.Amount, &e.Date, &e.Vendor, &e.PaymentMethod, &e.Recurring)
		return e, err
	})
}

func (s *Store) Feedback(ctx context.Context, r analytics.Range) ([]models.Feedback, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, order_id, rating, comment, categories, created_at
		FROM customer_feedback WHERE `+rangeFilter("created_at", r), r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (models.Feedback, error) {
		var f models.Feedback
		var categories []byte
		if err := row.Scan(&f.ID, &f.OrderID, &f.Rating, &f.Comment, &categories, &f.CreatedAt); err != nil {
			return f, err
		}
		if err := decodeJSON(categories, &f.Categories); err != nil {
			return f, fmt.Errorf("feedback %s categories: %w", f.ID, err)
		}
		return f, nil
	})
}

func (s *Store) Waste(ctx context.Context, r analytics.Range) ([]models.WasteRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT item_id, item_name, quantity, cost, date, reason
		FROM waste_records WHERE `+rangeFilter("date", r), r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("query waste: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (models.WasteRecord, error) {
		var w models.WasteRecord
		err := row.Scan(&w.ItemID, &w.ItemName, &w.Quantity, &w.Cost, &w.Date, &w.Reason)
		return w, err
	})
}

func (s *Store) Deliveries(ctx context.Context, r analytics.Range) ([]models.SupplierDelivery, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, supplier_name, delivered_at, lines, total_cost, is_on_time, is_complete, is_correct
		FROM supplier_deliveries WHERE `+rangeFilter("delivered_at", r), r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (models.SupplierDelivery, error) {
		var d models.SupplierDelivery
		var lines []byte
		if err := row.Scan(&d.ID, &d.SupplierName, &d.DeliveredAt, &lines, &d.TotalCost, &d.OnTime, &d.Complete, &d.Correct); err != nil {
			return d, err
		}
		if err := decodeJSON(lines, &d.Lines); err != nil {
			return d, fmt.Errorf("delivery %s lines: %w", d.ID, err)
		}
		return d, nil
	})
}

var _ dashboard.Source = (*Store)(nil)
