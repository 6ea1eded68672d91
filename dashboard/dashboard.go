// Package dashboard fetches point-of-sale records for a date range and runs
// the analytics aggregators over them, one report per section.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"pos-analytics/analytics"
	"pos-analytics/logging"
	"pos-analytics/metrics"
	"pos-analytics/models"
)

// Collection names, used for failure reporting and metrics labels.
const (
	CollectionOrders     = "orders"
	CollectionInventory  = "inventory_items"
	CollectionMenu       = "menu_items"
	CollectionUsage      = "inventory_usage"
	CollectionEmployees  = "employees"
	CollectionShifts     = "employee_shifts"
	CollectionExpenses   = "expenses"
	CollectionFeedback   = "customer_feedback"
	CollectionWaste      = "waste_records"
	CollectionDeliveries = "supplier_deliveries"
)

var ErrForbidden = errors.New("dashboard: role may not view analytics")

// Source reads records from the backing store. Range-scoped calls return only
// records dated inside r.
type Source interface {
	Orders(ctx context.Context, r analytics.Range) ([]models.Order, error)
	InventoryItems(ctx context.Context) ([]models.InventoryItem, error)
	MenuItems(ctx context.Context) ([]models.MenuItem, error)
	InventoryUsage(ctx context.Context, r analytics.Range) ([]models.UsageRecord, error)
	Employees(ctx context.Context) ([]models.Employee, error)
	Shifts(ctx context.Context, r analytics.Range) ([]models.Shift, error)
	Expenses(ctx context.Context, r analytics.Range) ([]models.Expense, error)
	Feedback(ctx context.Context, r analytics.Range) ([]models.Feedback, error)
	Waste(ctx context.Context, r analytics.Range) ([]models.WasteRecord, error)
	Deliveries(ctx context.Context, r analytics.Range) ([]models.SupplierDelivery, error)
}

type Section int

const (
	SectionOverview Section = iota
	SectionSales
	SectionInventory
	SectionEmployees
	SectionFinancial
	SectionCustomers
)

// Sections lists every section in display order.
var Sections = []Section{
	SectionOverview,
	SectionSales,
	SectionInventory,
	SectionEmployees,
	SectionFinancial,
	SectionCustomers,
}

var sectionNames = map[Section]string{
	SectionOverview:  "overview",
	SectionSales:     "sales",
	SectionInventory: "inventory",
	SectionEmployees: "employees",
	SectionFinancial: "financial",
	SectionCustomers: "customers",
}

func (s Section) String() string {
	if n, ok := sectionNames[s]; ok {
		return n
	}
	return fmt.Sprintf("section(%d)", int(s))
}

// ParseSection maps a section name to its Section.
func ParseSection(name string) (Section, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range sectionNames {
		if n == name {
			return s, true
		}
	}
	return 0, false
}

// Allowed reports whether role may view section. Only admins and managers
// see analytics.
func Allowed(role models.Role, section Section) bool {
	if _, ok := sectionNames[section]; !ok {
		return false
	}
	switch role {
	case models.RoleAdmin, models.RoleManager:
		return true
	default:
		return false
	}
}

// Options tunes report content. Zero values fall back to defaults.
type Options struct {
	Location *time.Location
	TopItems int
	Buffers  analytics.BufferTable
	Keywords analytics.KeywordTable
	Dietary  analytics.DietaryTable
	Handling analytics.HandlingTimeSource
	Now      func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.TopItems <= 0 {
		o.TopItems = 10
	}
	if o.Buffers == nil {
		o.Buffers = analytics.DefaultBufferTable
	}
	if o.Keywords.Categories == nil {
		o.Keywords = analytics.DefaultCommentKeywords
	}
	if o.Dietary.Labels == nil {
		o.Dietary = analytics.DefaultDietaryTokens
	}
	if o.Handling == nil {
		o.Handling = analytics.TimestampSource{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type Dashboard struct {
	src    Source
	opts   Options
	logger zerolog.Logger
}

func New(src Source, opts Options) *Dashboard {
	return &Dashboard{
		src:    src,
		opts:   opts.withDefaults(),
		logger: logging.New("dashboard"),
	}
}

// Options returns the effective options.
func (d *Dashboard) Options() Options { return d.opts }

// Failure records a collection that could not be fetched. The report was
// computed as if the collection were empty.
type Failure struct {
	Collection string
	Err        error
}

type Report struct {
	Section     Section
	Range       analytics.Range
	GeneratedAt time.Time
	Failures    []Failure

	Overview  *Overview
	Sales     *SalesReport
	Inventory *InventoryReport
	Employees *EmployeeReport
	Financial *FinancialReport
	Customers *CustomerReport
}

// Partial reports whether any collection failed to load.
func (r *Report) Partial() bool { return len(r.Failures) > 0 }

// Load builds one section for session. A fetch failure never fails the load:
// it is logged, counted and listed in Report.Failures.
func (d *Dashboard) Load(ctx context.Context, session *models.Session, section Section, r analytics.Range) (*Report, error) {
	if session == nil || !Allowed(session.Role, section) {
		return nil, ErrForbidden
	}
	rep := &Report{Section: section, Range: r, GeneratedAt: d.opts.Now()}
	switch section {
	case SectionOverview:
		rep.Overview = d.overview(ctx, rep)
	case SectionSales:
		rep.Sales = d.sales(ctx, rep)
	case SectionInventory:
		rep.Inventory = d.inventory(ctx, rep)
	case SectionEmployees:
		rep.Employees = d.employees(ctx, rep)
	case SectionFinancial:
		rep.Financial = d.financial(ctx, rep)
	case SectionCustomers:
		rep.Customers = d.customers(ctx, rep)
	}
	return rep, nil
}

// LoadAll builds every section concurrently. Reports are returned in
// Sections order.
func (d *Dashboard) LoadAll(ctx context.Context, session *models.Session, r analytics.Range) ([]*Report, error) {
	if session == nil || !session.CanManage() {
		return nil, ErrForbidden
	}
	start := time.Now()
	reports := make([]*Report, len(Sections))
	errs := make([]error, len(Sections))
	var wg sync.WaitGroup
	for i, s := range Sections {
		wg.Add(1)
		go func(i int, s Section) {
			defer wg.Done()
			reports[i], errs[i] = d.Load(ctx, session, s, r)
		}(i, s)
	}
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	metrics.RefreshSeconds.Observe(time.Since(start).Seconds())
	result := metrics.ResultOK
	for _, rep := range reports {
		if rep.Partial() {
			result = metrics.ResultPartial
			break
		}
	}
	metrics.RefreshTotal.WithLabelValues(result).Inc()
	return reports, nil
}

func fetch[T any](ctx context.Context, d *Dashboard, rep *Report, collection string, get func(context.Context) ([]T, error)) []T {
	items, err := get(ctx)
	if err != nil {
		d.logger.Error().Err(err).
			Str(logging.COLLECTION, collection).
			Str(logging.SECTION, rep.Section.String()).
			Msg("fetch failed")
		metrics.FetchFailures.WithLabelValues(collection).Inc()
		rep.Failures = append(rep.Failures, Failure{Collection: collection, Err: err})
		return nil
	}
	return items
}

func (d *Dashboard) orders(ctx context.Context, rep *Report) []models.Order {
	return fetch(ctx, d, rep, CollectionOrders, func(ctx context.Context) ([]models.Order, error) {
		return d.src.Orders(ctx, rep.Range)
	})
}

func (d *Dashboard) inventoryItems(ctx context.Context, rep *Report) []models.InventoryItem {
	return fetch(ctx, d, rep, CollectionInventory, d.src.InventoryItems)
}

func (d *Dashboard) menuItems(ctx context.Context, rep *Report) []models.MenuItem {
	return fetch(ctx, d, rep, CollectionMenu, d.src.MenuItems)
}

func (d *Dashboard) usage(ctx context.Context, rep *Report) []models.UsageRecord {
	return fetch(ctx, d, rep, CollectionUsage, func(ctx context.Context) ([]models.UsageRecord, error) {
		return d.src.InventoryUsage(ctx, rep.Range)
	})
}

func (d *Dashboard) staff(ctx context.Context, rep *Report) []models.Employee {
	return fetch(ctx, d, rep, CollectionEmployees, d.src.Employees)
}

func (d *Dashboard) shifts(ctx context.Context, rep *Report) []models.Shift {
	return fetch(ctx, d, rep, CollectionShifts, func(ctx context.Context) ([]models.Shift, error) {
		return d.src.Shifts(ctx, rep.Range)
	})
}

func (d *Dashboard) expenses(ctx context.Context, rep *Report) []models.Expense {
	return fetch(ctx, d, rep, CollectionExpenses, func(ctx context.Context) ([]models.Expense, error) {
		return d.src.Expenses(ctx, rep.Range)
	})
}

func (d *Dashboard) feedback(ctx context.Context, rep *Report) []models.Feedback {
	return fetch(ctx, d, rep, CollectionFeedback, func(ctx context.Context) ([]models.Feedback, error) {
		return d.src.Feedback(ctx, rep.Range)
	})
}

func (d *Dashboard) waste(ctx context.Context, rep *Report) []models.WasteRecord {
	return fetch(ctx, d, rep, CollectionWaste, func(ctx context.Context) ([]models.WasteRecord, error) {
		return d.src.Waste(ctx, rep.Range)
	})
}

func (d *Dashboard) deliveries(ctx context.Context, rep *Report) []models.SupplierDelivery {
	return fetch(ctx, d, rep, CollectionDeliveries, func(ctx context.Context) ([]models.SupplierDelivery, error) {
		return d.src.Deliveries(ctx, rep.Range)
	})
}
