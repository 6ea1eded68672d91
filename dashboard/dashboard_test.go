package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pos-analytics/analytics"
	"pos-analytics/models"
)

type fakeSource struct {
	orders     []models.Order
	items      []models.InventoryItem
	menu       []models.MenuItem
	usage      []models.UsageRecord
	employees  []models.Employee
	shifts     []models.Shift
	expenses   []models.Expense
	feedback   []models.Feedback
	waste      []models.WasteRecord
	deliveries []models.SupplierDelivery
	fail       map[string]error

	mu     sync.Mutex
	ranges []analytics.Range
}

func (f *fakeSource) err(collection string) error {
	return f.fail[collection]
}

func (f *fakeSource) Orders(_ context.Context, r analytics.Range) ([]models.Order, error) {
	f.mu.Lock()
	f.ranges = append(f.ranges, r)
	f.mu.Unlock()
	if err := f.err(CollectionOrders); err != nil {
		return nil, err
	}
	return f.orders, nil
}

func (f *fakeSource) InventoryItems(context.Context) ([]models.InventoryItem, error) {
	return f.items, f.err(CollectionInventory)
}

func (f *fakeSource) MenuItems(context.Context) ([]models.MenuItem, error) {
	return f.menu, f.err(CollectionMenu)
}

func (f *fakeSource) InventoryUsage(context.Context, analytics.Range) ([]models.UsageRecord, error) {
	return f.usage, f.err(CollectionUsage)
}

func (f *fakeSource) Employees(context.Context) ([]models.Employee, error) {
	return f.employees, f.err(CollectionEmployees)
}

func (f *fakeSource) Shifts(context.Context, analytics.Range) ([]models.Shift, error) {
	return f.shifts, f.err(CollectionShifts)
}

func (f *fakeSource) Expenses(context.Context, analytics.Range) ([]models.Expense, error) {
	return f.expenses, f.err(CollectionExpenses)
}

func (f *fakeSource) Feedback(context.Context, analytics.Range) ([]models.Feedback, error) {
	return f.feedback, f.err(CollectionFeedback)
}

func (f *fakeSource) Waste(context.Context, analytics.Range) ([]models.WasteRecord, error) {
	return f.waste, f.err(CollectionWaste)
}

func (f *fakeSource) Deliveries(context.Context, analytics.Range) ([]models.SupplierDelivery, error) {
	return f.deliveries, f.err(CollectionDeliveries)
}

func fixture() *fakeSource {
	return &fakeSource{
		orders: []models.Order{
			{ID: "o1", Total: 100, ServerID: "e1", Items: []models.LineItem{{ID: "burger", Name: "Burger", Category: "Main", Price: 10, Quantity: 2}}},
			{ID: "o2", Total: 50, ServerID: "e1", Items: []models.LineItem{{ID: "soda", Name: "Soda", Category: "Drinks", Price: 5, Quantity: 2}}},
		},
		items: []models.InventoryItem{
			{ID: "bun", Name: "Bun", Quantity: 4, MinQuantity: 10, CostPerUnit: 1},
			{ID: "patty", Name: "Patty", Quantity: 50, MinQuantity: 10, CostPerUnit: 3},
		},
		menu: []models.MenuItem{
			{ID: "burger", Name: "Burger", Price: 10, Ingredients: []models.Ingredient{{ItemID: "bun", Quantity: 1}, {ItemID: "patty", Quantity: 1}}},
		},
		employees: []models.Employee{{ID: "e1", Name: "Ana", Role: models.RoleWaiter}},
		expenses:  []models.Expense{{Category: "Rent", Amount: 30}},
		usage:     []models.UsageRecord{{ItemID: "bun", Quantity: 2, Cost: 20}},
		feedback:  []models.Feedback{{Rating: 5}, {Rating: 3}},
	}
}

var manager = &models.Session{UserID: "m1", Name: "Mia", Role: models.RoleManager}

func today() analytics.Range {
	r, _ := analytics.Resolve(analytics.RangeToday, time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC))
	return r
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		role models.Role
		want bool
	}{
		{models.RoleAdmin, true},
		{models.RoleManager, true},
		{models.RoleChef, false},
		{models.RoleCashier, false},
		{models.RoleWaiter, false},
		{models.RoleStaff, false},
		{models.RoleUnknown, false},
	}
	for _, tt := range tests {
		for _, s := range Sections {
			if got := Allowed(tt.role, s); got != tt.want {
				t.Errorf("Allowed(%v, %v) = %v, want %v", tt.role, s, got, tt.want)
			}
		}
	}
	if Allowed(models.RoleAdmin, Section(99)) {
		t.Error("unknown sections should be denied")
	}
}

func TestParseSection(t *testing.T) {
	for _, s := range Sections {
		got, ok := ParseSection(" " + s.String() + " ")
		if !ok || got != s {
			t.Errorf("ParseSection(%q) = %v, %v", s.String(), got, ok)
		}
	}
	if _, ok := ParseSection("payroll"); ok {
		t.Error("ParseSection(payroll) should fail")
	}
}

func TestLoadForbidden(t *testing.T) {
	d := New(fixture(), Options{})
	ctx := context.Background()
	if _, err := d.Load(ctx, &models.Session{Role: models.RoleWaiter}, SectionSales, today()); !errors.Is(err, ErrForbidden) {
		t.Errorf("waiter Load err = %v, want ErrForbidden", err)
	}
	if _, err := d.Load(ctx, nil, SectionSales, today()); !errors.Is(err, ErrForbidden) {
		t.Errorf("nil session Load err = %v, want ErrForbidden", err)
	}
	if _, err := d.LoadAll(ctx, &models.Session{Role: models.RoleChef}, today()); !errors.Is(err, ErrForbidden) {
		t.Errorf("chef LoadAll err = %v, want ErrForbidden", err)
	}
}

func TestLoadSales(t *testing.T) {
	src := fixture()
	d := New(src, Options{Location: time.UTC, TopItems: 1})
	rep, err := d.Load(context.Background(), manager, SectionSales, today())
	if err != nil {
		t.Fatal(err)
	}
	if rep.Partial() {
		t.Errorf("unexpected failures: %v", rep.Failures)
	}
	if rep.Sales == nil || rep.Sales.Summary.TotalSales != 150 {
		t.Fatalf("sales = %+v", rep.Sales)
	}
	if len(rep.Sales.TopItems) != 1 || rep.Sales.TopItems[0].Name != "Burger" {
		t.Errorf("TopItems = %+v", rep.Sales.TopItems)
	}
	if len(src.ranges) != 1 || src.ranges[0] != today() {
		t.Errorf("orders fetched with %v, want today's range", src.ranges)
	}
}

func TestLoadRecordsFailures(t *testing.T) {
	src := fixture()
	src.fail = map[string]error{CollectionExpenses: errors.New("permission denied")}
	d := New(src, Options{})
	rep, err := d.Load(context.Background(), manager, SectionFinancial, today())
	if err != nil {
		t.Fatalf("Load should not fail on fetch errors: %v", err)
	}
	if len(rep.Failures) != 1 || rep.Failures[0].Collection != CollectionExpenses {
		t.Fatalf("Failures = %+v", rep.Failures)
	}
	pl := rep.Financial.ProfitLoss
	if pl.TotalExpenses != 0 || pl.TotalRevenue != 150 || pl.TotalCOGS != 20 || pl.NetProfit != 130 {
		t.Errorf("ProfitLoss = %+v, want expenses treated as empty", pl)
	}
}

func TestLoadOverviewAndInventory(t *testing.T) {
	d := New(fixture(), Options{})
	ctx := context.Background()
	rep, err := d.Load(ctx, manager, SectionOverview, today())
	if err != nil {
		t.Fatal(err)
	}
	o := rep.Overview
	if o.LowStockCount != 1 || o.CriticalCount != 1 || o.AverageRating != 4 || o.ProfitLoss.NetProfit != 100 {
		t.Errorf("overview = %+v", o)
	}

	rep, err = d.Load(ctx, manager, SectionInventory, today())
	if err != nil {
		t.Fatal(err)
	}
	inv := rep.Inventory
	if len(inv.Depletion) != 2 || inv.Depletion[0].Depletion.DailyRate != 2 {
		t.Errorf("depletion = %+v", inv.Depletion)
	}
	if len(inv.Profitability) != 1 || inv.Profitability[0].TotalQuantitySold != 2 {
		t.Errorf("profitability = %+v", inv.Profitability)
	}
}

func TestLoadAll(t *testing.T) {
	src := fixture()
	src.fail = map[string]error{CollectionFeedback: errors.New("timeout")}
	d := New(src, Options{})
	reports, err := d.LoadAll(context.Background(), manager, today())
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != len(Sections) {
		t.Fatalf("LoadAll returned %d reports, want %d", len(reports), len(Sections))
	}
	for i, rep := range reports {
		if rep.Section != Sections[i] {
			t.Errorf("reports[%d] = %v, want %v", i, rep.Section, Sections[i])
		}
	}
	if reports[SectionCustomers].Customers.Ratings.Total != 0 || !reports[SectionCustomers].Partial() {
		t.Errorf("customers report should be partial with no ratings")
	}
	if reports[SectionSales].Partial() {
		t.Errorf("sales does not read feedback and should be complete")
	}
	if reports[SectionEmployees].Employees.Sales[0].TotalSales != 150 {
		t.Errorf("employee sales = %+v", reports[SectionEmployees].Employees.Sales)
	}
}

func TestRefresherPublishesInSequence(t *testing.T) {
	d := New(fixture(), Options{Now: func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }})
	var mu sync.Mutex
	var seqs []uint64
	r := NewRefresher(d, manager, 0, func(now time.Time) analytics.Range {
		rng, _ := analytics.Resolve(analytics.RangeToday, now)
		return rng
	}, func(seq uint64, reports []*Report, err error) {
		if err != nil {
			t.Errorf("refresh error: %v", err)
		}
		if len(reports) != len(Sections) {
			t.Errorf("published %d reports", len(reports))
		}
		mu.Lock()
		seqs = append(seqs, seq)
		mu.Unlock()
	})
	r.Refresh(context.Background())
	r.Refresh(context.Background())
	if len(seqs) != 2 || seqs[0] != 1 || seqs[1] != 2 {
		t.Errorf("published seqs = %v, want [1 2]", seqs)
	}
}
