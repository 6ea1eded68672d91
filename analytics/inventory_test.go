package analytics

import (
	"math"
	"testing"

	"pos-analytics/models"
)

func TestDepletionRate(t *testing.T) {
	item := models.InventoryItem{ID: "flour", Quantity: 30}
	usage := []models.UsageRecord{
		{ItemID: "flour", Quantity: 5, Date: at(date(2026, 10, 1))},
		{ItemID: "flour", Quantity: 15, Date: at(date(2026, 10, 11))},
		{ItemID: "sugar", Quantity: 100, Date: at(date(2026, 10, 5))},
	}
	d := DepletionRate(item, usage)
	if !approx(d.DailyRate, 2) || !approx(d.WeeklyRate, 14) || !approx(d.MonthlyRate, 60) {
		t.Errorf("rates = %+v, want 2/14/60", d)
	}
	if !approx(d.EstimatedDaysLeft, 15) {
		t.Errorf("EstimatedDaysLeft = %v, want 15", d.EstimatedDaysLeft)
	}
}

func TestDepletionRateUndatedUsage(t *testing.T) {
	item := models.InventoryItem{ID: "rice", Quantity: 12}
	usage := []models.UsageRecord{
		{ItemID: "rice", Quantity: 4},
		{ItemID: "rice", Quantity: 2, Date: at(date(2026, 10, 3))},
	}
	d := DepletionRate(item, usage)
	if !approx(d.DailyRate, 6) {
		t.Errorf("DailyRate = %v, want 6 over a one-day span", d.DailyRate)
	}
}

func TestDepletionRateNoConsumption(t *testing.T) {
	tests := []struct {
		name     string
		quantity float64
		want     float64
	}{
		{"stocked", 20, math.Inf(1)},
		{"empty", 0, 0},
		{"negative", -3, 0},
	}
	for _, tt := range tests {
		d := DepletionRate(models.InventoryItem{ID: "x", Quantity: tt.quantity}, nil)
		if d.DailyRate != 0 {
			t.Errorf("%s: DailyRate = %v, want 0", tt.name, d.DailyRate)
		}
		if d.EstimatedDaysLeft != tt.want {
			t.Errorf("%s: EstimatedDaysLeft = %v, want %v", tt.name, d.EstimatedDaysLeft, tt.want)
		}
	}
}

func TestLowStock(t *testing.T) {
	items := []models.InventoryItem{
		{ID: "a", Quantity: 5, MinQuantity: 10},
		{ID: "b", Quantity: 4, MinQuantity: 10},
		{ID: "c", Quantity: 11, MinQuantity: 10},
		{ID: "d", Quantity: 10, MinQuantity: 10},
		{ID: "e", Quantity: 3},
		{ID: "f", Quantity: 5.1, MinQuantity: 10},
	}
	got := LowStock(items)
	want := []struct {
		id     string
		status StockStatus
	}{
		{"e", StockCritical},
		{"b", StockCritical},
		{"a", StockLow},
		{"f", StockLow},
		{"d", StockLow},
	}
	if len(got) != len(want) {
		t.Fatalf("LowStock len = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Item.ID != w.id || got[i].Status != w.status {
			t.Errorf("LowStock[%d] = %s/%s, want %s/%s", i, got[i].Item.ID, got[i].Status, w.id, w.status)
		}
	}
	if got[0].MinQuantity != 10 {
		t.Errorf("default MinQuantity = %v, want 10", got[0].MinQuantity)
	}
}

func TestBufferTable(t *testing.T) {
	tests := []struct {
		typ     models.IngredientType
		buffer  float64
		reorder float64
	}{
		{models.IngredientHighlyPerishable, 15, 85},
		{models.IngredientDryGoods, 10, 90},
		{models.IngredientPackagedFrozen, 5, 95},
		{models.IngredientBeveragesCondiments, 5, 95},
		{models.IngredientTypeUnknown, 0, 0},
	}
	for _, tt := range tests {
		item := models.InventoryItem{Quantity: 100, Type: tt.typ}
		if got := DefaultBufferTable.Buffer(item.Quantity, tt.typ); !approx(got, tt.buffer) {
			t.Errorf("Buffer(100, %v) = %v, want %v", tt.typ, got, tt.buffer)
		}
		if got := DefaultBufferTable.ReorderPoint(item); !approx(got, tt.reorder) {
			t.Errorf("ReorderPoint(%v) = %v, want %v", tt.typ, got, tt.reorder)
		}
	}
	if DefaultBufferTable.NeedsReorder(models.InventoryItem{Quantity: 100, Type: models.IngredientDryGoods}) {
		t.Error("NeedsReorder should be false above the reorder point")
	}
	if !DefaultBufferTable.NeedsReorder(models.InventoryItem{Quantity: 0}) {
		t.Error("NeedsReorder should be true for an empty unclassified item")
	}
}

func TestAnalyzeWaste(t *testing.T) {
	records := []models.WasteRecord{
		{ItemID: "tomato", ItemName: "Tomato", Quantity: 2, Cost: 4, Reason: "spoiled"},
		{ItemID: "tomato", ItemName: "Tomato", Quantity: 1, Cost: 2, Reason: "overcooked"},
		{ItemID: "tomato", ItemName: "Tomato", Quantity: 1, Cost: 2, Reason: "spoiled"},
		{ItemID: "milk", ItemName: "Milk", Quantity: 3, Cost: 9, Reason: "expired"},
	}
	res := AnalyzeWaste(records)
	if res.TotalWasteValue != 17 || res.ItemCount != 2 {
		t.Errorf("totals = %v / %d, want 17 / 2", res.TotalWasteValue, res.ItemCount)
	}
	if res.ByItem[0].ItemID != "milk" || res.ByItem[1].ItemID != "tomato" {
		t.Errorf("ByItem order = %s, %s; want milk, tomato", res.ByItem[0].ItemID, res.ByItem[1].ItemID)
	}
	tomato := res.ByItem[1]
	if tomato.PrimaryReason != "spoiled" || tomato.TotalQuantity != 4 || tomato.TotalValue != 8 {
		t.Errorf("tomato = %+v", tomato)
	}
	wantReasons := []string{"expired", "spoiled", "overcooked"}
	for i, r := range wantReasons {
		if res.ByReason[i].Reason != r {
			t.Errorf("ByReason[%d] = %s, want %s", i, res.ByReason[i].Reason, r)
		}
	}
	if res.ByReason[1].Count != 2 {
		t.Errorf("spoiled count = %d, want 2", res.ByReason[1].Count)
	}
}

func TestSupplierPerformance(t *testing.T) {
	deliveries := []models.SupplierDelivery{
		{SupplierName: "Acme", OnTime: true, Complete: true, Correct: true, TotalCost: 100},
		{SupplierName: "Acme", OnTime: true, Complete: false, Correct: true, TotalCost: 50},
		{SupplierName: "Acme", OnTime: true, Complete: true, Correct: true, TotalCost: 25},
		{SupplierName: "Acme", OnTime: true, Complete: true, Correct: true, TotalCost: 25},
		{SupplierName: "Late Co", OnTime: false, Complete: true, Correct: true},
	}
	got := SupplierPerformance(deliveries)
	if len(got) != 2 {
		t.Fatalf("SupplierPerformance len = %d, want 2", len(got))
	}
	acme := got[0]
	if acme.SupplierName != "Acme" || !approx(acme.PerformanceScore, 90) {
		t.Errorf("first supplier = %s scoring %v, want Acme scoring 90", acme.SupplierName, acme.PerformanceScore)
	}
	if acme.CompleteRate != 75 || acme.TotalValue != 200 {
		t.Errorf("Acme = %+v", acme)
	}
	if !approx(got[1].PerformanceScore, 70) {
		t.Errorf("Late Co score = %v, want 70", got[1].PerformanceScore)
	}
}

func burgerSodaMenu() ([]models.MenuItem, []models.InventoryItem) {
	menu := []models.MenuItem{
		{ID: "burger", Name: "Burger", Price: 10, Ingredients: []models.Ingredient{{ItemID: "bun", Quantity: 1}, {ItemID: "patty", Quantity: 1}}},
		{ID: "soda", Name: "Soda", Price: 2, Ingredients: []models.Ingredient{{ItemID: "syrup", Quantity: 0.1}, {ItemID: "missing", Quantity: 3}}},
	}
	inv := []models.InventoryItem{
		{ID: "bun", CostPerUnit: 1},
		{ID: "patty", CostPerUnit: 3},
		{ID: "syrup", CostPerUnit: 5},
	}
	return menu, inv
}

func TestMenuItemProfitability(t *testing.T) {
	menu, inv := burgerSodaMenu()
	sales := []models.SaleRecord{
		{ItemID: "burger", Price: 10, Quantity: 2},
		{ItemID: "burger", Price: 10},
	}
	got := MenuItemProfitability(menu, inv, sales)
	if got[0].Item.ID != "soda" || got[1].Item.ID != "burger" {
		t.Fatalf("order = %s, %s; want soda, burger", got[0].Item.ID, got[1].Item.ID)
	}
	burger := got[1]
	if !approx(burger.IngredientCost, 4) || !approx(burger.ProfitMargin, 60) || !approx(burger.COGSPercentage, 40) {
		t.Errorf("burger costs = %+v", burger)
	}
	if burger.TotalQuantitySold != 3 || burger.TotalRevenue != 30 || !approx(burger.TotalProfit, 18) {
		t.Errorf("burger sales = %+v", burger)
	}
	if !approx(got[0].IngredientCost, 0.5) || !approx(got[0].ProfitMargin, 75) {
		t.Errorf("soda = %+v", got[0])
	}
}

func TestZeroPriceMenuItem(t *testing.T) {
	got := MenuItemProfitability([]models.MenuItem{{ID: "water"}}, nil, nil)
	if got[0].ProfitMargin != 0 || got[0].COGSPercentage != 0 {
		t.Errorf("zero price margins = %+v, want 0", got[0])
	}
}
