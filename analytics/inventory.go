package analytics

import (
	"math"
	"sort"
	"time"

	"pos-analytics/models"
)

const (
	defaultMinQuantity = 10
	criticalRatio      = 0.5
)

// Depletion is a linear run-rate projection from recorded usage. It is not a
// forecast: consumption is assumed to continue at its historical average.
type Depletion struct {
	DailyRate         float64
	WeeklyRate        float64
	MonthlyRate       float64
	EstimatedDaysLeft float64 // +Inf when nothing is being consumed
}

// DepletionRate projects how long item's stock lasts given usage records.
// The usage span is measured in whole days (at least one) over the dated
// records; undated records still count toward total usage.
func DepletionRate(item models.InventoryItem, usage []models.UsageRecord) Depletion {
	var total float64
	var first, last time.Time
	for _, u := range usage {
		if u.ItemID != item.ID {
			continue
		}
		total += u.Quantity
		if u.Date == nil || u.Date.IsZero() {
			continue
		}
		if first.IsZero() || u.Date.Before(first) {
			first = *u.Date
		}
		if last.IsZero() || u.Date.After(last) {
			last = *u.Date
		}
	}

	days := 1.0
	if !first.IsZero() {
		days = math.Max(1, math.Round(last.Sub(first).Hours()/24))
	}
	d := Depletion{DailyRate: total / days}
	d.WeeklyRate = d.DailyRate * 7
	d.MonthlyRate = d.DailyRate * 30
	switch {
	case item.Quantity <= 0:
		d.EstimatedDaysLeft = 0
	case d.DailyRate <= 0:
		d.EstimatedDaysLeft = math.Inf(1)
	default:
		d.EstimatedDaysLeft = item.Quantity / d.DailyRate
	}
	return d
}

type StockStatus string

const (
	StockLow      StockStatus = "low"
	StockCritical StockStatus = "critical"
)

type LowStockItem struct {
	Item        models.InventoryItem
	MinQuantity float64
	Ratio       float64
	Status      StockStatus
}

func minQuantity(item models.InventoryItem) float64 {
	if item.MinQuantity > 0 {
		return item.MinQuantity
	}
	return defaultMinQuantity
}

// LowStock selects items at or below their minimum quantity, most depleted first.
func LowStock(items []models.InventoryItem) []LowStockItem {
	var out []LowStockItem
	for _, it := range items {
		min := minQuantity(it)
		if it.Quantity > min {
			continue
		}
		ratio := it.Quantity / min
		status := StockLow
		if ratio < criticalRatio {
			status = StockCritical
		}
		out = append(out, LowStockItem{Item: it, MinQuantity: min, Ratio: ratio, Status: status})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Ratio < out[j].Ratio })
	return out
}

// BufferClass sizes safety stock for one ingredient type.
type BufferClass struct {
	Name     string
	Examples string
	Fraction float64
	MinPct   float64 // display range only
	MaxPct   float64
}

// BufferTable maps ingredient types to their buffer class.
type BufferTable map[models.IngredientType]BufferClass

// DefaultBufferTable is the perishability table used for reorder points.
var DefaultBufferTable = BufferTable{
	models.IngredientHighlyPerishable: {
		Name: "Highly Perishable", Examples: "vegetables, dairy, fresh meat, seafood",
		Fraction: 0.15, MinPct: 10, MaxPct: 15,
	},
	models.IngredientDryGoods: {
		Name: "Dry Goods", Examples: "rice, pasta, flour, spices",
		Fraction: 0.10, MinPct: 5, MaxPct: 10,
	},
	models.IngredientPackagedFrozen: {
		Name: "Packaged & Frozen", Examples: "frozen chicken, canned goods, sauces",
		Fraction: 0.05, MinPct: 5, MaxPct: 5,
	},
	models.IngredientBeveragesCondiments: {
		Name: "Beverages & Condiments", Examples: "drinks, sauces, condiments",
		Fraction: 0.05, MinPct: 3, MaxPct: 5,
	},
}

// Buffer returns the safety stock for quantity of the given type; 0 for
// unclassified items.
func (t BufferTable) Buffer(quantity float64, typ models.IngredientType) float64 {
	c, ok := t[typ]
	if !ok {
		return 0
	}
	return quantity * c.Fraction
}

// ReorderPoint is quantity minus its buffer; 0 for unclassified items.
func (t BufferTable) ReorderPoint(item models.InventoryItem) float64 {
	if _, ok := t[item.Type]; !ok {
		return 0
	}
	return item.Quantity - t.Buffer(item.Quantity, item.Type)
}

// NeedsReorder reports quantity <= reorder point.
func (t BufferTable) NeedsReorder(item models.InventoryItem) bool {
	return item.Quantity <= t.ReorderPoint(item)
}

type ReasonCount struct {
	Reason string
	Count  int
}

type ItemWaste struct {
	ItemID        string
	ItemName      string
	TotalQuantity float64
	TotalValue    float64
	Reasons       []ReasonCount // first-seen order
	PrimaryReason string
}

type ReasonWaste struct {
	Reason        string
	TotalQuantity float64
	TotalValue    float64
	Count         int
}

type WasteAnalysis struct {
	TotalWasteValue float64
	ItemCount       int
	ByItem          []ItemWaste
	ByReason        []ReasonWaste
}

// AnalyzeWaste totals waste per item and per reason, both sorted by value
// descending. An item's primary reason is its most frequent one; ties go to
// the reason seen first.
func AnalyzeWaste(records []models.WasteRecord) WasteAnalysis {
	var res WasteAnalysis
	itemIdx := make(map[string]int)
	reasonIdx := make(map[string]int)
	for _, w := range records {
		res.TotalWasteValue += w.Cost

		i, ok := itemIdx[w.ItemID]
		if !ok {
			i = len(res.ByItem)
			itemIdx[w.ItemID] = i
			res.ByItem = append(res.ByItem, ItemWaste{ItemID: w.ItemID, ItemName: w.ItemName})
		}
		iw := &res.ByItem[i]
		iw.TotalQuantity += w.Quantity
		iw.TotalValue += w.Cost

		if w.Reason == "" {
			continue
		}
		found := false
		for k := range iw.Reasons {
			if iw.Reasons[k].Reason == w.Reason {
				iw.Reasons[k].Count++
				found = true
				break
			}
		}
		if !found {
			iw.Reasons = append(iw.Reasons, ReasonCount{Reason: w.Reason, Count: 1})
		}

		r, ok := reasonIdx[w.Reason]
		if !ok {
			r = len(res.ByReason)
			reasonIdx[w.Reason] = r
			res.ByReason = append(res.ByReason, ReasonWaste{Reason: w.Reason})
		}
		res.ByReason[r].TotalQuantity += w.Quantity
		res.ByReason[r].TotalValue += w.Cost
		res.ByReason[r].Count++
	}

	for i := range res.ByItem {
		best := 0
		for _, rc := range res.ByItem[i].Reasons {
			if rc.Count > best {
				best = rc.Count
				res.ByItem[i].PrimaryReason = rc.Reason
			}
		}
	}
	res.ItemCount = len(res.ByItem)
	sort.SliceStable(res.ByItem, func(i, j int) bool { return res.ByItem[i].TotalValue > res.ByItem[j].TotalValue })
	sort.SliceStable(res.ByReason, func(i, j int) bool { return res.ByReason[i].TotalValue > res.ByReason[j].TotalValue })
	return res
}

// Supplier score weights. Fixed.
const (
	weightOnTime   = 0.3
	weightComplete = 0.4
	weightCorrect  = 0.3
)

type SupplierScore struct {
	SupplierName       string
	Deliveries         int
	OnTimeDeliveries   int
	CompleteDeliveries int
	CorrectDeliveries  int
	TotalValue         float64
	OnTimeRate         float64
	CompleteRate       float64
	CorrectRate        float64
	PerformanceScore   float64
}

// SupplierPerformance rates suppliers by delivery outcomes, best first.
func SupplierPerformance(deliveries []models.SupplierDelivery) []SupplierScore {
	idx := make(map[string]int)
	var out []SupplierScore
	for _, d := range deliveries {
		i, ok := idx[d.SupplierName]
		if !ok {
			i = len(out)
			idx[d.SupplierName] = i
			out = append(out, SupplierScore{SupplierName: d.SupplierName})
		}
		s := &out[i]
		s.Deliveries++
		if d.OnTime {
			s.OnTimeDeliveries++
		}
		if d.Complete {
			s.CompleteDeliveries++
		}
		if d.Correct {
			s.CorrectDeliveries++
		}
		s.TotalValue += d.TotalCost
	}
	for i := range out {
		s := &out[i]
		n := float64(s.Deliveries)
		s.OnTimeRate = float64(s.OnTimeDeliveries) / n * 100
		s.CompleteRate = float64(s.CompleteDeliveries) / n * 100
		s.CorrectRate = float64(s.CorrectDeliveries) / n * 100
		s.PerformanceScore = weightOnTime*s.OnTimeRate + weightComplete*s.CompleteRate + weightCorrect*s.CorrectRate
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PerformanceScore > out[j].PerformanceScore })
	return out
}

type MenuItemProfit struct {
	Item              models.MenuItem
	IngredientCost    float64
	ProfitPerItem     float64
	ProfitMargin      float64
	COGSPercentage    float64
	TotalQuantitySold float64
	TotalRevenue      float64
	TotalProfit       float64
}

func inventoryIndex(items []models.InventoryItem) map[string]models.InventoryItem {
	m := make(map[string]models.InventoryItem, len(items))
	for _, it := range items {
		m[it.ID] = it
	}
	return m
}

// IngredientCost prices a menu item's recipe at current inventory unit costs.
// Ingredients missing from inventory cost nothing.
func IngredientCost(item models.MenuItem, inventory map[string]models.InventoryItem) float64 {
	var cost float64
	for _, ing := range item.Ingredients {
		if inv, ok := inventory[ing.ItemID]; ok {
			cost += ing.Quantity * inv.CostPerUnit
		}
	}
	return cost
}

// saleQuantity treats a sale without a quantity as one unit.
func saleQuantity(s models.SaleRecord) float64 {
	if s.Quantity == 0 {
		return 1
	}
	return s.Quantity
}

// MenuItemProfitability costs each menu item and totals its sales, highest
// margin first.
func MenuItemProfitability(menu []models.MenuItem, inventory []models.InventoryItem, sales []models.SaleRecord) []MenuItemProfit {
	inv := inventoryIndex(inventory)
	out := make([]MenuItemProfit, 0, len(menu))
	for _, m := range menu {
		p := MenuItemProfit{Item: m, IngredientCost: IngredientCost(m, inv)}
		for _, s := range sales {
			if s.ItemID != m.ID {
				continue
			}
			q := saleQuantity(s)
			p.TotalQuantitySold += q
			p.TotalRevenue += s.Price * q
		}
		p.ProfitPerItem = m.Price - p.IngredientCost
		if m.Price > 0 {
			p.ProfitMargin = p.ProfitPerItem / m.Price * 100
			p.COGSPercentage = p.IngredientCost / m.Price * 100
		}
		p.TotalProfit = p.ProfitPerItem * p.TotalQuantitySold
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProfitMargin > out[j].ProfitMargin })
	return out
}
