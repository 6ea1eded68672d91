package analytics

import (
	"sort"
	"time"

	"pos-analytics/models"
)

const (
	uncategorized   = "Uncategorized"
	unnamedDiscount = "Unnamed discount"
)

type CategorySales struct {
	Category   string
	TotalSales float64
	ItemCount  float64
}

type ItemSales struct {
	Name       string
	Category   string
	Quantity   float64
	TotalSales float64
}

type HourSales struct {
	Hour       int
	TotalSales float64
	OrderCount int
}

type TableSales struct {
	ID         string
	Name       string
	TotalSales float64
	OrderCount int
}

type OrderTypeSales struct {
	Type       string
	TotalSales float64
	OrderCount int
}

type DiscountUsage struct {
	Name          string
	TotalAmount   float64
	UseCount      int
	AvgOrderValue float64
}

type DiscountImpactResult struct {
	Discounts              []DiscountUsage
	TotalDiscountAmount    float64
	OrderCountWithDiscount int
	DiscountPercentage     float64
}

type SalesSummary struct {
	OrderCount    int
	TotalSales    float64
	AvgOrderValue float64
	ItemsSold     float64
}

func lineRevenue(it models.LineItem) float64 {
	return it.Price * it.Quantity
}

// TotalSales sums order totals.
func TotalSales(orders []models.Order) float64 {
	var total float64
	for _, o := range orders {
		total += o.Total
	}
	return total
}

// Summarize returns order count, revenue, average order value and item count.
func Summarize(orders []models.Order) SalesSummary {
	s := SalesSummary{OrderCount: len(orders), TotalSales: TotalSales(orders)}
	for _, o := range orders {
		for _, it := range o.Items {
			s.ItemsSold += it.Quantity
		}
	}
	if s.OrderCount > 0 {
		s.AvgOrderValue = s.TotalSales / float64(s.OrderCount)
	}
	return s
}

// GroupByCategory buckets line items by category in first-seen order.
func GroupByCategory(orders []models.Order) []CategorySales {
	idx := make(map[string]int)
	var out []CategorySales
	for _, o := range orders {
		for _, it := range o.Items {
			cat := it.Category
			if cat == "" {
				cat = uncategorized
			}
			i, ok := idx[cat]
			if !ok {
				i = len(out)
				idx[cat] = i
				out = append(out, CategorySales{Category: cat})
			}
			out[i].TotalSales += lineRevenue(it)
			out[i].ItemCount += it.Quantity
		}
	}
	return out
}

// itemTotals buckets line items by name, preserving first-seen order.
func itemTotals(orders []models.Order) []ItemSales {
	idx := make(map[string]int)
	var out []ItemSales
	for _, o := range orders {
		for _, it := range o.Items {
			i, ok := idx[it.Name]
			if !ok {
				i = len(out)
				idx[it.Name] = i
				out = append(out, ItemSales{Name: it.Name, Category: it.Category})
			}
			out[i].Quantity += it.Quantity
			out[i].TotalSales += lineRevenue(it)
		}
	}
	return out
}

func limitItems(items []ItemSales, n int) []ItemSales {
	if n < 0 {
		n = 0
	}
	if n < len(items) {
		return items[:n]
	}
	return items
}

// TopSellingItems returns the n items with the highest quantity. Ties keep
// first-seen order.
func TopSellingItems(orders []models.Order, n int) []ItemSales {
	items := itemTotals(orders)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Quantity > items[j].Quantity })
	return limitItems(items, n)
}

// LeastSellingItems returns the n items with the lowest quantity. Ties keep
// first-seen order.
func LeastSellingItems(orders []models.Order, n int) []ItemSales {
	items := itemTotals(orders)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Quantity < items[j].Quantity })
	return limitItems(items, n)
}

// GroupByHour fills 24 hour-of-day slots using each order's creation time in loc.
// Orders without a creation time are skipped.
func GroupByHour(orders []models.Order, loc *time.Location) [24]HourSales {
	if loc == nil {
		loc = time.Local
	}
	var hours [24]HourSales
	for h := range hours {
		hours[h].Hour = h
	}
	for _, o := range orders {
		if o.CreatedAt == nil || o.CreatedAt.IsZero() {
			continue
		}
		h := o.CreatedAt.In(loc).Hour()
		hours[h].TotalSales += o.Total
		hours[h].OrderCount++
	}
	return hours
}

// GroupByTable buckets orders by table id. Orders with no table are skipped.
func GroupByTable(orders []models.Order) []TableSales {
	idx := make(map[string]int)
	var out []TableSales
	for _, o := range orders {
		id := o.Table.ID
		if id == "" {
			continue
		}
		i, ok := idx[id]
		if !ok {
			name := o.Table.Name
			if name == "" {
				name = "Table " + id
			}
			i = len(out)
			idx[id] = i
			out = append(out, TableSales{ID: id, Name: name})
		}
		out[i].TotalSales += o.Total
		out[i].OrderCount++
	}
	return out
}

// GroupByOrderType always reports dine-in, takeaway and delivery first, followed
// by other types in first-seen order. An empty type counts as dine-in.
func GroupByOrderType(orders []models.Order) []OrderTypeSales {
	out := []OrderTypeSales{
		{Type: models.OrderTypeDineIn},
		{Type: models.OrderTypeTakeaway},
		{Type: models.OrderTypeDelivery},
	}
	idx := map[string]int{
		models.OrderTypeDineIn:   0,
		models.OrderTypeTakeaway: 1,
		models.OrderTypeDelivery: 2,
	}
	for _, o := range orders {
		t := o.OrderType
		if t == "" {
			t = models.OrderTypeDineIn
		}
		i, ok := idx[t]
		if !ok {
			i = len(out)
			idx[t] = i
			out = append(out, OrderTypeSales{Type: t})
		}
		out[i].TotalSales += o.Total
		out[i].OrderCount++
	}
	return out
}

// DiscountImpact summarizes discounted orders overall and per discount name.
func DiscountImpact(orders []models.Order) DiscountImpactResult {
	var res DiscountImpactResult
	idx := make(map[string]int)
	for _, o := range orders {
		if o.Discount.Amount <= 0 {
			continue
		}
		name := o.Discount.Name
		if name == "" {
			name = unnamedDiscount
		}
		i, ok := idx[name]
		if !ok {
			i = len(res.Discounts)
			idx[name] = i
			res.Discounts = append(res.Discounts, DiscountUsage{Name: name})
		}
		d := &res.Discounts[i]
		d.TotalAmount += o.Discount.Amount
		d.UseCount++
		d.AvgOrderValue += o.Total // summed here, averaged below

		res.TotalDiscountAmount += o.Discount.Amount
		res.OrderCountWithDiscount++
	}
	for i := range res.Discounts {
		res.Discounts[i].AvgOrderValue /= float64(res.Discounts[i].UseCount)
	}
	if len(orders) > 0 {
		res.DiscountPercentage = float64(res.OrderCountWithDiscount) / float64(len(orders)) * 100
	}
	return res
}
