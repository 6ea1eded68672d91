package bot

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"pos-analytics/analytics"
	"pos-analytics/dashboard"
	"pos-analytics/format"
	"pos-analytics/models"
)

// Telegram rejects messages longer than 4096 characters.
const maxMessageLen = 4000

const dateLayout = "2006-01-02"

// listLimit caps the rows rendered per list.
const listLimit = 10

// renderer formats reports as plain text.
type renderer struct {
	currency string
	loc      *time.Location
}

func (p renderer) money(v float64) string { return format.Currency(v, p.currency) }

func rangeLabel(r analytics.Range, loc *time.Location) string {
	start := r.Start.In(loc)
	end := r.End.In(loc)
	if !r.Inclusive {
		end = end.Add(-time.Nanosecond)
	}
	if start.Format(dateLayout) == end.Format(dateLayout) {
		return fmt.Sprintf("%s (%s)", r.Key, start.Format(dateLayout))
	}
	return fmt.Sprintf("%s (%s .. %s)", r.Key, start.Format(dateLayout), end.Format(dateLayout))
}

func (p renderer) render(rep *dashboard.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 %s | %s\n", strings.ToUpper(rep.Section.String()), rangeLabel(rep.Range, p.loc))
	switch {
	case rep.Overview != nil:
		p.overview(&sb, rep.Overview)
	case rep.Sales != nil:
		p.sales(&sb, rep.Sales)
	case rep.Inventory != nil:
		p.inventory(&sb, rep.Inventory)
	case rep.Employees != nil:
		p.employees(&sb, rep.Employees)
	case rep.Financial != nil:
		p.financial(&sb, rep.Financial)
	case rep.Customers != nil:
		p.customers(&sb, rep.Customers)
	}
	if rep.Partial() {
		names := make([]string, 0, len(rep.Failures))
		for _, f := range rep.Failures {
			names = append(names, f.Collection)
		}
		fmt.Fprintf(&sb, "\n⚠️ Partial: could not load %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(&sb, "\nUpdated %s", rep.GeneratedAt.In(p.loc).Format("15:04:05"))
	return truncate(sb.String(), maxMessageLen)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		cut = cut[:i]
	}
	return cut + "\n…"
}

func (p renderer) overview(sb *strings.Builder, o *dashboard.Overview) {
	fmt.Fprintf(sb, "\nOrders: %d\nRevenue: %s\nAvg order: %s\nItems sold: %s\n",
		o.Summary.OrderCount, p.money(o.Summary.TotalSales), p.money(o.Summary.AvgOrderValue), format.Number(o.Summary.ItemsSold))
	fmt.Fprintf(sb, "Net profit: %s (%s)\n", p.money(o.ProfitLoss.NetProfit), format.Percent(o.ProfitLoss.NetProfitMargin))
	fmt.Fprintf(sb, "Low stock: %d (%d critical)\n", o.LowStockCount, o.CriticalCount)
	if o.RatingCount > 0 {
		fmt.Fprintf(sb, "Rating: %.2f from %d reviews\n", o.AverageRating, o.RatingCount)
	}
	if len(o.TopItems) > 0 {
		sb.WriteString("\nTop items\n")
		p.items(sb, o.TopItems)
	}
}

func (p renderer) items(sb *strings.Builder, items []analytics.ItemSales) {
	for i, it := range items {
		fmt.Fprintf(sb, "%d. %s x%s = %s\n", i+1, it.Name, format.Number(it.Quantity), p.money(it.TotalSales))
	}
}

func (p renderer) sales(sb *strings.Builder, s *dashboard.SalesReport) {
	fmt.Fprintf(sb, "\nOrders: %d | Revenue: %s | Avg: %s\n",
		s.Summary.OrderCount, p.money(s.Summary.TotalSales), p.money(s.Summary.AvgOrderValue))
	if len(s.Categories) > 0 {
		sb.WriteString("\nBy category\n")
		for _, c := range limit(s.Categories) {
			fmt.Fprintf(sb, "• %s: %s (%s items)\n", c.Category, p.money(c.TotalSales), format.Number(c.ItemCount))
		}
	}
	if len(s.TopItems) > 0 {
		sb.WriteString("\nTop sellers\n")
		p.items(sb, limit(s.TopItems))
	}
	if len(s.LeastItems) > 0 {
		sb.WriteString("\nSlow sellers\n")
		p.items(sb, limit(s.LeastItems))
	}
	if peak, ok := peakHour(s.Hours); ok {
		fmt.Fprintf(sb, "\nPeak hour: %02d:00 (%d orders, %s)\n", peak.Hour, peak.OrderCount, p.money(peak.TotalSales))
	}
	if len(s.OrderTypes) > 0 {
		sb.WriteString("\nBy order type\n")
		for _, t := range s.OrderTypes {
			fmt.Fprintf(sb, "• %s: %d orders, %s\n", t.Type, t.OrderCount, p.money(t.TotalSales))
		}
	}
	if len(s.Tables) > 0 {
		sb.WriteString("\nBy table\n")
		for _, t := range limit(s.Tables) {
			fmt.Fprintf(sb, "• %s: %d orders, %s\n", t.Name, t.OrderCount, p.money(t.TotalSales))
		}
	}
	if s.Discounts.OrderCountWithDiscount > 0 {
		fmt.Fprintf(sb, "\nDiscounts: %s on %d orders (%s of orders)\n",
			p.money(s.Discounts.TotalDiscountAmount), s.Discounts.OrderCountWithDiscount, format.Percent(s.Discounts.DiscountPercentage))
	}
}

// peakHour returns the hour with the highest sales; ties keep the earliest.
func peakHour(hours [24]analytics.HourSales) (analytics.HourSales, bool) {
	best := -1
	for i, h := range hours {
		if h.OrderCount == 0 {
			continue
		}
		if best < 0 || h.TotalSales > hours[best].TotalSales {
			best = i
		}
	}
	if best < 0 {
		return analytics.HourSales{}, false
	}
	return hours[best], true
}

func (p renderer) inventory(sb *strings.Builder, inv *dashboard.InventoryReport) {
	if len(inv.LowStock) == 0 {
		sb.WriteString("\nStock levels OK\n")
	} else {
		sb.WriteString("\nLow stock\n")
		for _, l := range limit(inv.LowStock) {
			icon := "🟡"
			if l.Status == analytics.StockCritical {
				icon = "🔴"
			}
			fmt.Fprintf(sb, "%s %s: %s / %s %s\n", icon, l.Item.Name, format.Number(l.Item.Quantity), format.Number(l.MinQuantity), l.Item.Unit)
		}
	}

	running := make([]dashboard.ItemDepletion, 0, len(inv.Depletion))
	for _, d := range inv.Depletion {
		if d.Depletion.DailyRate > 0 || d.NeedsReorder {
			running = append(running, d)
		}
	}
	sort.SliceStable(running, func(i, j int) bool {
		return running[i].Depletion.EstimatedDaysLeft < running[j].Depletion.EstimatedDaysLeft
	})
	if len(running) > 0 {
		sb.WriteString("\nRunning out\n")
		for _, d := range limit(running) {
			mark := ""
			if d.NeedsReorder {
				mark = " ⟲ reorder"
			}
			fmt.Fprintf(sb, "• %s: %s/day, %s left%s\n", d.Item.Name, format.Number(d.Depletion.DailyRate), format.Days(d.Depletion.EstimatedDaysLeft), mark)
		}
	}

	if inv.Waste.ItemCount > 0 {
		fmt.Fprintf(sb, "\nWaste: %s across %d items\n", p.money(inv.Waste.TotalWasteValue), inv.Waste.ItemCount)
		for _, r := range limit(inv.Waste.ByReason) {
			fmt.Fprintf(sb, "• %s: %s (%d)\n", r.Reason, p.money(r.TotalValue), r.Count)
		}
	}
	if len(inv.Suppliers) > 0 {
		sb.WriteString("\nSuppliers\n")
		for _, s := range limit(inv.Suppliers) {
			fmt.Fprintf(sb, "• %s: score %s (%d deliveries)\n", s.SupplierName, format.Number(s.PerformanceScore), s.Deliveries)
		}
	}
	if len(inv.Profitability) > 0 {
		sb.WriteString("\nMenu margins\n")
		for _, m := range limit(inv.Profitability) {
			fmt.Fprintf(sb, "• %s: %s margin, profit %s\n", m.Item.Name, format.Percent(m.ProfitMargin), p.money(m.TotalProfit))
		}
	}
}

func (p renderer) employees(sb *strings.Builder, e *dashboard.EmployeeReport) {
	if len(e.Sales) > 0 {
		sb.WriteString("\nSales by server\n")
		for _, s := range limit(e.Sales) {
			fmt.Fprintf(sb, "• %s: %d orders, %s\n", s.Employee.Name, s.TotalOrders, p.money(s.TotalSales))
		}
	}
	if e.Turnover.OverallAverageTurnover > 0 {
		fmt.Fprintf(sb, "\nAvg table turnover: %s min\n", format.Number(e.Turnover.OverallAverageTurnover))
	}
	fmt.Fprintf(sb, "\nLabor: %s (%s of sales)\n", p.money(e.Labor.TotalLaborCost), format.Percent(e.Labor.LaborCostPercentage))
	for _, r := range e.Labor.Roles {
		fmt.Fprintf(sb, "• %s: %d staff, %sh, %s\n", r.Role, r.EmployeeCount, format.Number(r.TotalHours), p.money(r.TotalCost))
	}
	if len(e.Attendance) > 0 {
		sb.WriteString("\nPunctuality\n")
		for _, a := range limit(e.Attendance) {
			fmt.Fprintf(sb, "• %s: %s on time, %d/%d late\n", a.Name, format.Percent(a.PunctualityRate), a.LateShifts, a.TotalShifts)
		}
	}
	if len(e.Handling) > 0 {
		sb.WriteString("\nHandling time (min)\n")
		for _, h := range limit(e.Handling) {
			fmt.Fprintf(sb, "• %s: prep %s, service %s\n", h.Name, format.Number(h.AveragePreparationTime), format.Number(h.AverageServiceTime))
		}
	}
}

func (p renderer) financial(sb *strings.Builder, f *dashboard.FinancialReport) {
	pl := f.ProfitLoss
	fmt.Fprintf(sb, "\nRevenue: %s\nCOGS: %s\nGross profit: %s (%s)\nExpenses: %s\nNet profit: %s (%s)\n",
		p.money(pl.TotalRevenue), p.money(pl.TotalCOGS),
		p.money(pl.GrossProfit), format.Percent(pl.GrossProfitMargin),
		p.money(pl.TotalExpenses),
		p.money(pl.NetProfit), format.Percent(pl.NetProfitMargin))
	if len(f.Expenses) > 0 {
		sb.WriteString("\nExpenses\n")
		for _, e := range limit(f.Expenses) {
			fmt.Fprintf(sb, "• %s: %s (%d)\n", e.Category, p.money(e.TotalAmount), e.Count)
		}
	}
	fmt.Fprintf(sb, "\nPayroll: %s (overtime %s)\n", p.money(f.Payroll.TotalPayroll), p.money(f.Payroll.OvertimePayroll))
	fmt.Fprintf(sb, "Tax: %s | Service: %s | %s of pre-tax sales\n",
		p.money(f.Tax.TotalSalesTax), p.money(f.Tax.TotalServiceCharges), format.Percent(f.Tax.TaxPercentage))
	if len(f.COGS) > 0 {
		sb.WriteString("\nCOGS by item\n")
		for _, c := range limit(f.COGS) {
			fmt.Fprintf(sb, "• %s: %s (%s)\n", c.Name, p.money(c.TotalCOGS), format.Percent(c.COGSPercentage))
		}
	}
}

func (p renderer) customers(sb *strings.Builder, c *dashboard.CustomerReport) {
	r := c.Ratings
	if r.Total == 0 {
		sb.WriteString("\nNo feedback yet\n")
	} else {
		fmt.Fprintf(sb, "\nAverage rating: %.2f (%d reviews)\n", r.Average, r.Total)
		for star := 5; star >= 1; star-- {
			fmt.Fprintf(sb, "%d★ %d (%s)\n", star, r.Counts[star], format.Percent(r.Percentages[star]))
		}
	}
	o := c.Sentiment.Overall
	if o.Positive+o.Neutral+o.Negative > 0 {
		fmt.Fprintf(sb, "\nSentiment: 👍 %d  😐 %d  👎 %d\n", o.Positive, o.Neutral, o.Negative)
	}
	if len(c.Preferences.Items) > 0 {
		sb.WriteString("\nMost ordered\n")
		for _, it := range limit(c.Preferences.Items) {
			fmt.Fprintf(sb, "• %s x%s\n", it.Name, format.Number(it.Count))
		}
	}
	if len(c.Preferences.Dietary) > 0 {
		labels := make([]string, 0, len(c.Preferences.Dietary))
		for l := range c.Preferences.Dietary {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		sb.WriteString("\nDietary\n")
		for _, l := range labels {
			if n := c.Preferences.Dietary[l]; n > 0 {
				fmt.Fprintf(sb, "• %s: %s\n", l, format.Number(n))
			}
		}
	}
}

// order shows one order with its change log, oldest change first.
func (p renderer) order(o *models.Order) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Order %s: %s\n", o.ID, o.Status)
	if o.Table.Name != "" {
		fmt.Fprintf(&sb, "Table: %s\n", o.Table.Name)
	} else if o.Table.ID != "" {
		fmt.Fprintf(&sb, "Table: %s\n", o.Table.ID)
	}
	for _, it := range o.Items {
		fmt.Fprintf(&sb, "• %s (%s) x%s = %s\n", it.Name, it.ID, format.Number(it.Quantity), p.money(it.Price*it.Quantity))
	}
	fmt.Fprintf(&sb, "Total: %s\n", p.money(o.Total))
	if o.SentToKitchen {
		sb.WriteString("In the kitchen\n")
	}
	if len(o.Modifications) > 0 {
		sb.WriteString("\nChanges\n")
		for _, m := range o.Modifications {
			actor := m.ActorName
			if actor == "" {
				actor = m.ActorID
			}
			fmt.Fprintf(&sb, "• %s %s: %s (%s)\n", m.At.In(p.loc).Format("01-02 15:04"), m.Type, m.Reason, actor)
		}
	}
	return truncate(sb.String(), maxMessageLen)
}

func limit[T any](items []T) []T {
	if len(items) > listLimit {
		return items[:listLimit]
	}
	return items
}
