package dashboard

import (
	"context"

	"pos-analytics/analytics"
	"pos-analytics/metrics"
	"pos-analytics/models"
)

const overviewTopItems = 5

type Overview struct {
	Summary       analytics.SalesSummary
	ProfitLoss    analytics.ProfitLoss
	TopItems      []analytics.ItemSales
	LowStockCount int
	CriticalCount int
	AverageRating float64
	RatingCount   int
}

type SalesReport struct {
	Summary    analytics.SalesSummary
	Categories []analytics.CategorySales
	TopItems   []analytics.ItemSales
	LeastItems []analytics.ItemSales
	Hours      [24]analytics.HourSales
	Tables     []analytics.TableSales
	OrderTypes []analytics.OrderTypeSales
	Discounts  analytics.DiscountImpactResult
}

// ItemDepletion pairs an inventory item with its run-rate projection and
// reorder state.
type ItemDepletion struct {
	Item         models.InventoryItem
	Depletion    analytics.Depletion
	ReorderPoint float64
	NeedsReorder bool
}

type InventoryReport struct {
	LowStock      []analytics.LowStockItem
	Depletion     []ItemDepletion
	Waste         analytics.WasteAnalysis
	Suppliers     []analytics.SupplierScore
	Profitability []analytics.MenuItemProfit
}

type EmployeeReport struct {
	Sales      []analytics.EmployeeSales
	Turnover   analytics.TurnoverResult
	Labor      analytics.LaborCostResult
	Attendance []analytics.Attendance
	Handling   []analytics.HandlingTime
}

type FinancialReport struct {
	ProfitLoss analytics.ProfitLoss
	Expenses   []analytics.ExpenseCategory
	COGS       []analytics.MenuItemCOGS
	Payroll    analytics.PayrollResult
	Tax        analytics.TaxResult
}

type CustomerReport struct {
	Ratings     analytics.RatingResult
	Sentiment   analytics.SentimentResult
	Preferences analytics.PreferenceResult
}

func (d *Dashboard) overview(ctx context.Context, rep *Report) *Overview {
	orders := d.orders(ctx, rep)
	items := d.inventoryItems(ctx, rep)
	expenses := d.expenses(ctx, rep)
	usage := d.usage(ctx, rep)
	feedback := d.feedback(ctx, rep)

	low := analytics.LowStock(items)
	ratings := analytics.RatingDistribution(feedback)
	o := &Overview{
		Summary:       analytics.Summarize(orders),
		ProfitLoss:    analytics.ProfitAndLoss(orders, expenses, usage),
		TopItems:      analytics.TopSellingItems(orders, overviewTopItems),
		LowStockCount: len(low),
		AverageRating: ratings.Average,
		RatingCount:   ratings.Total,
	}
	for _, l := range low {
		if l.Status == analytics.StockCritical {
			o.CriticalCount++
		}
	}
	return o
}

func (d *Dashboard) sales(ctx context.Context, rep *Report) *SalesReport {
	orders := d.orders(ctx, rep)
	return &SalesReport{
		Summary:    analytics.Summarize(orders),
		Categories: analytics.GroupByCategory(orders),
		TopItems:   analytics.TopSellingItems(orders, d.opts.TopItems),
		LeastItems: analytics.LeastSellingItems(orders, d.opts.TopItems),
		Hours:      analytics.GroupByHour(orders, d.opts.Location),
		Tables:     analytics.GroupByTable(orders),
		OrderTypes: analytics.GroupByOrderType(orders),
		Discounts:  analytics.DiscountImpact(orders),
	}
}

func (d *Dashboard) inventory(ctx context.Context, rep *Report) *InventoryReport {
	items := d.inventoryItems(ctx, rep)
	usage := d.usage(ctx, rep)
	waste := d.waste(ctx, rep)
	deliveries := d.deliveries(ctx, rep)
	menu := d.menuItems(ctx, rep)
	orders := d.orders(ctx, rep)

	low := analytics.LowStock(items)
	metrics.LowStockItems.Set(float64(len(low)))

	depletion := make([]ItemDepletion, 0, len(items))
	for _, it := range items {
		depletion = append(depletion, ItemDepletion{
			Item:         it,
			Depletion:    analytics.DepletionRate(it, usage),
			ReorderPoint: d.opts.Buffers.ReorderPoint(it),
			NeedsReorder: d.opts.Buffers.NeedsReorder(it),
		})
	}
	return &InventoryReport{
		LowStock:      low,
		Depletion:     depletion,
		Waste:         analytics.AnalyzeWaste(waste),
		Suppliers:     analytics.SupplierPerformance(deliveries),
		Profitability: analytics.MenuItemProfitability(menu, items, models.FlattenSales(orders)),
	}
}

func (d *Dashboard) employees(ctx context.Context, rep *Report) *EmployeeReport {
	orders := d.orders(ctx, rep)
	staff := d.staff(ctx, rep)
	shifts := d.shifts(ctx, rep)
	return &EmployeeReport{
		Sales:      analytics.SalesPerformance(orders, staff),
		Turnover:   analytics.TableTurnover(orders, staff),
		Labor:      analytics.LaborCosts(shifts, orders, staff),
		Attendance: analytics.AttendanceStats(shifts, staff),
		Handling:   analytics.OrderHandlingTime(orders, staff, d.opts.Handling),
	}
}

func (d *Dashboard) financial(ctx context.Context, rep *Report) *FinancialReport {
	orders := d.orders(ctx, rep)
	expenses := d.expenses(ctx, rep)
	usage := d.usage(ctx, rep)
	menu := d.menuItems(ctx, rep)
	items := d.inventoryItems(ctx, rep)
	shifts := d.shifts(ctx, rep)
	return &FinancialReport{
		ProfitLoss: analytics.ProfitAndLoss(orders, expenses, usage),
		Expenses:   analytics.ExpensesByCategory(expenses),
		COGS:       analytics.COGSByMenuItem(menu, items, models.FlattenSales(orders)),
		Payroll:    analytics.PayrollCosts(shifts),
		Tax:        analytics.TaxAnalysis(orders),
	}
}

func (d *Dashboard) customers(ctx context.Context, rep *Report) *CustomerReport {
	feedback := d.feedback(ctx, rep)
	orders := d.orders(ctx, rep)
	return &CustomerReport{
		Ratings:     analytics.RatingDistribution(feedback),
		Sentiment:   analytics.CommentSentiment(feedback, d.opts.Keywords),
		Preferences: analytics.OrderPreferences(orders, d.opts.Dietary),
	}
}
