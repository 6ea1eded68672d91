package analytics

import (
	"pos-analytics/models"
)

type ProfitLoss struct {
	TotalRevenue      float64
	TotalCOGS         float64
	GrossProfit       float64
	GrossProfitMargin float64
	TotalExpenses     float64
	NetProfit         float64
	NetProfitMargin   float64
}

// ProfitAndLoss derives gross and net profit from orders, expenses and
// ingredient usage cost. Margins are 0 without revenue.
func ProfitAndLoss(orders []models.Order, expenses []models.Expense, usage []models.UsageRecord) ProfitLoss {
	var p ProfitLoss
	p.TotalRevenue = TotalSales(orders)
	for _, u := range usage {
		p.TotalCOGS += u.Cost
	}
	for _, e := range expenses {
		p.TotalExpenses += e.Amount
	}
	p.GrossProfit = p.TotalRevenue - p.TotalCOGS
	p.NetProfit = p.GrossProfit - p.TotalExpenses
	if p.TotalRevenue > 0 {
		p.GrossProfitMargin = p.GrossProfit / p.TotalRevenue * 100
		p.NetProfitMargin = p.NetProfit / p.TotalRevenue * 100
	}
	return p
}

type ExpenseCategory struct {
	Category    string
	TotalAmount float64
	Count       int
}

// ExpensesByCategory groups expenses in first-seen order; blank categories are "Other".
func ExpensesByCategory(expenses []models.Expense) []ExpenseCategory {
	idx := make(map[string]int)
	var out []ExpenseCategory
	for _, e := range expenses {
		cat := e.Category
		if cat == "" {
			cat = "Other"
		}
		i, ok := idx[cat]
		if !ok {
			i = len(out)
			idx[cat] = i
			out = append(out, ExpenseCategory{Category: cat})
		}
		out[i].TotalAmount += e.Amount
		out[i].Count++
	}
	return out
}

type MenuItemCOGS struct {
	ID             string
	Name           string
	Category       string
	Price          float64
	IngredientCost float64
	COGSPercentage float64
	QuantitySold   float64
	TotalRevenue   float64 // list price x quantity sold
	TotalCOGS      float64
}

// COGSByMenuItem costs each menu item's recipe and multiplies by units sold.
func COGSByMenuItem(menu []models.MenuItem, inventory []models.InventoryItem, sales []models.SaleRecord) []MenuItemCOGS {
	inv := inventoryIndex(inventory)
	out := make([]MenuItemCOGS, 0, len(menu))
	for _, m := range menu {
		c := MenuItemCOGS{
			ID:             m.ID,
			Name:           m.Name,
			Category:       m.Category,
			Price:          m.Price,
			IngredientCost: IngredientCost(m, inv),
		}
		for _, s := range sales {
			if s.ItemID == m.ID {
				c.QuantitySold += saleQuantity(s)
			}
		}
		c.TotalRevenue = m.Price * c.QuantitySold
		c.TotalCOGS = c.IngredientCost * c.QuantitySold
		if m.Price > 0 {
			c.COGSPercentage = c.IngredientCost / m.Price * 100
		}
		out = append(out, c)
	}
	return out
}

type PayrollResult struct {
	TotalPayroll    float64
	RegularPayroll  float64
	OvertimePayroll float64
	Roles           []RolePayroll
}

// PayrollCosts totals shift pay overall and per role. A role's EmployeeCount
// counts distinct employees, not shifts.
func PayrollCosts(shifts []models.Shift) PayrollResult {
	var res PayrollResult
	idx := make(map[models.Role]int)
	seen := make(map[models.Role]map[string]struct{})
	for _, s := range shifts {
		res.TotalPayroll += s.TotalPay
		res.RegularPayroll += s.RegularPay
		res.OvertimePayroll += s.OvertimePay

		i, ok := idx[s.EmployeeRole]
		if !ok {
			i = len(res.Roles)
			idx[s.EmployeeRole] = i
			res.Roles = append(res.Roles, RolePayroll{Role: s.EmployeeRole})
			seen[s.EmployeeRole] = make(map[string]struct{})
		}
		seen[s.EmployeeRole][s.EmployeeID] = struct{}{}
		res.Roles[i].TotalHours += s.HoursWorked
		res.Roles[i].TotalCost += s.TotalPay
	}
	for i := range res.Roles {
		res.Roles[i].EmployeeCount = len(seen[res.Roles[i].Role])
	}
	return res
}

type TaxResult struct {
	TotalSalesTax           float64
	TotalServiceCharges     float64
	TotalTaxes              float64
	BeforeTaxTotal          float64
	TotalRevenue            float64
	SalesTaxPercentage      float64
	ServiceChargePercentage float64
	TaxPercentage           float64
}

// TaxAnalysis relates collected tax and service charges to the discounted subtotal.
func TaxAnalysis(orders []models.Order) TaxResult {
	var t TaxResult
	for _, o := range orders {
		t.TotalSalesTax += o.Tax
		t.TotalServiceCharges += o.ServiceCharge
		t.BeforeTaxTotal += o.Subtotal - o.Discount.Amount
		t.TotalRevenue += o.Total
	}
	t.TotalTaxes = t.TotalSalesTax + t.TotalServiceCharges
	if t.BeforeTaxTotal > 0 {
		t.SalesTaxPercentage = t.TotalSalesTax / t.BeforeTaxTotal * 100
		t.ServiceChargePercentage = t.TotalServiceCharges / t.BeforeTaxTotal * 100
		t.TaxPercentage = t.TotalTaxes / t.BeforeTaxTotal * 100
	}
	return t
}
