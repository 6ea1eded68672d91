package analytics

import (
	"testing"

	"pos-analytics/models"
)

func TestProfitAndLoss(t *testing.T) {
	expenses := []models.Expense{{Amount: 20}, {Amount: 10}}
	usage := []models.UsageRecord{{Cost: 30}, {Cost: 20}}
	p := ProfitAndLoss(scenarioOrders(), expenses, usage)
	if p.TotalRevenue != 150 || p.TotalCOGS != 50 || p.GrossProfit != 100 || p.TotalExpenses != 30 || p.NetProfit != 70 {
		t.Errorf("ProfitAndLoss = %+v", p)
	}
	if !approx(p.GrossProfitMargin, 200.0/3) || !approx(p.NetProfitMargin, 140.0/3) {
		t.Errorf("margins = %v / %v", p.GrossProfitMargin, p.NetProfitMargin)
	}
}

func TestProfitAndLossWithoutRevenue(t *testing.T) {
	p := ProfitAndLoss(nil, []models.Expense{{Amount: 40}}, nil)
	if p.NetProfit != -40 {
		t.Errorf("NetProfit = %v, want -40", p.NetProfit)
	}
	if p.GrossProfitMargin != 0 || p.NetProfitMargin != 0 {
		t.Errorf("margins = %v / %v, want 0 / 0", p.GrossProfitMargin, p.NetProfitMargin)
	}
}

func TestExpensesByCategory(t *testing.T) {
	got := ExpensesByCategory([]models.Expense{
		{Category: "Rent", Amount: 1000},
		{Amount: 15},
		{Category: "Rent", Amount: 500},
	})
	want := []ExpenseCategory{
		{Category: "Rent", TotalAmount: 1500, Count: 2},
		{Category: "Other", TotalAmount: 15, Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ExpensesByCategory[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCOGSByMenuItem(t *testing.T) {
	menu, inv := burgerSodaMenu()
	sales := []models.SaleRecord{{ItemID: "burger", Quantity: 2}, {ItemID: "soda"}}
	got := COGSByMenuItem(menu, inv, sales)
	burger := got[0]
	if burger.QuantitySold != 2 || burger.TotalRevenue != 20 || !approx(burger.TotalCOGS, 8) || !approx(burger.COGSPercentage, 40) {
		t.Errorf("burger = %+v", burger)
	}
	if soda := got[1]; soda.QuantitySold != 1 || !approx(soda.TotalCOGS, 0.5) {
		t.Errorf("soda = %+v", soda)
	}
}

func TestPayrollCountsDistinctEmployees(t *testing.T) {
	shifts := []models.Shift{
		{EmployeeID: "e1", EmployeeRole: models.RoleWaiter, HoursWorked: 8, TotalPay: 80, RegularPay: 80},
		{EmployeeID: "e1", EmployeeRole: models.RoleWaiter, HoursWorked: 8, TotalPay: 90, RegularPay: 80, OvertimePay: 10},
		{EmployeeID: "e3", EmployeeRole: models.RoleWaiter, HoursWorked: 4, TotalPay: 40, RegularPay: 40},
		{EmployeeID: "e2", EmployeeRole: models.RoleChef, HoursWorked: 6, TotalPay: 90, RegularPay: 90},
	}
	res := PayrollCosts(shifts)
	if res.TotalPayroll != 300 || res.RegularPayroll != 290 || res.OvertimePayroll != 10 {
		t.Errorf("totals = %+v", res)
	}
	if len(res.Roles) != 2 {
		t.Fatalf("roles = %d, want 2", len(res.Roles))
	}
	waiters := res.Roles[0]
	if waiters.Role != models.RoleWaiter || waiters.EmployeeCount != 2 || waiters.TotalHours != 20 {
		t.Errorf("waiters = %+v, want 2 employees over 20 hours", waiters)
	}
	if res.Roles[1].EmployeeCount != 1 {
		t.Errorf("chefs = %+v", res.Roles[1])
	}
}

func TestTaxAnalysis(t *testing.T) {
	orders := []models.Order{
		{Subtotal: 100, Discount: models.Discount{Amount: 10}, Tax: 9, ServiceCharge: 4.5, Total: 103.5},
	}
	res := TaxAnalysis(orders)
	if res.BeforeTaxTotal != 90 || res.TotalTaxes != 13.5 || res.TotalRevenue != 103.5 {
		t.Errorf("TaxAnalysis = %+v", res)
	}
	if !approx(res.SalesTaxPercentage, 10) || !approx(res.ServiceChargePercentage, 5) || !approx(res.TaxPercentage, 15) {
		t.Errorf("percentages = %v / %v / %v", res.SalesTaxPercentage, res.ServiceChargePercentage, res.TaxPercentage)
	}
	if z := TaxAnalysis(nil); z.TaxPercentage != 0 {
		t.Errorf("empty TaxPercentage = %v", z.TaxPercentage)
	}
}
