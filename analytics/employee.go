package analytics

import (
	"math/rand"
	"time"

	"pos-analytics/models"
)

// fallbackTurnover stands in for a completed order that carries no completion time.
const fallbackTurnover = time.Hour

const unknownName = "Unknown"

type staffInfo struct {
	Name string
	Role models.Role
}

func staffIndex(employees []models.Employee) map[string]staffInfo {
	m := make(map[string]staffInfo, len(employees))
	for _, e := range employees {
		m[e.ID] = staffInfo{Name: e.Name, Role: e.Role}
	}
	return m
}

func lookupStaff(idx map[string]staffInfo, id string) staffInfo {
	if s, ok := idx[id]; ok {
		return s
	}
	return staffInfo{Name: unknownName, Role: models.RoleUnknown}
}

type EmployeeSales struct {
	Employee          models.Employee
	TotalOrders       int
	TotalSales        float64
	ItemsSold         float64
	AverageOrderValue float64
}

// SalesPerformance credits each order to its server. Every employee is listed,
// including those without orders.
func SalesPerformance(orders []models.Order, employees []models.Employee) []EmployeeSales {
	out := make([]EmployeeSales, len(employees))
	idx := make(map[string]int, len(employees))
	for i, e := range employees {
		out[i].Employee = e
		idx[e.ID] = i
	}
	for _, o := range orders {
		i, ok := idx[o.ServerID]
		if o.ServerID == "" || !ok {
			continue
		}
		out[i].TotalOrders++
		out[i].TotalSales += o.Total
		// A line without a quantity still sold one unit.
		for _, it := range o.Items {
			if it.Quantity == 0 {
				out[i].ItemsSold++
				continue
			}
			out[i].ItemsSold += it.Quantity
		}
	}
	for i := range out {
		if out[i].TotalOrders > 0 {
			out[i].AverageOrderValue = out[i].TotalSales / float64(out[i].TotalOrders)
		}
	}
	return out
}

type EmployeeTurnover struct {
	ID                  string
	Name                string
	Role                models.Role
	TablesServed        int
	TotalTurnoverTime   float64 // minutes
	AverageTurnoverTime float64
}

type TurnoverResult struct {
	Employees              []EmployeeTurnover
	OverallAverageTurnover float64 // minutes, orders with both timestamps only
}

func completionTime(o models.Order) *time.Time {
	if o.CompletedAt != nil && !o.CompletedAt.IsZero() {
		return o.CompletedAt
	}
	if o.UpdatedAt != nil && !o.UpdatedAt.IsZero() {
		return o.UpdatedAt
	}
	return nil
}

// TableTurnover measures creation-to-completion minutes of completed orders per
// server. A completed order without a completion time counts as one hour for its
// server but is left out of the overall average.
func TableTurnover(orders []models.Order, employees []models.Employee) TurnoverResult {
	staff := staffIndex(employees)
	idx := make(map[string]int)
	var res TurnoverResult
	var overallSum float64
	var overallN int
	for _, o := range orders {
		if o.Status != models.OrderStatusCompleted || o.CreatedAt == nil || o.CreatedAt.IsZero() {
			continue
		}
		minutes := fallbackTurnover.Minutes()
		if done := completionTime(o); done != nil {
			minutes = done.Sub(*o.CreatedAt).Minutes()
			overallSum += minutes
			overallN++
		}
		if o.ServerID == "" {
			continue
		}
		i, ok := idx[o.ServerID]
		if !ok {
			s := lookupStaff(staff, o.ServerID)
			i = len(res.Employees)
			idx[o.ServerID] = i
			res.Employees = append(res.Employees, EmployeeTurnover{ID: o.ServerID, Name: s.Name, Role: s.Role})
		}
		res.Employees[i].TablesServed++
		res.Employees[i].TotalTurnoverTime += minutes
	}
	for i := range res.Employees {
		e := &res.Employees[i]
		e.AverageTurnoverTime = e.TotalTurnoverTime / float64(e.TablesServed)
	}
	if overallN > 0 {
		res.OverallAverageTurnover = overallSum / float64(overallN)
	}
	return res
}

type EmployeeLabor struct {
	ID            string
	Name          string
	Role          models.Role
	TotalHours    float64
	RegularHours  float64
	OvertimeHours float64
	TotalCost     float64
}

type RolePayroll struct {
	Role          models.Role
	EmployeeCount int
	TotalHours    float64
	TotalCost     float64
}

type LaborCostResult struct {
	TotalLaborCost      float64 // regular + overtime pay
	RegularPayroll      float64
	OvertimePayroll     float64
	LaborCostPercentage float64
	Employees           []EmployeeLabor
	Roles               []RolePayroll
}

// LaborCosts totals shift pay per employee and per role and relates it to revenue.
func LaborCosts(shifts []models.Shift, orders []models.Order, employees []models.Employee) LaborCostResult {
	var res LaborCostResult
	staff := staffIndex(employees)
	idx := make(map[string]int)
	for _, s := range shifts {
		i, ok := idx[s.EmployeeID]
		if !ok {
			info := lookupStaff(staff, s.EmployeeID)
			i = len(res.Employees)
			idx[s.EmployeeID] = i
			res.Employees = append(res.Employees, EmployeeLabor{ID: s.EmployeeID, Name: info.Name, Role: info.Role})
		}
		e := &res.Employees[i]
		e.TotalHours += s.HoursWorked
		e.RegularHours += s.RegularHours
		e.OvertimeHours += s.OvertimeHours
		e.TotalCost += s.TotalPay

		res.RegularPayroll += s.RegularPay
		res.OvertimePayroll += s.OvertimePay
	}

	roleIdx := make(map[models.Role]int)
	for _, e := range res.Employees {
		r, ok := roleIdx[e.Role]
		if !ok {
			r = len(res.Roles)
			roleIdx[e.Role] = r
			res.Roles = append(res.Roles, RolePayroll{Role: e.Role})
		}
		res.Roles[r].EmployeeCount++
		res.Roles[r].TotalHours += e.TotalHours
		res.Roles[r].TotalCost += e.TotalCost
	}

	res.TotalLaborCost = res.RegularPayroll + res.OvertimePayroll
	if revenue := TotalSales(orders); revenue > 0 {
		res.LaborCostPercentage = res.TotalLaborCost / revenue * 100
	}
	return res
}

type Attendance struct {
	ID              string
	Name            string
	Role            models.Role
	TotalShifts     int
	LateShifts      int
	PunctualityRate float64
	AverageLateness float64 // minutes, over late shifts only
	AttendanceRate  float64
	// AttendanceAuthoritative is false while no absence data exists;
	// AttendanceRate is then a fixed 100.
	AttendanceAuthoritative bool
}

// AttendanceStats reports punctuality per employee.
func AttendanceStats(shifts []models.Shift, employees []models.Employee) []Attendance {
	staff := staffIndex(employees)
	idx := make(map[string]int)
	var out []Attendance
	var lateness []float64
	for _, s := range shifts {
		i, ok := idx[s.EmployeeID]
		if !ok {
			info := lookupStaff(staff, s.EmployeeID)
			i = len(out)
			idx[s.EmployeeID] = i
			out = append(out, Attendance{ID: s.EmployeeID, Name: info.Name, Role: info.Role, AttendanceRate: 100})
			lateness = append(lateness, 0)
		}
		out[i].TotalShifts++
		if s.IsLate {
			out[i].LateShifts++
			lateness[i] += s.LateBy
		}
	}
	for i := range out {
		a := &out[i]
		a.PunctualityRate = float64(a.TotalShifts-a.LateShifts) / float64(a.TotalShifts) * 100
		if a.LateShifts > 0 {
			a.AverageLateness = lateness[i] / float64(a.LateShifts)
		}
	}
	return out
}

// HandlingTimeSource yields an order's preparation and service durations.
// ok is false when the source has no figure for the order.
type HandlingTimeSource interface {
	HandlingTimes(o models.Order) (prep, service time.Duration, ok bool)
}

// TimestampSource measures handling time from kitchen stage timestamps:
// preparation runs from preparing (or creation) to ready, service from ready
// to completion.
type TimestampSource struct{}

func (TimestampSource) HandlingTimes(o models.Order) (time.Duration, time.Duration, bool) {
	start := o.PreparingAt
	if start == nil {
		start = o.CreatedAt
	}
	done := completionTime(o)
	if start == nil || o.ReadyAt == nil || done == nil {
		return 0, 0, false
	}
	prep := o.ReadyAt.Sub(*start)
	service := done.Sub(*o.ReadyAt)
	if prep < 0 || service < 0 {
		return 0, 0, false
	}
	return prep, service, true
}

// SimulatedSource draws placeholder durations: 5-25 minutes of preparation and
// 15-45 minutes of service. Figures are not measurements. A nil Rand uses the
// package-level source, so the zero value is ready to use.
type SimulatedSource struct {
	Rand *rand.Rand
}

func (s SimulatedSource) intn(n int) int {
	if s.Rand == nil {
		return rand.Intn(n)
	}
	return s.Rand.Intn(n)
}

func (s SimulatedSource) HandlingTimes(models.Order) (time.Duration, time.Duration, bool) {
	prep := time.Duration(s.intn(20)+5) * time.Minute
	service := time.Duration(s.intn(30)+15) * time.Minute
	return prep, service, true
}

type HandlingTime struct {
	ID                     string
	Name                   string
	Role                   models.Role
	TotalOrders            int
	AveragePreparationTime float64 // minutes
	AverageServiceTime     float64
	AverageTotalTime       float64
}

// OrderHandlingTime averages handling durations per server using src.
func OrderHandlingTime(orders []models.Order, employees []models.Employee, src HandlingTimeSource) []HandlingTime {
	staff := staffIndex(employees)
	idx := make(map[string]int)
	var out []HandlingTime
	type sums struct{ prep, service float64 }
	var totals []sums
	for _, o := range orders {
		if o.ServerID == "" || o.CreatedAt == nil {
			continue
		}
		i, ok := idx[o.ServerID]
		if !ok {
			info := lookupStaff(staff, o.ServerID)
			i = len(out)
			idx[o.ServerID] = i
			out = append(out, HandlingTime{ID: o.ServerID, Name: info.Name, Role: info.Role})
			totals = append(totals, sums{})
		}
		prep, service, ok := src.HandlingTimes(o)
		if !ok {
			continue
		}
		out[i].TotalOrders++
		totals[i].prep += prep.Minutes()
		totals[i].service += service.Minutes()
	}
	for i := range out {
		n := float64(out[i].TotalOrders)
		if n == 0 {
			continue
		}
		out[i].AveragePreparationTime = totals[i].prep / n
		out[i].AverageServiceTime = totals[i].service / n
		out[i].AverageTotalTime = (totals[i].prep + totals[i].service) / n
	}
	return out
}
