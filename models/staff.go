package models

import (
	"strings"
	"time"
)

// Role is a staff role. Gating code switches on these values.
type Role int

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleManager
	RoleChef
	RoleCashier
	RoleWaiter
	RoleStaff
)

// ParseRole accepts the role names stored on profiles, case-insensitively.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin
	case "manager":
		return RoleManager
	case "chef":
		return RoleChef
	case "cashier":
		return RoleCashier
	case "waiter":
		return RoleWaiter
	case "staff":
		return RoleStaff
	default:
		return RoleUnknown
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleManager:
		return "Manager"
	case RoleChef:
		return "Chef"
	case RoleCashier:
		return "Cashier"
	case RoleWaiter:
		return "Waiter"
	case RoleStaff:
		return "Staff"
	default:
		return "Unknown"
	}
}

func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Role) UnmarshalText(b []byte) error {
	*r = ParseRole(string(b))
	return nil
}

type Employee struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Role         Role    `json:"role"`
	HourlyRate   float64 `json:"hourlyRate"`
	OvertimeRate float64 `json:"overtimeRate"`
	Active       bool    `json:"isActive"`
}

type Shift struct {
	ID             string     `json:"id"`
	EmployeeID     string     `json:"employeeId"`
	EmployeeRole   Role       `json:"employeeRole"`
	Date           *time.Time `json:"date,omitempty"`
	ScheduledStart *time.Time `json:"scheduledStart,omitempty"`
	ScheduledEnd   *time.Time `json:"scheduledEnd,omitempty"`
	ActualStart    *time.Time `json:"actualStart,omitempty"`
	ActualEnd      *time.Time `json:"actualEnd,omitempty"`
	HoursWorked    float64    `json:"hoursWorked"`
	IsLate         bool       `json:"isLate"`
	LateBy         float64    `json:"lateBy"` // minutes
	RegularHours   float64    `json:"regularHours"`
	OvertimeHours  float64    `json:"overtimeHours"`
	RegularPay     float64    `json:"regularPay"`
	OvertimePay    float64    `json:"overtimePay"`
	TotalPay       float64    `json:"totalPay"`
}

// Session is the authenticated identity behind a request. It is passed
// explicitly to every gated operation.
type Session struct {
	UserID     string
	TelegramID int64
	Email      string
	Name       string
	Role       Role
}

// CanManage reports whether the session may run manager-level operations
// (analytics, inventory adjustments).
func (s *Session) CanManage() bool {
	if s == nil {
		return false
	}
	switch s.Role {
	case RoleAdmin, RoleManager:
		return true
	case RoleChef, RoleCashier, RoleWaiter, RoleStaff, RoleUnknown:
		return false
	}
	return false
}
