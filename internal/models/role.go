package models

import "strings"

type Role string

const (
	RoleEmployee Role = "employee"
	RoleHR       Role = "hr"
	RoleManager  Role = "manager"
)

func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if role == "" {
		return RoleEmployee, true
	}
	return role, role.Valid()
}

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleHR, RoleManager:
		return true
	}
	return false
}

// IsElevated reports whether the role sees beyond its own records.
func (r Role) IsElevated() bool {
	return r == RoleHR || r == RoleManager
}

// CanApprove reports whether the role may decide leave requests and correct attendance.
func (r Role) CanApprove() bool {
	return r.IsElevated()
}

// CanAdministerPayroll reports whether the role may write payroll and view any payslip.
func (r Role) CanAdministerPayroll() bool {
	return r == RoleHR
}

// CanManageEmployees reports whether the role may create and deactivate employees.
func (r Role) CanManageEmployees() bool {
	return r == RoleHR
}
