package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// StaffRole represents the available roles for the RBAC system.
type StaffRole string

const (
	RoleSuperAdmin StaffRole = "SUPERADMIN"
	RoleAdmin      StaffRole = "ADMIN"
	RoleTeacher    StaffRole = "TEACHER"
	RoleGuest      StaffRole = "GUEST"
)

// StaffMember represents a directory entry stored in the staff table.
// Emails are stored lowercase; Buildings is ordered and the first entry is
// the member's primary building.
type StaffMember struct {
	ID           string         `db:"id" json:"id"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	FullName     string         `db:"full_name" json:"full_name"`
	Role         StaffRole      `db:"role" json:"role"`
	Buildings    pq.StringArray `db:"buildings" json:"buildings"`
	CarryOver    float64        `db:"carry_over" json:"carry_over"`
	Active       bool           `db:"active" json:"active"`
	LastLogin    *time.Time     `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// PrimaryBuilding returns the first building membership, or "" when none.
func (s StaffMember) PrimaryBuilding() string {
	if len(s.Buildings) == 0 {
		return ""
	}
	return s.Buildings[0]
}

// MemberOf reports whether the staff member belongs to the building.
func (s StaffMember) MemberOf(building string) bool {
	for _, b := range s.Buildings {
		if strings.EqualFold(b, building) {
			return true
		}
	}
	return false
}

// StaffFilter captures filtering criteria for listing staff.
type StaffFilter struct {
	Building string
	Role     *StaffRole
	Active   *bool
	Search   string
}

// StaffBalance is the derived directory row: identity plus computed totals.
type StaffBalance struct {
	Email       string  `json:"email"`
	FullName    string  `json:"full_name"`
	Building    string  `json:"building"`
	CarryOver   float64 `json:"carry_over"`
	EarnedHours float64 `json:"earned_hours"`
	UsedHours   float64 `json:"used_hours"`
	Balance     float64 `json:"balance"`
}

// CarryOverUpdate adjusts one member's carry-over hours.
type CarryOverUpdate struct {
	Email     string  `json:"email" validate:"required,email"`
	CarryOver float64 `json:"carry_over"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
