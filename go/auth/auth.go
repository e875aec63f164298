// Package auth models the authenticated principal handed to the core by
// the host HTTP layer, and the role rules the core enforces.
package auth

import "fmt"

// Role is the authorization role of a principal.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleDriver  Role = "DRIVER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleDriver:
		return true
	}
	return false
}

// Principal is an authenticated caller. EmployeeID links a driver (or a
// manager who also drives) to their employee record; it is empty for
// service accounts.
type Principal struct {
	UserID     string
	Role       Role
	EmployeeID string
}

// IsAdmin reports whether the principal holds the ADMIN role.
func (p *Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// IsManager reports whether the principal holds MANAGER or above.
func (p *Principal) IsManager() bool { return p.Role == RoleManager || p.Role == RoleAdmin }

// CanActFor reports whether the principal may read or write driver
// records belonging to employeeID. Drivers act only for themselves;
// admins act for anyone.
func (p *Principal) CanActFor(employeeID string) bool {
	if p.IsAdmin() {
		return true
	}
	return p.EmployeeID != "" && p.EmployeeID == employeeID
}

// CanReadAll reports whether the principal may read every preference
// and assignment of a period.
func (p *Principal) CanReadAll() bool { return p.IsManager() }

// Validate checks the principal's internal consistency.
func (p *Principal) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("principal has no user id")
	}
	if !p.Role.Valid() {
		return fmt.Errorf("principal %s: unknown role %q", p.UserID, p.Role)
	}
	return nil
}
