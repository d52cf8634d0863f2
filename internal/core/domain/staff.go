package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// ValidRole reports whether role is one the console knows about.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStaff
}

// Staff models an authenticated courier operator.
type Staff struct {
	ID        string    `json:"id"`
	UID       string    `json:"uid"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	StaffID string
	Role    string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Identity is what the external phone-OTP provider vouches for.
type Identity struct {
	UID   string
	Phone string
}
