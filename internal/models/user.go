package models

import "time"

// Role is the access level assigned to a user account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a user account in the system.
type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"` // Never expose this to the client
	RefreshTokenHash string    `json:"-"` // Hash of the single valid refresh token, empty when logged out
	Role             Role      `json:"role"`
	PhoneNumber      string    `json:"phoneNumber,omitempty"`
	EmailVerified    bool      `json:"emailVerified"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
