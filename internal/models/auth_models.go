package models

import "time"

// Role names recognised by the route guards.
const (
	RoleAdmin   = "Admin"
	RoleManager = "Manager"
	RoleViewer  = "Viewer"
)

// User is a dashboard account allowed to read the metrics.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FullName     *string   `json:"full_name,omitempty" db:"full_name"`
	RoleID       *int64    `json:"role_id,omitempty" db:"role_id"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	Role         *Role     `json:"role,omitempty"`
}

// RoleName returns the joined role name, or "" when the user has none.
func (u *User) RoleName() string {
	if u == nil || u.Role == nil {
		return ""
	}
	return u.Role.Name
}

// Role represents a user role
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name" db:"name"`
}

// Credentials for login request
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}
