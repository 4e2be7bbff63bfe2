package models

import "strings"

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

// ParseRole maps a token claim to a role. Anything but admin is a student.
func ParseRole(raw string) UserRole {
	if UserRole(strings.ToLower(strings.TrimSpace(raw))) == RoleAdmin {
		return RoleAdmin
	}
	return RoleStudent
}

// Principal is the authenticated caller resolved from the bearer token.
// Users themselves live in the surrounding platform.
type Principal struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
