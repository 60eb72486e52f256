package identity

import "strings"

// Role decides which dashboard and navigation set an identity gets.
type Role string

const (
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
	RoleAdmin   Role = "admin"
)

// ParseRole maps free-form input onto the closed role set.
// Anything unrecognized becomes RoleStudent.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleMentor:
		return RoleMentor
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleStudent
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleMentor, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
