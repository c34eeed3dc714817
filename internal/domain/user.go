package domain

import "time"

type Role string

const (
	RoleVolunteer Role = "VOLUNTEER"
	RoleManager   Role = "MANAGER"
	RoleAdmin     Role = "ADMIN"
)

// ParseRole maps a stored role name to a Role, rejecting unknown names at the
// boundary instead of letting them leak into authorization checks.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleVolunteer, RoleManager, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

type UserStatus string

const (
	UserStatusActive UserStatus = "ACTIVE"
	UserStatusLocked UserStatus = "LOCKED"
)

type User struct {
	ID           int32      `json:"id"`
	Role         Role       `json:"role"`
	FullName     string     `json:"full_name"`
	Email        string     `json:"email"`
	PhoneNumber  string     `json:"phone_number"`
	PasswordHash string     `json:"-"`
	Status       UserStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Actor is the authenticated principal attempting an operation. It is passed
// explicitly into every service call; there is no ambient request identity.
type Actor struct {
	ID   int32
	Role Role
}
