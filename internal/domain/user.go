package domain

import "time"

// Role separates customers from support agents.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAgent    Role = "AGENT"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAgent
}

// User is a customer or support agent held by the identity directory.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	AvatarURL string
	CreatedAt time.Time
}

// IsAgent reports whether the user may see internal notes.
func (u *User) IsAgent() bool {
	return u != nil && u.Role == RoleAgent
}
