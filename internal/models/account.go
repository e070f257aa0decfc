package models

// Role is what a session may do.
type Role string

const (
	RoleWife    Role = "wife"
	RoleHusband Role = "husband"
)

// Valid reports whether r is one of the two fixed roles.
func (r Role) Valid() bool {
	return r == RoleWife || r == RoleHusband
}

// Account is one of the two fixed logins.
type Account struct {
	Username     string
	Role         Role
	PasswordHash string
}
