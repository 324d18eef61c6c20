package domain

// Role differentiates regular users from the configured administrator.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)
