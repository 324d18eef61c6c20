package domain

// User is an account allowed to manage student records once authorized.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Authorized   bool
}

// Pending reports whether the account still awaits administrator approval.
func (u *User) Pending() bool {
	return !u.Authorized
}
