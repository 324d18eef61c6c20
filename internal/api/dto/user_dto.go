package dto

import (
	"time"

	"github.com/classroom-kit/student-records/internal/domain"
)

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Admin     bool      `json:"admin"`
}

// UserResponse is the public view of an account. The digest never leaves
// the service.
type UserResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Authorized bool   `json:"authorized"`
}

// RegistrationResponse reports the new account and any mail failure.
type RegistrationResponse struct {
	User              UserResponse `json:"user"`
	Message           string       `json:"message"`
	NotificationError string       `json:"notification_error,omitempty"`
}

// ApprovalResponse reports an approved account and any mail failure.
type ApprovalResponse struct {
	User              UserResponse `json:"user"`
	NotificationError string       `json:"notification_error,omitempty"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Authorized: u.Authorized}
}

// NewUserList maps a slice of domain users.
func NewUserList(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

// ErrorText returns err's message, or empty for nil.
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
