package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventUserApproved   EventType = "user_approved"
	EventUserRemoved    EventType = "user_removed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    int64       `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserPayload carries the account fields handlers need to notify someone.
type UserPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserRemovedPayload records who removed an account.
type UserRemovedPayload struct {
	Email string `json:"email"`
	Actor string `json:"actor"`
}
