package entity

import "time"

// TokenMetadata is the session/refresh-token record for a User. It is
// created on login and removed when its owner is deleted via the Student
// cascade.
type TokenMetadata struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	SessionID        string    `json:"session_id"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
