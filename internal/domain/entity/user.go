package entity

import (
	"time"
)

// RoleType enumerates the account kinds stored on users.type.
// Values mirror the legacy numbering and are immutable after creation.
type RoleType int

const (
	RoleStudent    RoleType = 1
	RoleAdmin      RoleType = 10
	RoleInstructor RoleType = 11
)

func (r RoleType) Valid() bool {
	switch r {
	case RoleStudent, RoleAdmin, RoleInstructor:
		return true
	}
	return false
}

func (r RoleType) String() string {
	switch r {
	case RoleStudent:
		return "student"
	case RoleAdmin:
		return "admin"
	case RoleInstructor:
		return "instructor"
	}
	return "unknown"
}

// User is the identity record owned by at most one Student (for RoleStudent).
// Passwords are stored as bcrypt hashes in Password. AvatarURL is never
// empty: either an uploaded object URL or the configured default avatar.
type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Type      RoleType  `json:"type"`
	Phone     string    `json:"phone,omitempty"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
