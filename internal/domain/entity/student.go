package entity

import "time"

// Course languages and levels offered by the program. Validation rejects
// anything outside these sets.
const (
	LanguageSpanish    = "Spanish"
	LanguageFrench     = "French"
	LanguagePortuguese = "Portuguese"
	LanguageItalian    = "Italian"

	LevelEC1 = "EC1"
	LevelEC2 = "EC2"

	MembershipMember    = "Member"
	MembershipNonMember = "Non-member"
)

// Student is the aggregate root: it never exists without a resolvable User
// and Address reference. The coordinator, not the stores, enforces that.
type Student struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	AddressID        string    `json:"address_id"`
	WardID           string    `json:"ward_id,omitempty"`
	BirthDate        time.Time `json:"birth_date"`
	Language         string    `json:"language"`
	Level            string    `json:"level"`
	ChurchMembership string    `json:"church_membership"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Populated on reads; nil on bare rows.
	User    *User    `json:"user,omitempty"`
	Address *Address `json:"address,omitempty"`
}
