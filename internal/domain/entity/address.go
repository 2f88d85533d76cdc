package entity

import "time"

// Address is a postal record owned exclusively by one Student.
type Address struct {
	ID           string    `json:"id"`
	Street       string    `json:"street"`
	Neighborhood string    `json:"neighborhood,omitempty"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Country      string    `json:"country"`
	PostalCode   string    `json:"postal_code"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
