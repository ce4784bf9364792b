// Package models defines the core data structures for marketplace users
// and ads.
package models

import "time"

// User represents a marketplace account, created on first successful
// phone verification.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Phone is the user's phone number, unique across users.
	Phone string `json:"phone"`
	// Name is the display name; defaults to "user <phone>" when the user
	// never provided one.
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultName returns the display name derived from a phone number,
// used when the user registers without providing one.
func DefaultName(phone string) string {
	return "user " + phone
}
