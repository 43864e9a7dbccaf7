package domain

import "time"

// User is the domain model for login accounts. The email doubles as the
// token subject.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
