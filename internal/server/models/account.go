package models

import "time"

// Account is the persisted user record. PasswordHash is only ever produced by
// the credential hasher.
type Account struct {
	ID           string
	UserName     string
	Email        string
	FullName     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
