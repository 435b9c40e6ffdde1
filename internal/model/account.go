package model

import "time"

// Account links an external login to its in-game address.
// The address is derived from the login and never changes.
type Account struct {
	Login        string
	PasswordHash string
	Address      Address
	AccessLevel  int32
	CreatedAt    time.Time
	LastActive   time.Time
}
