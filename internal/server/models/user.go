package models

import "time"

// User is an account row. PasswordHash is a bcrypt hash; Capabilities holds
// the raw capability names granted to the account, translated into typed
// capabilities at login.
type User struct {
	ID           int64     `json:"id"`
	Login        string    `json:"login"`
	PasswordHash []byte    `json:"-"`
	Capabilities []string  `json:"capabilities"`
	CreatedAt    time.Time `json:"createdAt"`
}
