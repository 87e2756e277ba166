// Package models defines the persisted domain types shared by repositories,
// services, and transports.
package models

import "time"

// User is a registered account. PasswordHash is an opaque bcrypt digest;
// plaintext is never stored. Rows are immutable except for admin promotion.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}
