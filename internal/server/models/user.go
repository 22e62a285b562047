// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account scoped to one client organisation. Usernames are unique
// per ClientID.
type User struct {
	ID           string    `db:"id"`
	ClientID     string    `db:"client_id"`
	Username     string    `db:"username"`
	Role         string    `db:"role"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}
