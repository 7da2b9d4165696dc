// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an identity record. Password holds a hasher digest or is empty
// for phone-only accounts; it is never a raw password.
type User struct {
	ID          int64
	Name        string
	LoginHandle *string
	Password    string
	Phone       string
	Role        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
