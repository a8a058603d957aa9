// Package models holds the server-side data model.
package models

import "time"

// UserStatus is the presence state of a user account.
type UserStatus string

const (
	StatusOnline  UserStatus = "ONLINE"
	StatusOffline UserStatus = "OFFLINE"
)

// User is the sole entity of the service. ID is assigned by the store,
// Token by the identity service at registration; both are stable for the
// lifetime of the record. Password is an opaque credential and must never
// cross the API boundary.
type User struct {
	ID        int64
	Username  string
	Name      string
	Password  string
	Token     string
	Status    UserStatus
	CreatedAt time.Time
	Birthday  *time.Time
}

// UserPatch carries the editable subset of a user profile. Nil fields are
// left untouched.
type UserPatch struct {
	Username *string
	Birthday *time.Time
}
