package models

import "time"

// Role is the authorization tier attached to a user record.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is an identity keyed by an external open id.
type User struct {
	ID           int64     `json:"id"`
	OpenID       string    `json:"openId"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email,omitempty"`
	LoginMethod  string    `json:"loginMethod,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastSignedIn time.Time `json:"lastSignedIn"`
}

// IsAdmin reports whether the stored role grants admin access.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserUpsert carries the fields written on every successful sign-in.
type UserUpsert struct {
	OpenID      string
	Name        string
	Email       string
	LoginMethod string
	Role        Role // optional; empty keeps the stored role
}
