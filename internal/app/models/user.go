package models

import "time"

// UserRole separates back-office staff from provisioned portal accounts.
type UserRole string

const (
	RoleStaff  UserRole = "STAFF"
	RolePortal UserRole = "PORTAL"
)

// User is a login account. Portal accounts are provisioned for enrolled
// students; staff accounts drive the back-office operations.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	RoleType     UserRole  `json:"roleType" db:"role_type"`
	PersonID     *int64    `json:"personId,omitempty" db:"person_id"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
