package models

import (
	"strings"
	"time"
)

// User represents a sailing platform account.
type User struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email          string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email,max=255"`
	Username       string    `json:"username" gorm:"uniqueIndex;type:varchar(50)" validate:"required,min=3,max=50"`
	HashedPassword string    `json:"-" gorm:"type:varchar(255)"` // Never the plaintext
	IsActive       bool      `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time `json:"created_at"`
}

// Validate checks every field invariant and returns the first violation.
func (u *User) Validate() error {
	if err := u.validateEmail(); err != nil {
		return err
	}
	return u.validateUsername()
}

func (u *User) validateEmail() error {
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return &ValidationError{Field: "email", Constraint: "invalid email format"}
	}
	if len(u.Email) > 255 {
		return &ValidationError{Field: "email", Constraint: "must be at most 255 characters"}
	}
	return nil
}

func (u *User) validateUsername() error {
	if len(u.Username) < 3 {
		return &ValidationError{Field: "username", Constraint: "must be at least 3 characters"}
	}
	if len(u.Username) > 50 {
		return &ValidationError{Field: "username", Constraint: "must be at most 50 characters"}
	}
	for _, r := range u.Username {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return &ValidationError{Field: "username", Constraint: "may only contain letters, numbers, underscores, and hyphens"}
		}
	}
	return nil
}

// UpdateEmail replaces the email, re-validating the whole entity. On a
// validation failure the previous email is restored before the error is
// returned, so the user is never observable in an invalid state.
func (u *User) UpdateEmail(newEmail string) error {
	oldEmail := u.Email
	u.Email = newEmail
	if err := u.Validate(); err != nil {
		u.Email = oldEmail
		return err
	}
	return nil
}

// Deactivate disables the account.
func (u *User) Deactivate() {
	u.IsActive = false
}

// Activate re-enables the account.
func (u *User) Activate() {
	u.IsActive = true
}

// CanLogin reports whether the account may authenticate.
func (u *User) CanLogin() bool {
	return u.IsActive
}
