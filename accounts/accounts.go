package accounts

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role represents an account's access level in the back office.
type Role string

const (
	RoleUser      Role = "USER"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

type Account struct {
	ID           string    `json:"id,omitempty"`    // Unique identifier for the account
	Email        string    `json:"email,omitempty"` // Account email address, unique
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"-"` // Hashed version of the password - never serialize
	Role         Role      `json:"role,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`

	// Password-reset state. Only the SHA-256 of the raw reset token is ever
	// stored; both fields are cleared on consumption, expiry, or failed
	// delivery.
	ResetTokenHash    *string    `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`
}

// ValidatePassword checks the minimum password requirement shared by
// registration, password change, and password reset.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
