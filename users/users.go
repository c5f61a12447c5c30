package users

import (
	"fmt"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// RoleType represents a user role within the storefront
type RoleType string

const (
	RoleAdmin    RoleType = "ADMIN"
	RoleCustomer RoleType = "CUSTOMER"
)

// Valid reports whether r is one of the known roles.
func (r RoleType) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// bcryptCost is deliberately above the library default; password hashing is the
// one place the auth flow is allowed to be slow.
const bcryptCost = 12

type User struct {
	ID           string    `json:"id,omitempty" gorm:"primaryKey"`     // Unique identifier for the user
	Name         string    `json:"name,omitempty"`                     // Display name
	Email        string    `json:"email,omitempty" gorm:"uniqueIndex"` // User's email address, unique
	PasswordHash string    `json:"-"`                                  // Hashed version of the user's password - never serialize
	Role         RoleType  `json:"role,omitempty"`                     // ADMIN or CUSTOMER
	CreatedAt    time.Time `json:"created_at,omitempty"`               // When the user registered
}

// IsAdmin returns true if the user has administrator privileges
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 6 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
