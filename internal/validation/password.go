package validation

import (
	"errors"
	"strings"
)

const MinPasswordLength = 6

// ValidatePassword enforces the sign-up form rules: at least 6 characters,
// at most 72 bytes (bcrypt truncates beyond that) and not a well-known password.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("password must be at least 6 characters")
	}

	if len(password) > 72 {
		return errors.New("password must not exceed 72 characters")
	}

	lower := strings.ToLower(password)
	commonPasswords := []string{
		"password", "123456", "1234567", "12345678", "qwerty", "letmein",
		"welcome", "monkey", "dragon", "abc123", "111111",
	}

	for _, common := range commonPasswords {
		if lower == common {
			return errors.New("password is too common, please choose a stronger one")
		}
	}

	return nil
}
