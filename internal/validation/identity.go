package validation

import (
	"errors"
	"net/mail"
	"strings"
	"unicode"
)

const (
	maxEmailLength = 254
	maxNameLength  = 100
)

// NormalizeEmail trims and lower-cases an address. Emails are unique on
// their normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail accepts a bare RFC 5322 address. Display-name forms such as
// "Ada <ada@example.com>" are rejected.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email address is required")
	}
	if len(email) > maxEmailLength {
		return errors.New("email address is too long (max 254 characters)")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("invalid email address format")
	}
	return nil
}

// ValidateName checks a display name shown to a partner.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return errors.New("name is required")
	}
	if len([]rune(trimmed)) > maxNameLength {
		return errors.New("name is too long (max 100 characters)")
	}
	if strings.ContainsFunc(trimmed, unicode.IsControl) {
		return errors.New("name contains invalid characters")
	}
	return nil
}
