package library

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	isbnPattern  = regexp.MustCompile(`^\d{13}$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// validateNotBlank rejects empty or whitespace-only values. The core
// re-checks every field itself rather than trusting the calling layer.
func validateNotBlank(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s must not be blank", ErrInvalidArgument, field)
	}
	return nil
}

// validateISBN requires a 13-digit numeric string.
func validateISBN(isbn string) error {
	if !isbnPattern.MatchString(isbn) {
		return fmt.Errorf("%w: ISBN %q must be a 13-digit numeric string", ErrInvalidArgument, isbn)
	}
	return nil
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: %q is not a valid e-mail address", ErrInvalidArgument, email)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidArgument)
	}
	return nil
}

// normalizeEmail lower-cases an e-mail before it is used as a key.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
