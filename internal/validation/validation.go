// Package validation holds the form-level field validators shared by the
// handlers. Messages are user-facing and flash-ready.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// IsEmail reports whether the value looks like an email address. The login
// form accepts email-or-username and branches on this.
func IsEmail(value string) bool { return emailRegex.MatchString(value) }

// Violations maps field names to user-facing error messages.
type Violations map[string]string

// Empty reports whether no violations were recorded.
func (v Violations) Empty() bool { return len(v) == 0 }

// First returns one violation message, for flows that flash a single error.
// Fields are checked in the order they were registered.
func (v Violations) First(order ...string) string {
	for _, field := range order {
		if msg, ok := v[field]; ok {
			return msg
		}
	}
	for _, msg := range v {
		return msg
	}
	return ""
}

// Required records a violation when the trimmed value is empty.
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = fmt.Sprintf("%s is required", label(field))
	}
}

// MinLength records a violation when the value is shorter than min runes.
func MinLength(field, value string, min int, v Violations) {
	if len([]rune(value)) < min {
		v[field] = fmt.Sprintf("%s must be at least %d characters long", label(field), min)
	}
}

// ValidEmail records a violation when the value is shorter than min runes.
// The original form treats the email minimum as an address sanity check.
func ValidEmail(field, value string, min int, v Violations) {
	if len([]rune(value)) < min || !IsEmail(value) {
		v[field] = "Please enter a valid email address"
	}
}

// Match records a violation on field when the two values differ.
func Match(field, a, b, message string, v Violations) {
	if a != b {
		v[field] = message
	}
}

func label(field string) string {
	switch field {
	case "name":
		return "Name"
	case "display_name":
		return "Display name"
	case "username":
		return "Username"
	case "password", "password1":
		return "Password"
	case "new_password":
		return "New password"
	case "current_password":
		return "Current password"
	case "email":
		return "Email"
	}
	if field == "" {
		return "Field"
	}
	return strings.ToUpper(field[:1]) + field[1:]
}
