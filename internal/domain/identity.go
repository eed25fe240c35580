package domain

import (
	"regexp"
	"strings"
)

// Validation here is deliberately the legacy ruleset the remote automation
// was tested against, not RFC-grade parsing. Loosening or tightening any of
// these patterns changes which values reach the provisioning service.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// MinPhoneLen is the shortest normalized phone number the intake accepts.
const MinPhoneLen = 8

// ValidateName trims s and requires at least two characters.
func ValidateName(s string) (string, error) {
	name := strings.TrimSpace(s)
	if len(name) < 2 {
		return "", ErrInvalidName
	}
	return name, nil
}

// ValidateEmail checks the legacy local@domain.tld pattern. Case is preserved
// in the returned value; uniqueness checks elsewhere compare lowercased.
func ValidateEmail(s string) (string, error) {
	email := strings.TrimSpace(s)
	if !emailPattern.MatchString(email) {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// NormalizePhone strips everything but digits and a leading "+", then applies
// the dialing-prefix rules: "00" becomes "+", a single leading "0" becomes
// defaultCC, and a bare number gets "+" prefixed. Empty input stays empty.
func NormalizePhone(raw, defaultCC string) string {
	var b strings.Builder
	for i, ch := range strings.TrimSpace(raw) {
		if ch >= '0' && ch <= '9' || ch == '+' && i == 0 {
			b.WriteRune(ch)
		}
	}
	s := b.String()
	switch {
	case s == "":
		return ""
	case strings.HasPrefix(s, "+"):
		return s
	case strings.HasPrefix(s, "00"):
		return "+" + s[2:]
	case strings.HasPrefix(s, "0"):
		return defaultCC + s[1:]
	default:
		return "+" + s
	}
}

// DerivePassword builds the account password from the display name.
//
// This is a known-weak deterministic scheme. It is kept byte-for-byte because
// the external provisioning automation types this exact value into the
// signup form; silently strengthening it would break account creation.
func DerivePassword(name string) string {
	return name + "123#"
}
