package usecase

import (
	"regexp"
	"strings"
)

var (
	phoneRe = regexp.MustCompile(`^09\d{9}$`)
	emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@gmail\.com$`)
)

// ValidPhone accepts 11-digit local mobile numbers: 09 followed by 9 digits.
func ValidPhone(s string) bool {
	return phoneRe.MatchString(s)
}

// ValidEmail accepts gmail.com addresses only.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// ValidFullName requires at least a given and a family name.
func ValidFullName(s string) bool {
	return strings.Contains(strings.TrimSpace(s), " ")
}
