package utils

import (
	"regexp"
	"strings"
)

// RFC 5321 caps a full address at 320 characters, the local part at 64
// and the domain at 255.
const (
	maxEmailLength  = 320
	maxLocalLength  = 64
	maxDomainLength = 255
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// IsValidEmail reports whether email looks like a deliverable address.
func IsValidEmail(email string) bool {
	if email == "" || len(email) > maxEmailLength {
		return false
	}

	if strings.Count(email, "@") != 1 {
		return false
	}

	parts := strings.SplitN(email, "@", 2)
	if len(parts[0]) > maxLocalLength || len(parts[1]) > maxDomainLength {
		return false
	}

	return emailRegex.MatchString(email)
}
