package localstate

import (
	"crypto/sha1" // #nosec G505 -- digest format expected by deployment services
	"encoding/hex"
	"errors"
	"regexp"
)

// MinPasswordLength is the shortest administrator password accepted.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^.+@(\[?)[a-zA-Z0-9\-.]+\.([a-zA-Z]{2,}|[0-9]{1,3})(\]?)$`)

// ValidateEmail checks that username looks like an e-mail address.
func ValidateEmail(username string) error {
	if !emailPattern.MatchString(username) {
		return errors.New("invalid e-mail address")
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("password must be at least 6 characters long")
	}
	return nil
}

// HashPassword salts password with username and returns the hex SHA-1
// digest deployment services store for user accounts.
func HashPassword(username, password string) string {
	sum := sha1.Sum([]byte(username + password)) // #nosec G401
	return hex.EncodeToString(sum[:])
}
