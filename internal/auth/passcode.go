package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var dummyPasscodeHash = []byte("$2a$10$CwTycUXWue0Thq9StjUM0uJ8n4VWeNseyX2fA9DE.D7su7J6iYGTC")

// CheckPasscode compares a supplied passcode with the configured one.
// The configured value may be a bcrypt hash; anything else is compared in constant time.
// An unset passcode never matches.
func CheckPasscode(configured, supplied string) bool {
	if configured == "" {
		_ = bcrypt.CompareHashAndPassword(dummyPasscodeHash, []byte(supplied))
		return false
	}
	if strings.HasPrefix(configured, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(supplied)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(supplied)) == 1
}
