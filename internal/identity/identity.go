// internal/identity/identity.go
//
// Player identity.
//   - Player names: any trimmed, non-empty string (used by the room games).
//   - Accounts: optional username/password users with bcrypt hashes.
//   - Tokens: HS256 JWTs carrying the user id and username.

package identity

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNameRequired       = errors.New("name required")
	ErrNameTooLong        = errors.New("name must be at most 32 chars")
	ErrNameInvalid        = errors.New("name must be valid UTF-8")
	ErrUsernameTaken      = errors.New("username taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidSignup      = errors.New("invalid signup")
)

// PlayerName trims name and rejects empty or oversized ones. Length is
// counted in characters.
func PlayerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case !utf8.ValidString(name):
		return "", ErrNameInvalid
	case name == "":
		return "", ErrNameRequired
	case utf8.RuneCountInString(name) > 32:
		return "", ErrNameTooLong
	}
	return name, nil
}

// NormalizeUsername trims whitespace.
func NormalizeUsername(u string) string {
	return strings.TrimSpace(u)
}

// ValidateSignup enforces basic username/password rules.
func ValidateSignup(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return fmt.Errorf("%w: username must be 3-24 chars", ErrInvalidSignup)
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return fmt.Errorf("%w: username may use letters, numbers, underscore only", ErrInvalidSignup)
		}
	}
	if len(p) < 8 || len(p) > 100 {
		return fmt.Errorf("%w: password must be 8-100 chars", ErrInvalidSignup)
	}
	return nil
}

// HashPassword bcrypt-hashes pw at the default cost.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

// CheckPassword verifies pw against a bcrypt hash.
func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
