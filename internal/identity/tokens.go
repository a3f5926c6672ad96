// internal/identity/tokens.go
//
// HS256 session tokens.

package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

// Claims identify a signed-in user.
type Claims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Tokens signs and verifies session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

func NewTokens(secret string, ttl time.Duration, clock clockwork.Clock) *Tokens {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, clock: clock}
}

// Sign returns a token for the user and its expiry.
func (t *Tokens) Sign(id, username string) (string, time.Time, error) {
	now := t.clock.Now()
	exp := now.Add(t.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	})
	ss, err := tok.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return ss, exp, nil
}

// Parse verifies a token and returns its claims.
func (t *Tokens) Parse(raw string) (Claims, error) {
	mc := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(raw, mc, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.clock.Now),
	)
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	id, _ := mc["id"].(string)
	username, _ := mc["username"].(string)
	if id == "" || username == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{ID: id, Username: username}, nil
}
