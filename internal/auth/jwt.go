package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer = "social-nexus"

	// Token types. State tokens carry the user identity through provider
	// redirects where no Authorization header is available (the LinkedIn
	// OAuth state parameter); they are never accepted as sessions.
	typeSession = "session"
	typeState   = "state"

	sessionTTL = 24 * time.Hour
	stateTTL   = 10 * time.Minute
)

// Issuer signs and verifies the app's own bearer tokens.
type Issuer struct {
	secret []byte
}

// NewIssuer creates an Issuer with the given HMAC secret.
func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret)}
}

type claims struct {
	jwt.RegisteredClaims
	Type string `json:"typ"`
}

// IssueSession returns a signed session token for the user.
func (i *Issuer) IssueSession(userID string) (string, error) {
	return i.issue(userID, typeSession, sessionTTL)
}

// ParseSession verifies a session token and returns the user ID.
func (i *Issuer) ParseSession(token string) (string, error) {
	return i.parse(token, typeSession)
}

// IssueState returns a short-lived state token for an OAuth redirect.
func (i *Issuer) IssueState(userID string) (string, error) {
	return i.issue(userID, typeState, stateTTL)
}

// ParseState verifies a state token and returns the user ID.
func (i *Issuer) ParseState(token string) (string, error) {
	return i.parse(token, typeState)
}

func (i *Issuer) issue(userID, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Type: typ,
	})
	signed, err := tk.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (i *Issuer) parse(token, wantType string) (string, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return "", err
	}
	if c.Type != wantType {
		return "", fmt.Errorf("token type %q, want %q", c.Type, wantType)
	}
	if c.Subject == "" {
		return "", fmt.Errorf("token missing subject")
	}
	return c.Subject, nil
}
