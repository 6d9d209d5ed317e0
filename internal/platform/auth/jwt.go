// Package auth issues and verifies the bearer tokens that carry actor role claims.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
)

var (
	ErrMissingSecret = errors.New("jwt secret is empty")
	ErrInvalidToken  = errors.New("invalid bearer token")
	ErrMissingRoles  = errors.New("token carries no recognised role claim")
)

// Claims is the token payload. Subject holds the actor id.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 tokens with a shared secret.
type Tokens struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokens(secret, issuer string) (*Tokens, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	return &Tokens{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// Sign issues a token for the actor valid for ttl. A non-positive ttl means no expiry.
func (t *Tokens) Sign(actor domain.Actor, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		Roles: actor.Roles.Strings(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  actor.ID,
			Issuer:   t.issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses the token and returns the actor it names.
func (t *Tokens) Verify(token string) (domain.Actor, error) {
	var claims Claims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return domain.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	roles := domain.ParseRoles(claims.Roles)
	if len(roles) == 0 {
		return domain.Actor{}, ErrMissingRoles
	}
	return domain.Actor{ID: claims.Subject, Roles: roles}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
