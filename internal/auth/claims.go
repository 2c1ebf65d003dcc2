package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer is the iss claim on every token this package signs.
const Issuer = "tickbridge"

// defaultTTLMinutes applies when a non-positive TTL is requested.
const defaultTTLMinutes = 60

var (
	// ErrTokenInvalid is returned for any token that fails verification.
	ErrTokenInvalid = errors.New("auth: invalid token")

	// ErrSecretRequired is returned when signing or parsing without a secret.
	ErrSecretRequired = errors.New("auth: signing secret is required")

	// ErrSubjectRequired is returned when generating a token without a subject.
	ErrSubjectRequired = errors.New("auth: subject is required")
)

// Claims are the registered JWT claims Tickbridge uses.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken creates a signed access token for subject.
func GenerateToken(subject, secret string, ttlMinutes int) (string, error) {
	if secret == "" {
		return "", ErrSecretRequired
	}
	if subject == "" {
		return "", ErrSubjectRequired
	}
	if ttlMinutes <= 0 {
		ttlMinutes = defaultTTLMinutes
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ttlMinutes) * time.Minute)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a token's signature, expiry and issuer and returns
// its claims.
func ParseToken(tokenString, secret string) (*Claims, error) {
	if secret == "" {
		return nil, ErrSecretRequired
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	return claims, nil
}
