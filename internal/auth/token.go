package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "nouscopy"

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// issueToken signs an HS256 access token whose subject is the user ID and
// whose token ID is the session ID.
func issueToken(secret []byte, userID, email, sessionID string, issuedAt, expiresAt time.Time) (string, error) {
	claims := tokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// parseToken validates the signature, issuer and expiry of an access token
// and returns its claims.
func parseToken(secret []byte, tokenStr string, now time.Time) (*tokenClaims, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret is empty")
	}

	tok, err := jwt.ParseWithClaims(tokenStr, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, err
	}
	c, ok := tok.Claims.(*tokenClaims)
	if !ok || !tok.Valid || c.Subject == "" || c.ID == "" {
		return nil, errors.New("invalid claims")
	}
	return c, nil
}
