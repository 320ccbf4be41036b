// Package token mints the optional bearer token the harness attaches to
// every request when the deployment under test sits behind HS256 auth.
//
// One token is generated per run and shared by all cases, so authenticated
// and unauthenticated targets go through the exact same engine path.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the typed payload carried by a harness token.
type Claims struct {
	Run string `json:"run"`
	jwt.RegisteredClaims
}

// Mint signs an HS256 token identifying this harness run. The token is valid
// long enough to cover any realistic paced run.
func Mint(runID, secret string) (string, error) {
	claims := Claims{
		Run: runID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "conform-harness",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(12 * time.Hour)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a harness token. Used by the stub gateway when
// started with an auth secret, so authenticated runs can be rehearsed
// end-to-end without a real deployment.
func Verify(signed, secret string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(signed, &Claims{}, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("token: parse: %w", err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
