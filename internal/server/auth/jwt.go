// Package auth implements the credential and session primitives: bcrypt
// password hashing/verification and signed session tokens.
package auth

import (
	"time"

	"github.com/dmitrijs2005/bienesraices/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the authenticated identity inside a session token:
// the standard registered claims plus the user id and display name.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
	Name   string
}

// GenerateSessionToken mints an HS256-signed session token embedding the
// user id and name. The token is handed to the client as an HTTP-only
// cookie; the server keeps no session table, validity is determined purely
// by signature and expiry at verification time.
func GenerateSessionToken(userID, name string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
		Name:   name,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseSessionToken verifies signature and expiry and returns the embedded
// claims. Any malformed, tampered or expired token yields ErrInvalidToken.
func ParseSessionToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
