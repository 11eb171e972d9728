package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is deliberately slow (adaptive work factor) so brute-force
// guessing stays expensive.
const bcryptCost = 10

// HashPassword derives a salted bcrypt hash from the plaintext password.
// It is the only way a password ever reaches storage: user creation and
// reset completion both go through it, so no code path can persist
// plaintext. A hashing failure is an internal error, not part of the
// user-facing taxonomy.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("password hash error: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// It returns false on any mismatch or malformed hash and never errors.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
