package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned when a password does not match its digest.
var ErrPasswordMismatch = errors.New("password mismatch")

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its stored digest. Unsalted
// SHA-256 hex digests written by the first release are still accepted.
func ComparePassword(hashed, plain string) error {
	if IsLegacyDigest(hashed) {
		sum := sha256.Sum256([]byte(plain))
		if subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(hashed)) == 1 {
			return nil
		}
		return ErrPasswordMismatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}

// IsLegacyDigest reports whether hashed looks like a SHA-256 hex digest.
func IsLegacyDigest(hashed string) bool {
	if len(hashed) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(hashed)
	return err == nil
}
