package identity

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost bounds brute force work. bcrypt salts internally; the
// per-user salt below is defense in depth against a compromised scheme.
const bcryptCost = 12

// saltLength is the number of random bytes in a per-user salt.
const saltLength = 32

// GenerateSalt returns a fresh per-user salt: 32 cryptographically random
// bytes, base64 encoded for storage alongside the hash.
func GenerateSalt() (string, error) {
	buf := make([]byte, saltLength)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate salt")
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// HashPassword will generate a password hash over password followed by the
// stored salt. The boundary validator caps passwords at 16 characters, so
// the combined input always fits bcrypt's 72 byte limit.
func HashPassword(password, salt string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password+salt), passwordHashCost())
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	return string(h), nil
}

// VerifyPassword will validate the given cleartext password and salt against
// the stored hash. Any failure, including a malformed stored hash, yields
// false; verification never surfaces an error to the caller.
func VerifyPassword(password, salt, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password+salt)) == nil
}

// NewPasswordHash generates a salt and hashes the password against it.
func NewPasswordHash(password string) (hash, salt string, err error) {
	if salt, err = GenerateSalt(); err != nil {
		return "", "", err
	}

	if hash, err = HashPassword(password, salt); err != nil {
		return "", "", err
	}

	return hash, salt, nil
}
