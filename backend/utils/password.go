package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"regexp"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes   = 16
	pbkdf2Iters = 100_000
	keyBytes    = 32
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateUsername checks the username format: 3-20 chars, alphanumeric and
// underscore only.
func ValidateUsername(username string) bool {
	if len(username) < 3 || len(username) > 20 {
		return false
	}
	return usernamePattern.MatchString(username)
}

// ValidatePassword checks password strength: min 8 chars, at least one
// letter and one digit.
func ValidatePassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter := false
	hasDigit := false
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

// HashPassword derives a PBKDF2-SHA256 key from the password with a fresh
// random salt. Returns hex-encoded hash and salt.
func HashPassword(password string) (hash, salt string, err error) {
	rawSalt := make([]byte, saltBytes)
	if _, err := rand.Read(rawSalt); err != nil {
		return "", "", err
	}
	key := pbkdf2.Key([]byte(password), rawSalt, pbkdf2Iters, keyBytes, sha256.New)
	return hex.EncodeToString(key), hex.EncodeToString(rawSalt), nil
}

// VerifyPassword re-derives the key from the candidate password and compares
// it in constant time.
func VerifyPassword(password, storedHash, storedSalt string) bool {
	rawSalt, err := hex.DecodeString(storedSalt)
	if err != nil {
		return false
	}
	rawHash, err := hex.DecodeString(storedHash)
	if err != nil {
		return false
	}
	key := pbkdf2.Key([]byte(password), rawSalt, pbkdf2Iters, keyBytes, sha256.New)
	return subtle.ConstantTimeCompare(key, rawHash) == 1
}
