package services

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

// signingSalt for PBKDF2; changing it invalidates every issued token
var signingSalt = []byte("shopvoice-session-tokens-v1")

// DeriveSigningKey derives the 32-byte HMAC key for session tokens from the configured secret
func DeriveSigningKey(secret string) []byte {
	return pbkdf2.Key([]byte(secret), signingSalt, 100000, 32, sha256.New)
}
