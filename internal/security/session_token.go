package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// sessionTokenBytes is the entropy of a session token (256 bits).
const sessionTokenBytes = 32

// NewSessionToken returns a fresh, unguessable session token, hex-encoded for use as a cookie value.
func NewSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashSessionToken returns the SHA-256 hex digest of token. Session rows and cache keys are
// addressed by this digest so a leaked database or cache dump does not yield usable cookies.
func HashSessionToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// SessionTokenMatches reports in constant time whether token hashes to storedHash.
func SessionTokenMatches(token, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashSessionToken(token)), []byte(storedHash)) == 1
}
