package oauth2

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"

	"github.com/pkg/errors"
)

const randomValueLength = 32

// GenerateState returns a cryptographically random value for the CSRF state
// parameter, unique per outstanding authorize-URL issuance.
func GenerateState() (string, error) {
	return randomURLSafeString(randomValueLength)
}

// GenerateCodeVerifier returns a random PKCE code verifier.
func GenerateCodeVerifier() (string, error) {
	return randomURLSafeString(randomValueLength)
}

// ChallengeS256 derives the S256 code challenge for a verifier per RFC 7636.
func ChallengeS256(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

func randomURLSafeString(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", errors.Wrap(err, "[randomURLSafeString] rand.Read")
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
