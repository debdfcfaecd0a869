package token

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// ExpiryFromJWT extracts the exp claim from a raw JWT without verifying the
// signature. Directly injected access tokens arrive without lifetime
// metadata; when they are JWTs the expiry can be recovered from the claims.
// The signature is the provider's concern, only the deadline matters here.
func ExpiryFromJWT(rawToken string) (time.Time, error) {
	unverifiedToken, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, errors.Wrap(err, "[ExpiryFromJWT] parsing token")
	}

	expiresAt, err := unverifiedToken.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, errors.Wrap(err, "[ExpiryFromJWT] reading exp claim")
	}
	if expiresAt == nil {
		return time.Time{}, errors.New("[ExpiryFromJWT] token has no exp claim")
	}
	return expiresAt.Time, nil
}
