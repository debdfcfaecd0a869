package oauth2_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sellerlegend/go-sellerlegend/oauth2"
)

func TestGenerateState(t *testing.T) {
	first, err := oauth2.GenerateState()
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := oauth2.GenerateState()
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestChallengeS256(t *testing.T) {
	// Test vector from RFC 7636 appendix B.
	challenge := oauth2.ChallengeS256("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk")
	require.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", challenge)
}

func TestGenerateCodeVerifier(t *testing.T) {
	verifier, err := oauth2.GenerateCodeVerifier()
	require.NoError(t, err)
	require.NotEmpty(t, verifier)
	require.NotEqual(t, verifier, oauth2.ChallengeS256(verifier))
}
