package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	tokens := NewTokenService("test-secret")

	token, err := tokens.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, uint64(42), userID)
}

func TestTokenService_RejectsGarbage(t *testing.T) {
	tokens := NewTokenService("test-secret")

	_, err := tokens.Verify("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsForeignSecret(t *testing.T) {
	issuer := NewTokenService("secret-a")
	verifier := NewTokenService("secret-b")

	token, err := issuer.Issue(42)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
