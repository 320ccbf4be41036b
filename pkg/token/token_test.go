package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mughalk/csc301-a2/pkg/token"
)

func TestMintAndVerify(t *testing.T) {
	signed, err := token.Mint("20260830-120000", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := token.Verify(signed, "secret")
	require.NoError(t, err)
	assert.Equal(t, "20260830-120000", claims.Run)
	assert.Equal(t, "conform-harness", claims.Subject)
}

func TestVerify_WrongSecret(t *testing.T) {
	signed, err := token.Mint("run", "secret")
	require.NoError(t, err)

	_, err = token.Verify(signed, "other-secret")
	assert.Error(t, err)
}

func TestVerify_Garbage(t *testing.T) {
	_, err := token.Verify("not.a.token", "secret")
	assert.Error(t, err)
}
