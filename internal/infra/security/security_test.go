package security

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hash)

	require.NoError(t, h.Compare(hash, "correct horse battery staple"))
	require.Error(t, h.Compare(hash, "wrong password"))
}

func TestRandomTokenGenerator(t *testing.T) {
	g := RandomTokenGenerator{}

	a, err := g.Generate()
	require.NoError(t, err)
	b, err := g.Generate()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	// 32 bytes of entropy encode to 43 url-safe characters.
	require.Len(t, a, 43)
}
