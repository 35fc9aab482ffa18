package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hashed, err := h.Hash("secret1")
	require.NoError(t, err)
	require.NoError(t, h.Compare(hashed, "secret1"))
	assert.ErrorIs(t, h.Compare(hashed, "secret2"), ErrPasswordMismatch)
	assert.False(t, h.NeedsRehash(hashed))

	stronger, err := NewBcryptHasher(bcrypt.MinCost + 1)
	require.NoError(t, err)
	assert.True(t, stronger.NeedsRehash(hashed))

	strongHash, err := stronger.Hash("secret1")
	require.NoError(t, err)
	assert.False(t, h.NeedsRehash(strongHash))
}

func TestBcryptHasherCost(t *testing.T) {
	_, err := NewBcryptHasher(bcrypt.MaxCost + 1)
	require.Error(t, err)

	h, err := NewBcryptHasher(0)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}

func TestBcryptHasherLimits(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	_, err = h.Hash(strings.Repeat("x", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	err = h.Compare("not-a-hash", "secret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
	assert.False(t, h.NeedsRehash("not-a-hash"))
}
