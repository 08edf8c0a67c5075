package app

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInviteToken(t *testing.T) {
	a, err := newInviteToken()
	require.NoError(t, err)
	b, err := newInviteToken()
	require.NoError(t, err)

	// 16 random bytes, hex encoded
	assert.Len(t, a, 32)
	_, err = hex.DecodeString(a)
	assert.NoError(t, err)

	assert.NotEqual(t, a, b)
}
