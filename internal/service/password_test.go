package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordSaltsEachCall(t *testing.T) {
	first, err := HashPassword("hunter22")
	require.NoError(t, err)
	second, err := HashPassword("hunter22")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, VerifyPassword("hunter22", first))
	assert.True(t, VerifyPassword("hunter22", second))
}

func TestVerifyPasswordRejectsWrongPlaintext(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)

	assert.False(t, VerifyPassword("hunter23", hash))
	assert.False(t, VerifyPassword("", hash))
}
