package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	assert.True(t, ValidateUsername("test_435"))
	assert.True(t, ValidateUsername("abc"))
	assert.True(t, ValidateUsername("User_Name_20_chars__"))

	assert.False(t, ValidateUsername("ab"))                    // too short
	assert.False(t, ValidateUsername("this_username_is_far_too_long"))
	assert.False(t, ValidateUsername("has space"))
	assert.False(t, ValidateUsername("dash-ed"))
	assert.False(t, ValidateUsername(""))
}

func TestValidatePassword(t *testing.T) {
	assert.True(t, ValidatePassword("abcd1234"))
	assert.True(t, ValidatePassword("Password1"))

	assert.False(t, ValidatePassword("short1"))   // under 8 chars
	assert.False(t, ValidatePassword("onlyletters")) // no digit
	assert.False(t, ValidatePassword("12345678"))    // no letter
}

func TestHashVerifyRoundTrip(t *testing.T) {
	hash, salt, err := HashPassword("abcd1234")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEmpty(t, salt)

	assert.True(t, VerifyPassword("abcd1234", hash, salt))
	assert.False(t, VerifyPassword("abcd1235", hash, salt))
	assert.False(t, VerifyPassword("", hash, salt))
}

func TestHashUsesFreshSalt(t *testing.T) {
	h1, s1, err := HashPassword("abcd1234")
	require.NoError(t, err)
	h2, s2, err := HashPassword("abcd1234")
	require.NoError(t, err)

	assert.NotEqual(t, s1, s2)
	assert.NotEqual(t, h1, h2)
}

func TestSignTokenDeterministic(t *testing.T) {
	token, err := NewSessionToken()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(token), 43) // 32 bytes base64url

	assert.Equal(t, SignToken(token, "secret"), SignToken(token, "secret"))
	assert.NotEqual(t, SignToken(token, "secret"), SignToken(token, "other"))

	other, err := NewSessionToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
