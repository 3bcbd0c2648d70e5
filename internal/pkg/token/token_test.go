package token

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionToken_Format(t *testing.T) {
	tok, err := NewSessionToken()
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), tok)
}

func TestNewSessionToken_Distinct(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		tok, err := NewSessionToken()
		require.NoError(t, err)
		_, dup := seen[tok]
		require.False(t, dup, "duplicate token %s", tok)
		seen[tok] = struct{}{}
	}
}

func TestNewNumericCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := NewNumericCode(6)
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^[0-9]{6}$`), code)
	}
}

func TestRandomString(t *testing.T) {
	s, err := RandomString(10)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[a-z0-9]{10}$`), s)
}
