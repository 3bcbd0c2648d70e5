package token

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const nicknameAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewSessionToken returns an opaque login token: a random (v4) UUID with
// the dashes removed, 32 hex characters.
func NewSessionToken() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return strings.ReplaceAll(u.String(), "-", ""), nil
}

// NewNumericCode returns n uniformly random decimal digits. Leading zeros are kept.
func NewNumericCode(n int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", n, v.Int64()), nil
}

// RandomString returns n characters drawn from [a-z0-9].
func RandomString(n int) (string, error) {
	b := make([]byte, n)
	limit := big.NewInt(int64(len(nicknameAlphabet)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate random string: %w", err)
		}
		b[i] = nicknameAlphabet[idx.Int64()]
	}
	return string(b), nil
}
