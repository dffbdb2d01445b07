package util

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/borrzu/verify-service/internal/domain/secretkey"
)

// GenerateSecretKey produces a random key value of secretkey.KeyLength
// characters drawn from secretkey.KeyAlphabet.
func GenerateSecretKey() (string, error) {
	return generateRandomString(secretkey.KeyLength, secretkey.KeyAlphabet)
}

func generateRandomString(length int, alphabet string) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}
