package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// ==================== CONFIRMATION CODE ====================

const (
	ConfirmationPrefix  = "RES"
	confirmationLength  = 6
	confirmationCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateConfirmationCode returns "RES" followed by 6 random uppercase
// alphanumerics. Uniqueness is the caller's job.
func GenerateConfirmationCode() (string, error) {
	buf := make([]byte, confirmationLength)
	max := big.NewInt(int64(len(confirmationCharset)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		buf[i] = confirmationCharset[n.Int64()]
	}
	return ConfirmationPrefix + string(buf), nil
}
