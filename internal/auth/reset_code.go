package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"time"

	"github.com/cinevault/cinevault-api/internal/constants"
)

// GenerateResetCode returns a uniformly random six digit code.
func GenerateResetCode() (string, error) {
	return generateResetCode(rand.Reader)
}

func generateResetCode(source io.Reader) (string, error) {
	span := big.NewInt(constants.ResetCodeMax - constants.ResetCodeMin + 1)
	n, err := rand.Int(source, span)
	if err != nil {
		return "", fmt.Errorf("failed to generate reset code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+constants.ResetCodeMin, 10), nil
}

// HashResetCode returns the hex SHA-256 digest stored in place of the code.
func HashResetCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// VerifyResetCode checks a submitted code against the stored digest and expiry.
// A code is still valid at exactly its expiry instant.
func VerifyResetCode(code, storedHash string, expiry *time.Time, now time.Time) bool {
	if storedHash == "" || expiry == nil {
		return false
	}
	if now.After(*expiry) {
		return false
	}
	submitted := HashResetCode(code)
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(storedHash)) == 1
}
