package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/cinevault/cinevault-api/internal/config"
	"github.com/cinevault/cinevault-api/internal/constants"
)

// PasswordConfig holds the parameters for the Argon2id password hashing algorithm
type PasswordConfig struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultPasswordConfig returns the default configuration for password hashing
func DefaultPasswordConfig() *PasswordConfig {
	return &PasswordConfig{
		Memory:      constants.DefaultPasswordHashMemory,
		Iterations:  constants.DefaultPasswordHashIterations,
		Parallelism: constants.DefaultPasswordHashParallelism,
		SaltLength:  constants.DefaultPasswordHashSaltLength,
		KeyLength:   constants.DefaultPasswordHashKeyLength,
	}
}

// ConfigFromAppConfig creates a password config from the application config.
// Zero values fall back to the defaults.
func ConfigFromAppConfig(cfg *config.AppConfig) *PasswordConfig {
	pc := DefaultPasswordConfig()
	if cfg == nil {
		return pc
	}

	h := cfg.PasswordHash
	if h.Memory > 0 {
		pc.Memory = h.Memory
	}
	if h.Iterations > 0 {
		pc.Iterations = h.Iterations
	}
	if h.Parallelism > 0 {
		pc.Parallelism = h.Parallelism
	}
	if h.SaltLength > 0 {
		pc.SaltLength = h.SaltLength
	}
	if h.KeyLength > 0 {
		pc.KeyLength = h.KeyLength
	}
	return pc
}

// PasswordHasher hashes and verifies passwords with a fixed configuration.
type PasswordHasher struct {
	cfg *PasswordConfig
}

// NewPasswordHasher creates a hasher. A nil config uses the defaults.
func NewPasswordHasher(cfg *PasswordConfig) *PasswordHasher {
	if cfg == nil {
		cfg = DefaultPasswordConfig()
	}
	return &PasswordHasher{cfg: cfg}
}

// Hash returns the encoded hash and salt for password.
func (h *PasswordHasher) Hash(password string) (string, string, error) {
	return HashPassword(password, h.cfg)
}

// Verify reports whether password matches the stored hash and salt.
func (h *PasswordHasher) Verify(password, encodedHash, encodedSalt string) (bool, error) {
	return VerifyPassword(password, encodedHash, encodedSalt, h.cfg)
}

// HashPassword generates a hash of the provided password using Argon2id
// Returns the encoded hash and the salt used for hashing
func HashPassword(password string, cfg *PasswordConfig) (string, string, error) {
	salt, err := GenerateRandomBytes(cfg.SaltLength)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey(
		[]byte(password),
		salt,
		cfg.Iterations,
		cfg.Memory,
		cfg.Parallelism,
		cfg.KeyLength,
	)

	encodedHash := base64.StdEncoding.EncodeToString(hash)
	encodedSalt := base64.StdEncoding.EncodeToString(salt)

	return encodedHash, encodedSalt, nil
}

// VerifyPassword compares a password with a hash and salt using Argon2id
func VerifyPassword(password, encodedHash, encodedSalt string, cfg *PasswordConfig) (bool, error) {
	hash, err := base64.StdEncoding.DecodeString(encodedHash)
	if err != nil {
		return false, fmt.Errorf("failed to decode hash: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(encodedSalt)
	if err != nil {
		return false, fmt.Errorf("failed to decode salt: %w", err)
	}

	// The stored hash length decides the key length so a config change
	// does not lock out existing accounts.
	comparisonHash := argon2.IDKey(
		[]byte(password),
		salt,
		cfg.Iterations,
		cfg.Memory,
		cfg.Parallelism,
		uint32(len(hash)),
	)

	return subtle.ConstantTimeCompare(hash, comparisonHash) == 1, nil
}

// GenerateRandomBytes generates cryptographically secure random bytes
func GenerateRandomBytes(length uint32) ([]byte, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
