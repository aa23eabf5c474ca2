package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

const (
	refreshTokenBytes = 32

	apiKeyPrefix        = "sk_"
	apiKeyBytes         = 32
	apiKeyDisplayChars  = 8
	apiKeyDisplaySuffix = "..."
)

// Hasher bundles the credential hashing primitives: slow adaptive hashing
// for passwords, fast SHA-256 digests for tokens and API keys that only need
// to be locatable by exact-match query (their raw values carry 256 bits of
// entropy, so offline brute force is not a concern).
type Hasher struct {
	cost int
}

// NewHasher creates a hasher with the production bcrypt cost.
func NewHasher() *Hasher {
	return &Hasher{cost: bcryptCost}
}

// NewHasherWithCost creates a hasher with an explicit bcrypt cost. Tests use
// bcrypt.MinCost to keep hashing fast.
func NewHasherWithCost(cost int) *Hasher {
	return &Hasher{cost: cost}
}

// HashPassword returns the bcrypt hash of the plaintext password.
func (h *Hasher) HashPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword reports whether the plaintext matches the stored hash.
func (h *Hasher) VerifyPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// HashLookupSecret returns the SHA-256 hex digest of a raw token or API key.
func HashLookupSecret(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// NewRefreshTokenValue generates a 256-bit URL-safe opaque refresh token.
// It carries no claims; its only meaning is as a lookup key after hashing.
func NewRefreshTokenValue() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// NewAPIKeySecret generates a raw API key secret: "sk_" followed by 32
// random bytes hex-encoded, 67 characters total.
func NewAPIKeySecret() (string, error) {
	buf := make([]byte, apiKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return apiKeyPrefix + hex.EncodeToString(buf), nil
}

// DisplayPrefix derives the non-secret UI identifier for a raw API key:
// its first 8 characters plus an ellipsis marker.
func DisplayPrefix(raw string) string {
	if len(raw) <= apiKeyDisplayChars {
		return raw + apiKeyDisplaySuffix
	}
	return raw[:apiKeyDisplayChars] + apiKeyDisplaySuffix
}
