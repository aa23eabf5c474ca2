package domain

import (
	"time"
)

// RefreshToken represents one issued refresh credential. Only the SHA-256
// hash of the opaque token value is stored; the raw value is returned to the
// client once and never persisted. Rows are never deleted: rotation and
// revocation flip the revoked flag so the chain stays auditable.
type RefreshToken struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	TokenHash    string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	Revoked      bool      `json:"revoked"`
	ReplacedByID *int64    `json:"replaced_by_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsValid reports whether the token is usable at the given instant.
func (t *RefreshToken) IsValid(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

// APIKey represents a long-lived programmatic access credential. The raw
// secret is returned exactly once at creation; only its hash and a short
// display prefix survive.
type APIKey struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	Name          string     `json:"name"`
	DisplayPrefix string     `json:"display_prefix"`
	KeyHash       string     `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	LastUsedAt    *time.Time `json:"last_used_at,omitempty"`
}
