package domain

import (
	"time"
)

// Release types.
const (
	ReleaseMajor  = "MAJOR"
	ReleaseMinor  = "MINOR"
	ReleasePatch  = "PATCH"
	ReleaseHotfix = "HOTFIX"
)

// IsValidReleaseType checks the release type against the known set.
func IsValidReleaseType(t string) bool {
	switch t {
	case ReleaseMajor, ReleaseMinor, ReleasePatch, ReleaseHotfix:
		return true
	}
	return false
}

// Release is a published product release note.
type Release struct {
	ID         int64     `json:"id"`
	Version    string    `json:"version"`
	Title      string    `json:"title"`
	Notes      string    `json:"notes"`
	Type       string    `json:"type"`
	ReleasedAt time.Time `json:"released_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewRelease builds a release record. A zero releasedAt defaults to now.
func NewRelease(version, title, notes, typ string, releasedAt, now time.Time) *Release {
	if releasedAt.IsZero() {
		releasedAt = now
	}
	return &Release{
		Version:    version,
		Title:      title,
		Notes:      notes,
		Type:       typ,
		ReleasedAt: releasedAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
