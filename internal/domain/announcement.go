package domain

import (
	"time"
)

// Announcement categories.
const (
	AnnouncementGeneral     = "GENERAL"
	AnnouncementMaintenance = "MAINTENANCE"
	AnnouncementRelease     = "RELEASE"
	AnnouncementEvent       = "EVENT"
)

// IsValidAnnouncementCategory checks the category against the known set.
func IsValidAnnouncementCategory(c string) bool {
	switch c {
	case AnnouncementGeneral, AnnouncementMaintenance, AnnouncementRelease, AnnouncementEvent:
		return true
	}
	return false
}

// Announcement is a site-wide notice. Unpublished announcements are visible
// only through the admin endpoints.
type Announcement struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Category    string     `json:"category"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewAnnouncement builds an unpublished announcement.
func NewAnnouncement(title, content, category string, now time.Time) *Announcement {
	return &Announcement{
		Title:     title,
		Content:   content,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Publish marks the announcement published, keeping the original publish
// time when it is re-published.
func (a *Announcement) Publish(now time.Time) {
	a.Published = true
	if a.PublishedAt == nil {
		a.PublishedAt = &now
	}
	a.UpdatedAt = now
}

// Unpublish hides the announcement from the public listing.
func (a *Announcement) Unpublish(now time.Time) {
	a.Published = false
	a.UpdatedAt = now
}
