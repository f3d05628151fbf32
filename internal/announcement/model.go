package announcement

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("announcement not found")
	ErrForbidden       = errors.New("announcement belongs to another provider")
	ErrTitleRequired   = errors.New("title must be at least 3 characters")
	ErrContentRequired = errors.New("content must be at least 10 characters")
	ErrInvalidCategory = errors.New("invalid announcement category")
	ErrInvalidStatus   = errors.New("invalid announcement status")
)

// Status is the lifecycle state of an announcement.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Statuses lists every valid status.
var Statuses = []Status{StatusDraft, StatusPublished, StatusArchived}

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Category groups announcements for citizens.
type Category string

const (
	CategoryGeneral   Category = "general"
	CategoryHealth    Category = "health"
	CategoryEducation Category = "education"
	CategoryTransport Category = "transport"
	CategorySafety    Category = "safety"
	CategoryEvents    Category = "events"
	CategoryUtilities Category = "utilities"
)

// Categories lists every valid category.
var Categories = []Category{
	CategoryGeneral, CategoryHealth, CategoryEducation, CategoryTransport,
	CategorySafety, CategoryEvents, CategoryUtilities,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Announcement is a public notice owned by the provider that created it.
type Announcement struct {
	ID          string
	Title       string
	Content     string
	Category    Category
	ProviderID  string
	AuthorName  string
	PublishedAt time.Time
	ExpiresAt   *time.Time
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsPublic reports whether the announcement is visible to citizens at now:
// published and not yet expired. Expiry is evaluated lazily by readers.
func (a *Announcement) IsPublic(now time.Time) bool {
	if a.Status != StatusPublished {
		return false
	}
	return a.ExpiresAt == nil || a.ExpiresAt.After(now)
}

// NewID returns a time-ordered (version 7) uuid, so ids sort in creation order.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Before reports whether a sorts ahead of b in storage order: newest
// CreatedAt first, ties broken by the greater ID.
func Before(a, b *Announcement) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// InsertOrdered returns a copy of list, which is in storage order, with a
// inserted at its storage position.
func InsertOrdered(list []*Announcement, a *Announcement) []*Announcement {
	i := 0
	for i < len(list) && Before(list[i], a) {
		i++
	}
	out := make([]*Announcement, 0, len(list)+1)
	out = append(out, list[:i]...)
	out = append(out, a)
	return append(out, list[i:]...)
}

func (a *Announcement) clone() *Announcement {
	c := *a
	if a.ExpiresAt != nil {
		t := *a.ExpiresAt
		c.ExpiresAt = &t
	}
	return &c
}

// Filter defines parameters for listing announcements.
type Filter struct {
	Keyword  string
	Category Category
	Status   Status // provider listings only
	Page     int
	PageSize int
}
