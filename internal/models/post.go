package models

import (
	"time"

	"gorm.io/gorm"
)

// PollOption is one choice in an embedded poll. Votes live in the
// poll_votes table, not here.
type PollOption struct {
	Text string `json:"text"`
}

// Poll is the poll document embedded on a Post as jsonb.
//
// Active is lazily corrected: once EndsAt has passed, the first vote or
// read that notices persists Active=false regardless of the stored value.
type Poll struct {
	Question string       `json:"question"`
	Options  []PollOption `json:"options"`
	EndsAt   time.Time    `json:"ends_at"`
	Active   bool         `json:"active"`
}

// Expired reports whether the poll's end time has passed at now.
func (p *Poll) Expired(now time.Time) bool {
	return !p.EndsAt.IsZero() && now.After(p.EndsAt)
}

// Post represents a feed post, optionally carrying a poll.
type Post struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Content  string `gorm:"type:text" json:"content"`
	MediaURL string `json:"media_url,omitempty"`

	Poll *Poll `gorm:"type:jsonb;serializer:json" json:"poll,omitempty"`

	// Cached engagement counters, maintained with atomic column updates.
	LikeCount    int `gorm:"default:0" json:"like_count"`
	SaveCount    int `gorm:"default:0" json:"save_count"`
	CommentCount int `gorm:"default:0" json:"comment_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	return nil
}

// Comment represents a comment on a Post.
type Comment struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	PostID string `gorm:"not null;index" json:"post_id"`
	Post   Post   `gorm:"foreignKey:PostID" json:"-"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Content string `gorm:"type:text;not null" json:"content"`

	LikeCount int `gorm:"default:0" json:"like_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}

// Story represents a short-lived post that expires 24 hours after creation.
type Story struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	MediaURL string `gorm:"not null" json:"media_url"`
	Caption  string `gorm:"type:text" json:"caption,omitempty"`

	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	ViewCount int       `gorm:"default:0" json:"view_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *Story) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = generateUUID()
	}
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = time.Now().UTC().Add(24 * time.Hour)
	}
	return nil
}
