package models

import (
	"time"

	"gorm.io/gorm"
)

// PostLike is a like edge on a post. The unique index on the pair is what
// makes rapid concurrent toggles by the same user safe.
type PostLike struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;index;uniqueIndex:idx_post_likes_pair" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`
	PostID string `gorm:"not null;index;uniqueIndex:idx_post_likes_pair" json:"post_id"`
	Post   Post   `gorm:"foreignKey:PostID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (l *PostLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = generateUUID()
	}
	return nil
}

// CommentLike is a like edge on a comment.
type CommentLike struct {
	ID        string  `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string  `gorm:"not null;index;uniqueIndex:idx_comment_likes_pair" json:"user_id"`
	User      User    `gorm:"foreignKey:UserID" json:"-"`
	CommentID string  `gorm:"not null;index;uniqueIndex:idx_comment_likes_pair" json:"comment_id"`
	Comment   Comment `gorm:"foreignKey:CommentID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (l *CommentLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = generateUUID()
	}
	return nil
}

// SavedPost is a bookmark edge. Same toggle shape as likes, no
// notification side effect.
type SavedPost struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;index;uniqueIndex:idx_saved_posts_pair" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`
	PostID string `gorm:"not null;index;uniqueIndex:idx_saved_posts_pair" json:"post_id"`
	Post   Post   `gorm:"foreignKey:PostID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (s *SavedPost) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = generateUUID()
	}
	return nil
}

// PollVote records a user's single vote on a post's poll. The unique index
// on (post_id, user_id) enforces vote exclusivity; changing your mind is an
// update of OptionIndex, not a second row.
type PollVote struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	PostID      string `gorm:"not null;index;uniqueIndex:idx_poll_votes_voter" json:"post_id"`
	Post        Post   `gorm:"foreignKey:PostID" json:"-"`
	UserID      string `gorm:"not null;index;uniqueIndex:idx_poll_votes_voter" json:"user_id"`
	User        User   `gorm:"foreignKey:UserID" json:"-"`
	OptionIndex int    `gorm:"not null" json:"option_index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (v *PollVote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = generateUUID()
	}
	return nil
}

// PollOptionResult is the per-option slice of a poll results read.
type PollOptionResult struct {
	Text       string `json:"text"`
	VoteCount  int    `json:"vote_count"`
	Percentage int    `json:"percentage"`
}

// PollResults is the snapshot returned by poll reads and votes.
type PollResults struct {
	PostID     string             `json:"post_id"`
	Question   string             `json:"question"`
	Results    []PollOptionResult `json:"results"`
	TotalVotes int                `json:"total_votes"`
	Active     bool               `json:"active"`
	EndsAt     time.Time          `json:"ends_at"`
	// VotedOption is the calling user's current choice, -1 if none.
	VotedOption int `json:"voted_option"`
}
