package models

import (
	"time"

	"gorm.io/gorm"
)

// FriendRequest is a pending edge from sender to receiver.
//
// There is no status column: a row means "pending", and accept/reject/cancel
// all end by deleting the row. History of resolved requests is deliberately
// not retained.
type FriendRequest struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	SenderID   string `gorm:"not null;index;uniqueIndex:idx_friend_requests_pair" json:"sender_id"`
	Sender     User   `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	ReceiverID string `gorm:"not null;index;uniqueIndex:idx_friend_requests_pair" json:"receiver_id"`
	Receiver   User   `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (r *FriendRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = generateUUID()
	}
	return nil
}

// Friendship is one direction of a symmetric friend edge. Accepting a
// request creates the (a,b) and (b,a) rows in one transaction; unfriending
// removes both in one transaction. A lone directed row is a bug.
type Friendship struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID   string `gorm:"not null;index;uniqueIndex:idx_friendships_pair" json:"user_id"`
	User     User   `gorm:"foreignKey:UserID" json:"-"`
	FriendID string `gorm:"not null;index;uniqueIndex:idx_friendships_pair" json:"friend_id"`
	Friend   User   `gorm:"foreignKey:FriendID" json:"friend,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (f *Friendship) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = generateUUID()
	}
	return nil
}

// Follow is a directed edge, independent of friendship.
type Follow struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	FollowerID  string `gorm:"not null;index;uniqueIndex:idx_follows_pair" json:"follower_id"`
	Follower    User   `gorm:"foreignKey:FollowerID" json:"-"`
	FollowingID string `gorm:"not null;index;uniqueIndex:idx_follows_pair" json:"following_id"`
	Following   User   `gorm:"foreignKey:FollowingID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = generateUUID()
	}
	return nil
}

// FollowStatus is the result of a two-way existence check between users.
type FollowStatus struct {
	IsFollowing  bool `json:"is_following"`
	IsFollowedBy bool `json:"is_followed_by"`
}
