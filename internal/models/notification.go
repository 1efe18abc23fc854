package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification is a persisted fan-out record for a relationship or
// engagement event. Write-once except for IsRead. Never created when the
// sender and receiver are the same user.
type Notification struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	SenderID   string `gorm:"not null;index" json:"sender_id"`
	Sender     User   `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	ReceiverID string `gorm:"not null;index" json:"receiver_id"`
	Receiver   User   `gorm:"foreignKey:ReceiverID" json:"-"`

	Message      string `gorm:"type:text;not null" json:"message"`
	NavigateLink string `json:"navigate_link"`
	IsRead       bool   `gorm:"default:false;index" json:"is_read"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = generateUUID()
	}
	return nil
}
