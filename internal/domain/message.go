package domain

import (
	"time"
)

// DirectMessage is a message between the coach and one client.
// Read only ever moves from false to true.
type DirectMessage struct {
	ID         string    `json:"id" gorm:"primaryKey;size:64" bson:"id"`
	Seq        int64     `json:"-" gorm:"autoIncrement;not null" bson:"-"`
	SenderID   string    `json:"sender_id" gorm:"not null;size:64;index:idx_dm_sender_created,priority:1" bson:"sender_id"`
	ReceiverID string    `json:"receiver_id" gorm:"not null;size:64;index:idx_dm_receiver_read,priority:1;index:idx_dm_receiver_created,priority:1" bson:"receiver_id"`
	Content    string    `json:"content" gorm:"type:text;not null" bson:"content"`
	Read       bool      `json:"read" gorm:"not null;default:false;index:idx_dm_receiver_read,priority:2" bson:"read"`
	CreatedAt  time.Time `json:"created_at" gorm:"index:idx_dm_sender_created,priority:2;index:idx_dm_receiver_created,priority:2" bson:"created_at"`
}

func (DirectMessage) TableName() string {
	return "direct_messages"
}

// Conversation is the coach-facing summary of one client thread. It is
// computed on read and never stored.
type Conversation struct {
	UserID        string     `json:"user_id"`
	UserName      string     `json:"user_name"`
	UserEmail     string     `json:"user_email"`
	UserPicture   *string    `json:"user_picture,omitempty"`
	UserRole      Role       `json:"user_role"`
	LastMessage   *string    `json:"last_message"`
	LastMessageAt *time.Time `json:"last_message_at"`
	UnreadCount   int64      `json:"unread_count"`
}
