package models

import (
	"time"

	"gorm.io/gorm"
)

// Message is a direct message between two users.
type Message struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	SenderID   uint           `gorm:"not null;index:idx_messages_pair,priority:1" json:"sender_id"`
	ReceiverID uint           `gorm:"not null;index:idx_messages_pair,priority:2;index:idx_messages_unread,priority:1" json:"receiver_id"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	Read       bool           `gorm:"not null;default:false;index:idx_messages_unread,priority:2" json:"read"`
	ReplyToID  *uint          `json:"reply_to_id,omitempty"`
	EditedAt   *time.Time     `json:"edited_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// Partner is the other participant of the conversation, as seen by userID.
func (m *Message) Partner(userID uint) uint {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// Involves reports whether userID sent or received the message.
func (m *Message) Involves(userID uint) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

// Conversation summarizes one direct-message thread for a user.
type Conversation struct {
	User          User      `json:"user"`
	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
	LastSenderID  uint      `json:"last_sender_id"`
	UnreadCount   int64     `json:"unread_count"`
}
