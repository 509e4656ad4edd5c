package models

import "time"

// Relationship is a directed following edge. UserID follows FriendID, and
// CloseFriend means UserID put FriendID on their close-friends list.
type Relationship struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_relationship_users" json:"user_id"`
	FriendID    uint      `gorm:"not null;uniqueIndex:idx_relationship_users;index" json:"friend_id"`
	CloseFriend bool      `gorm:"not null;default:false" json:"close_friend"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Friend User `gorm:"foreignKey:FriendID" json:"friend,omitempty"`
}

// TableName specifies the table name for GORM
func (Relationship) TableName() string {
	return "relationships"
}
