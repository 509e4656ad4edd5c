// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an account that posts items and votes on others.
type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Username   string         `gorm:"uniqueIndex;not null" json:"username"`
	Name       string         `json:"name"`
	Email      string         `gorm:"uniqueIndex" json:"email,omitempty"`
	ProfilePic string         `json:"profile_pic"`
	IsAdmin    bool           `gorm:"default:false" json:"is_admin"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
