package models

import (
	"time"

	"hotorflop/internal/audience"
	"hotorflop/internal/tally"

	"gorm.io/gorm"
)

// Post is an item shared for a hot-or-flop vote.
type Post struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Title       string            `gorm:"not null" json:"title"`
	Description string            `gorm:"type:text" json:"description"`
	ImageURL    string            `json:"image_url"`
	URL         string            `json:"url"`
	Category    string            `gorm:"index" json:"category,omitempty"`
	Price       *float64          `json:"price,omitempty"`
	AuthorID    uint              `gorm:"not null;index" json:"author_id"`
	Author      User              `gorm:"foreignKey:AuthorID" json:"author"`
	Audience    audience.Audience `gorm:"type:varchar(32);not null;default:'followers'" json:"audience"`
	YesCount    int64             `gorm:"not null;default:0" json:"yes_count"`
	NoCount     int64             `gorm:"not null;default:0" json:"no_count"`
	TotalCount  int64             `gorm:"not null;default:0" json:"total_count"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	DeletedAt   gorm.DeletedAt    `gorm:"index" json:"-"`
}

// Counts returns the stored tally.
func (p *Post) Counts() tally.Counts {
	return tally.Counts{Yes: p.YesCount, No: p.NoCount, Total: p.TotalCount}
}

// SetCounts stores c, keeping TotalCount consistent.
func (p *Post) SetCounts(c tally.Counts) {
	c = c.Sanitize()
	p.YesCount, p.NoCount, p.TotalCount = c.Yes, c.No, c.Total
}

// Subject is the part of the post visibility rules look at.
func (p *Post) Subject() audience.Subject {
	return audience.Subject{AuthorID: p.AuthorID, Audience: p.Audience}
}
