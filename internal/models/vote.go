package models

import (
	"time"

	"hotorflop/internal/tally"
)

// Vote is one voter's yes/no on one post. The unique index makes the vote
// table the append-only log tallies are rebuilt from.
type Vote struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	VoterID   uint         `gorm:"not null;uniqueIndex:idx_votes_voter_post" json:"voter_id"`
	PostID    uint         `gorm:"not null;uniqueIndex:idx_votes_voter_post;index" json:"post_id"`
	Choice    tally.Choice `gorm:"type:varchar(8);not null" json:"choice"`
	CreatedAt time.Time    `json:"created_at"`
}
