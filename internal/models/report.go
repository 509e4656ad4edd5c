package models

import (
	"strings"
	"time"
)

// ReportStatus tracks a report through moderation.
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusReviewed  ReportStatus = "reviewed"
	ReportStatusResolved  ReportStatus = "resolved"
	ReportStatusDismissed ReportStatus = "dismissed"
)

// ParseReportStatus validates a status sent by an admin.
func ParseReportStatus(raw string) (ReportStatus, bool) {
	s := ReportStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case ReportStatusPending, ReportStatusReviewed, ReportStatusResolved, ReportStatusDismissed:
		return s, true
	}
	return "", false
}

// ReportTarget is what a report points at.
type ReportTarget string

const (
	ReportTargetPost    ReportTarget = "post"
	ReportTargetComment ReportTarget = "comment"
	ReportTargetUser    ReportTarget = "user"
)

// ReportReasons are the reasons offered by the client.
var ReportReasons = []string{"Spam", "Harassment", "Inappropriate Content", "False Information", "Other"}

// Report flags a post, comment or user for moderation.
type Report struct {
	ID                uint         `gorm:"primaryKey" json:"id"`
	ReporterID        uint         `gorm:"not null;index" json:"reporter_id"`
	TargetType        ReportTarget `gorm:"type:varchar(16);not null" json:"target_type"`
	ReportedPostID    *uint        `gorm:"index" json:"reported_post_id,omitempty"`
	ReportedCommentID *uint        `gorm:"index" json:"reported_comment_id,omitempty"`
	ReportedUserID    *uint        `gorm:"index" json:"reported_user_id,omitempty"`
	Reason            string       `gorm:"not null" json:"reason"`
	Description       string       `gorm:"type:text" json:"description,omitempty"`
	Status            ReportStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	ReviewedBy        *uint        `json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time   `json:"reviewed_at,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
}
