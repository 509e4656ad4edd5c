package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"hotorflop/internal/models"
	"hotorflop/internal/repository"
)

const maxReportDescriptionLen = 1000

type ReportService struct {
	reportRepo  repository.ReportRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
	visibility  *VisibilityService
	now         func() time.Time
}

type CreateReportInput struct {
	ReporterID  uint
	TargetID    uint
	Reason      string
	Description string
}

func NewReportService(
	reportRepo repository.ReportRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
	visibility *VisibilityService,
) *ReportService {
	return &ReportService{
		reportRepo:  reportRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
		visibility:  visibility,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// canonicalReason matches raw against the offered reasons, ignoring case.
func canonicalReason(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	for _, r := range models.ReportReasons {
		if strings.EqualFold(r, raw) {
			return r, true
		}
	}
	return "", false
}

func (s *ReportService) newReport(in CreateReportInput, target models.ReportTarget) (*models.Report, error) {
	reason, ok := canonicalReason(in.Reason)
	if !ok {
		return nil, models.NewValidationError("Reason must be one of: " + strings.Join(models.ReportReasons, ", "))
	}
	desc := strings.TrimSpace(in.Description)
	if utf8.RuneCountInString(desc) > maxReportDescriptionLen {
		return nil, models.NewValidationError("Description too long (max 1000 characters)")
	}
	return &models.Report{
		ReporterID:  in.ReporterID,
		TargetType:  target,
		Reason:      reason,
		Description: desc,
		Status:      models.ReportStatusPending,
	}, nil
}

func (s *ReportService) ReportPost(ctx context.Context, in CreateReportInput) (*models.Report, error) {
	report, err := s.newReport(in, models.ReportTargetPost)
	if err != nil {
		return nil, err
	}
	if _, err := s.visibility.VisiblePost(ctx, s.postRepo, in.ReporterID, in.TargetID); err != nil {
		return nil, err
	}
	report.ReportedPostID = &in.TargetID
	return s.save(ctx, report)
}

func (s *ReportService) ReportComment(ctx context.Context, in CreateReportInput) (*models.Report, error) {
	report, err := s.newReport(in, models.ReportTargetComment)
	if err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, in.TargetID)
	if err != nil {
		return nil, err
	}
	// Comments under a hidden post are as missing as the post.
	if _, err := s.visibility.VisiblePost(ctx, s.postRepo, in.ReporterID, comment.PostID); err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return nil, models.NewNotFoundError("Comment", in.TargetID)
		}
		return nil, err
	}
	report.ReportedCommentID = &in.TargetID
	return s.save(ctx, report)
}

func (s *ReportService) ReportUser(ctx context.Context, in CreateReportInput) (*models.Report, error) {
	if in.TargetID == in.ReporterID {
		return nil, models.NewValidationError("You cannot report yourself")
	}
	report, err := s.newReport(in, models.ReportTargetUser)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, in.TargetID); err != nil {
		return nil, err
	}
	report.ReportedUserID = &in.TargetID
	return s.save(ctx, report)
}

func (s *ReportService) save(ctx context.Context, report *models.Report) (*models.Report, error) {
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// ListReports lists reports by status; an empty status lists all.
func (s *ReportService) ListReports(ctx context.Context, status string, limit, offset int) ([]models.Report, error) {
	var st models.ReportStatus
	if strings.TrimSpace(status) != "" {
		parsed, ok := models.ParseReportStatus(status)
		if !ok {
			return nil, models.NewValidationError("Invalid report status")
		}
		st = parsed
	}
	return s.reportRepo.ListByStatus(ctx, st, limit, offset)
}

// ReviewReport moves a report out of pending and records who reviewed it.
func (s *ReportService) ReviewReport(ctx context.Context, adminID, reportID uint, status string) (*models.Report, error) {
	st, ok := models.ParseReportStatus(status)
	if !ok || st == models.ReportStatusPending {
		return nil, models.NewValidationError("Status must be reviewed, resolved or dismissed")
	}
	return s.reportRepo.UpdateStatus(ctx, reportID, st, adminID, s.now())
}
