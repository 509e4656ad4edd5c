package repository

import (
	"context"
	"time"

	"hotorflop/internal/models"

	"gorm.io/gorm"
)

// ReportRepository defines the interface for moderation reports
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uint) (*models.Report, error)
	ListByStatus(ctx context.Context, status models.ReportStatus, limit, offset int) ([]models.Report, error)
	UpdateStatus(ctx context.Context, id uint, status models.ReportStatus, reviewerID uint, at time.Time) (*models.Report, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	if report.Status == "" {
		report.Status = models.ReportStatusPending
	}
	return storeError(r.db.WithContext(ctx).Create(report).Error)
}

func (r *reportRepository) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		return nil, lookupError(err, "Report", id)
	}
	return &report, nil
}

// ListByStatus lists reports newest first. An empty status lists all of them.
func (r *reportRepository) ListByStatus(ctx context.Context, status models.ReportStatus, limit, offset int) ([]models.Report, error) {
	reports := []models.Report{}
	q := r.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, storeError(err)
	}
	return reports, nil
}

func (r *reportRepository) UpdateStatus(ctx context.Context, id uint, status models.ReportStatus, reviewerID uint, at time.Time) (*models.Report, error) {
	res := r.db.WithContext(ctx).Model(&models.Report{}).Where("id = ?", id).Updates(map[string]any{
		"status":      status,
		"reviewed_by": reviewerID,
		"reviewed_at": at,
	})
	if res.Error != nil {
		return nil, storeError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Report", id)
	}
	return r.GetByID(ctx, id)
}
