package server

import (
	"context"

	"hotorflop/internal/models"
	"hotorflop/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createReportRequest struct {
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

type reportFunc func(context.Context, service.CreateReportInput) (*models.Report, error)

// createReport parses a report body and files it through create.
func (s *Server) createReport(c *fiber.Ctx, create reportFunc) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req createReportRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	report, err := create(c.UserContext(), service.CreateReportInput{
		ReporterID:  currentUserID(c),
		TargetID:    targetID,
		Reason:      req.Reason,
		Description: req.Description,
	})
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// ReportPost handles POST /api/reports/posts/:id. Hidden posts are 404.
// @Summary Report a post
// @Description File a moderation report. Reason is one of Spam, Harassment, Inappropriate Content, False Information, Other.
// @Tags moderation
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{reason=string,description=string} true "Report details"
// @Success 201 {object} models.Report
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /reports/posts/{id} [post]
func (s *Server) ReportPost(c *fiber.Ctx) error {
	return s.createReport(c, s.reportService.ReportPost)
}

// ReportComment handles POST /api/reports/comments/:id
// @Summary Report a comment
// @Description File a moderation report. Reason is one of Spam, Harassment, Inappropriate Content, False Information, Other.
// @Tags moderation
// @Accept json
// @Produce json
// @Param id path int true "Comment ID"
// @Param request body object{reason=string,description=string} true "Report details"
// @Success 201 {object} models.Report
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /reports/comments/{id} [post]
func (s *Server) ReportComment(c *fiber.Ctx) error {
	return s.createReport(c, s.reportService.ReportComment)
}

// ReportUser handles POST /api/reports/users/:id
// @Summary Report a user
// @Description File a moderation report. Reason is one of Spam, Harassment, Inappropriate Content, False Information, Other.
// @Tags moderation
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body object{reason=string,description=string} true "Report details"
// @Success 201 {object} models.Report
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /reports/users/{id} [post]
func (s *Server) ReportUser(c *fiber.Ctx) error {
	return s.createReport(c, s.reportService.ReportUser)
}

// GetReports handles GET /api/admin/reports?status=
// @Summary List moderation reports
// @Description List reports, optionally filtered by status.
// @Tags moderation-admin
// @Produce json
// @Param status query string false "pending, reviewed, resolved or dismissed"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Report
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/reports [get]
func (s *Server) GetReports(c *fiber.Ctx) error {
	page := parsePagination(c, 50)

	reports, err := s.reportService.ListReports(c.UserContext(), c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(reports)
}

// UpdateReport handles PUT /api/admin/reports/:id
// @Summary Review moderation report
// @Description Move a report to reviewed, resolved or dismissed.
// @Tags moderation-admin
// @Accept json
// @Produce json
// @Param id path int true "Report ID"
// @Param request body object{status=string} true "New status"
// @Success 200 {object} models.Report
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/reports/{id} [put]
func (s *Server) UpdateReport(c *fiber.Ctx) error {
	reportID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	report, err := s.reportService.ReviewReport(c.UserContext(), currentUserID(c), reportID, req.Status)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(report)
}
