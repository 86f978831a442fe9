package service

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/emilythestrangee/community-board/backend/internal/logger"
	"github.com/emilythestrangee/community-board/backend/internal/models"
	"github.com/emilythestrangee/community-board/backend/internal/observability"
	"github.com/emilythestrangee/community-board/backend/internal/repository"
)

const maxReasonLen = 1000

type SubmitReportInput struct {
	TargetType     string
	TargetID       int
	ReporterUserID int
	Reason         string
}

// ReportService appends reports. Repeat reports from the same user are kept.
type ReportService struct {
	reports *repository.ReportLedger
	content *repository.ContentStore
	log     *logger.Logger
}

func NewReportService(db *gorm.DB, log *logger.Logger) *ReportService {
	return &ReportService{
		reports: repository.NewReportLedger(db),
		content: repository.NewContentStore(db),
		log:     log.With("service", "ReportService"),
	}
}

func (s *ReportService) SubmitReport(ctx context.Context, in SubmitReportInput) (*models.Report, error) {
	if in.ReporterUserID <= 0 {
		return nil, models.NewUnauthenticatedError()
	}
	targetType := strings.ToLower(strings.TrimSpace(in.TargetType))
	if targetType == "" || in.TargetID <= 0 {
		return nil, models.NewInvalidRequestError("Missing target type or ID")
	}
	if targetType != models.TargetPost && targetType != models.TargetComment {
		return nil, models.NewInvalidRequestError("Invalid target type")
	}

	exists, err := s.content.Exists(ctx, targetType, in.TargetID)
	if err != nil {
		s.log.Error("report target lookup failed", "target_type", targetType, "target_id", in.TargetID, "error", err)
		return nil, models.NewStoreError("Failed to submit report", err)
	}
	if !exists {
		if targetType == models.TargetPost {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, models.NewNotFoundError("Comment")
	}

	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = models.DefaultReportReason
	}
	if len(reason) > maxReasonLen {
		return nil, models.NewInvalidRequestError("Reason too long (max 1000 characters)")
	}

	report := &models.Report{
		TargetType:     targetType,
		TargetID:       in.TargetID,
		ReporterUserID: in.ReporterUserID,
		Reason:         reason,
	}
	if err := s.reports.Append(ctx, report); err != nil {
		s.log.Error("error submitting report", "target_type", targetType, "target_id", in.TargetID, "error", err)
		return nil, models.NewStoreError("Failed to submit report", err)
	}

	observability.ReportsTotal.WithLabelValues(targetType).Inc()
	s.log.Info("report submitted",
		"report_id", report.ID, "target_type", targetType, "target_id", in.TargetID, "reporter", in.ReporterUserID)
	return report, nil
}
