package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/emilythestrangee/community-board/backend/internal/models"
)

// ReportLedger is the append-only log of reports.
type ReportLedger struct {
	db *gorm.DB
}

func NewReportLedger(db *gorm.DB) *ReportLedger {
	return &ReportLedger{db: db}
}

func (l *ReportLedger) Append(ctx context.Context, report *models.Report) error {
	return l.db.WithContext(ctx).Create(report).Error
}

// TargetCount is the number of reports filed against one target.
type TargetCount struct {
	TargetID    int
	ReportCount int64
}

// CountByTarget groups reports of one target type. Only targets whose count
// reaches minReports are returned. With distinctReporters, repeat reports from
// the same user count once.
func (l *ReportLedger) CountByTarget(ctx context.Context, targetType string, minReports int, distinctReporters bool) ([]TargetCount, error) {
	countExpr := "COUNT(*)"
	if distinctReporters {
		countExpr = "COUNT(DISTINCT reporter_user_id)"
	}

	var rows []TargetCount
	err := l.db.WithContext(ctx).
		Model(&models.Report{}).
		Select("target_id, "+countExpr+" AS report_count").
		Where("target_type = ?", targetType).
		Group("target_id").
		Having(countExpr+" >= ?", minReports).
		Scan(&rows).Error
	return rows, err
}

func (l *ReportLedger) ListForTarget(ctx context.Context, targetType string, targetID int) ([]models.Report, error) {
	var reports []models.Report
	err := l.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at desc, id desc").
		Find(&reports).Error
	return reports, err
}
