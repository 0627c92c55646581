package repositories

import (
	"github.com/wavelink-app/backend/internal/models"
	"gorm.io/gorm"
)

// ReportRepository stores immutable moderation reports.
type ReportRepository interface {
	CreateReport(report *models.Report) error
	GetReportsByTarget(targetID string, targetType models.ReportTargetType) ([]models.Report, error)
	GetReportsByReporter(reporterID uint) ([]models.Report, error)
}

type postgresReportRepository struct {
	db *gorm.DB
}

// NewPostgresReportRepository creates a new report repository backed by
// PostgreSQL.
func NewPostgresReportRepository(db *gorm.DB) ReportRepository {
	return &postgresReportRepository{db: db}
}

func (r *postgresReportRepository) CreateReport(report *models.Report) error {
	return r.db.Create(report).Error
}

func (r *postgresReportRepository) GetReportsByTarget(targetID string, targetType models.ReportTargetType) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.Where("target_id = ? AND target_type = ?", targetID, targetType).
		Order("created_at DESC").Find(&reports).Error
	return reports, err
}

func (r *postgresReportRepository) GetReportsByReporter(reporterID uint) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.Where("reporter_id = ?", reporterID).
		Order("created_at DESC").Find(&reports).Error
	return reports, err
}
