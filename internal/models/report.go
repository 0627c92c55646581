package models

import "time"

// ReportTargetType identifies what kind of entity a report is filed against.
type ReportTargetType string

const (
	ReportTargetPost    ReportTargetType = "post"
	ReportTargetComment ReportTargetType = "comment"
	ReportTargetUser    ReportTargetType = "user"
)

// ValidReportTarget reports whether t is a recognized report target type.
func ValidReportTarget(t ReportTargetType) bool {
	switch t {
	case ReportTargetPost, ReportTargetComment, ReportTargetUser:
		return true
	}
	return false
}

// Report is an immutable moderation record. Reports never mutate counters
// and never trigger notifications.
type Report struct {
	ID          string           `json:"id" gorm:"type:uuid;primaryKey"`
	ReporterID  uint             `json:"reporter_id" gorm:"index"`
	TargetID    string           `json:"target_id" gorm:"index"`
	TargetType  ReportTargetType `json:"target_type" gorm:"size:20"`
	Reason      string           `json:"reason" gorm:"size:100"`
	Description string           `json:"description,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// CreateReportRequest defines the request body for reporting content
type CreateReportRequest struct {
	TargetID    string `json:"target_id" validate:"required"`
	TargetType  string `json:"target_type" validate:"required,oneof=post comment user"`
	Reason      string `json:"reason" validate:"required,min=1,max=100"`
	Description string `json:"description,omitempty" validate:"omitempty,max=1000"`
}
