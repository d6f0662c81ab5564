package model

import "time"

const (
	SubmissionPending = "pending"
	SubmissionSending = "sending"
	SubmissionSent    = "sent"
	SubmissionFailed  = "failed"
)

// SubmissionRecord is one durable unit of work awaiting transmission. The
// figures it carries are already noised; the raw DailyActual never leaves the
// device.
type SubmissionRecord struct {
	ID          string    `gorm:"primaryKey;column:id" json:"id"`
	PeriodStart time.Time `gorm:"column:period_start;type:date;not null" json:"periodStart"`
	PeriodEnd   time.Time `gorm:"column:period_end;type:date;not null" json:"periodEnd"`
	PlannedHrs  float64   `gorm:"column:planned_hours;type:decimal(10,2);not null" json:"plannedHours"`
	ActualHrs   float64   `gorm:"column:actual_hours;type:decimal(10,2);not null" json:"actualHours"`
	Status      string    `gorm:"column:status;type:varchar(32);not null;index" json:"status"`
	ErrorDetail *string   `gorm:"column:error_detail" json:"errorDetail"`

	SentAt    *time.Time `gorm:"column:sent_at" json:"sentAt"`
	CreatedAt time.Time  `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (SubmissionRecord) TableName() string {
	return "submission_records"
}
