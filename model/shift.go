package model

import "time"

// ShiftInstance is one planned work period on a calendar date. Start is a
// wall-clock time string ("15:04"); a shift whose end lands before its start
// runs overnight into the next day.
type ShiftInstance struct {
	ID          string    `gorm:"primaryKey;column:id" json:"id"`
	TemplateID  *string   `gorm:"column:template_id" json:"templateId"`
	Date        time.Time `gorm:"column:date;type:date;index;not null" json:"date"`
	Start       string    `gorm:"column:start;type:varchar(8);not null" json:"start"`
	DurationMin int       `gorm:"column:duration_min;not null" json:"durationMin"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (ShiftInstance) TableName() string {
	return "shift_instances"
}
