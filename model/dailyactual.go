package model

import "time"

const (
	SourceAutomatic = "automatic"
	SourceManual    = "manual"
	SourceMixed     = "mixed"
)

// DailyActual is the reconciled planned-vs-actual record for one calendar
// date. One row per date; recomputation overwrites in place keeping the id.
type DailyActual struct {
	ID             string     `gorm:"primaryKey;column:id" json:"id"`
	Date           time.Time  `gorm:"column:date;type:date;uniqueIndex;not null" json:"date"`
	PlannedMinutes int        `gorm:"column:planned_minutes;not null" json:"plannedMinutes"`
	ActualMinutes  int        `gorm:"column:actual_minutes;not null" json:"actualMinutes"`
	Source         string     `gorm:"column:source;type:varchar(32);not null" json:"source"`
	ConfirmedAt    *time.Time `gorm:"column:confirmed_at" json:"confirmedAt"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (DailyActual) TableName() string {
	return "daily_actuals"
}
