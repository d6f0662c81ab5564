package model

import "time"

const (
	TriggerAutomatic = "automatic"
	TriggerManual    = "manual"
)

// Session lifecycle states. An open session with a non-nil ExitAt is in the
// exit-hysteresis window; the stored wake time makes the timer survive a
// process restart.
const (
	SessionOpen        = "open"
	SessionExitPending = "exit_pending"
	SessionClosed      = "closed"
)

type Session struct {
	ID         string     `gorm:"primaryKey;column:id" json:"id"`
	LocationID string     `gorm:"column:location_id;index;not null" json:"locationId"`
	ClockIn    time.Time  `gorm:"column:clock_in;not null" json:"clockIn"`
	ClockOut   *time.Time `gorm:"column:clock_out" json:"clockOut"`
	Minutes    *int       `gorm:"column:minutes" json:"minutes"`
	Trigger    string     `gorm:"column:trigger;type:varchar(32);not null" json:"trigger"`
	State      string     `gorm:"column:state;type:varchar(32);not null;index" json:"state"`

	// ExitAt records the region-exit timestamp while the session waits out the
	// hysteresis delay. Cleared on re-entry.
	ExitAt *time.Time `gorm:"column:exit_at" json:"exitAt"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Session) TableName() string {
	return "sessions"
}
