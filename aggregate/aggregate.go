package aggregate

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lukashondrich/open-workinghours-sub006/model"
	"github.com/lukashondrich/open-workinghours-sub006/utils"
)

// ManualEntry is a caller-supplied time window for a day. When manual entries
// are present they take precedence and session lookup is skipped entirely.
type ManualEntry struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// OverlapMinutes returns the whole minutes that [start, end) overlaps
// [dayStart, dayEnd). Zero or negative overlap contributes nothing.
func OverlapMinutes(start, end, dayStart, dayEnd time.Time) int {
	lo := start
	if dayStart.After(lo) {
		lo = dayStart
	}
	hi := end
	if dayEnd.Before(hi) {
		hi = dayEnd
	}
	overlap := hi.Sub(lo)
	if overlap <= 0 {
		return 0
	}
	return int(math.Round(overlap.Minutes()))
}

// ParseTimeOnDate combines a base date with a wall-clock string (e.g. "22:00").
func ParseTimeOnDate(baseDate time.Time, timeStr string) (time.Time, error) {
	t, err := time.Parse("15:04", timeStr)
	if err != nil {
		t, err = time.Parse("15:04:05", timeStr)
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(baseDate.Year(), baseDate.Month(), baseDate.Day(), t.Hour(), t.Minute(), t.Second(), 0, baseDate.Location()), nil
}

// ShiftWindow resolves a shift instance to absolute start/end instants.
func ShiftWindow(s model.ShiftInstance) (time.Time, time.Time, error) {
	start, err := ParseTimeOnDate(s.Date, s.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid shift start %q: %w", s.Start, err)
	}
	return start, start.Add(time.Duration(s.DurationMin) * time.Minute), nil
}

// NewShiftInstance builds an instance from start/finish wall-clock strings.
// A finish earlier than the start runs overnight into the next day.
func NewShiftInstance(date time.Time, start, finish string) (model.ShiftInstance, error) {
	day, _ := utils.DayBounds(date)
	s, err := ParseTimeOnDate(day, start)
	if err != nil {
		return model.ShiftInstance{}, fmt.Errorf("invalid start time %q: %w", start, err)
	}
	f, err := ParseTimeOnDate(day, finish)
	if err != nil {
		return model.ShiftInstance{}, fmt.Errorf("invalid finish time %q: %w", finish, err)
	}
	if !f.After(s) {
		f = f.Add(24 * time.Hour)
	}
	return model.ShiftInstance{
		ID:          uuid.NewString(),
		Date:        day,
		Start:       s.Format("15:04"),
		DurationMin: int(math.Round(f.Sub(s).Minutes())),
	}, nil
}

// PlannedMinutes sums the overlap of each shift instance with the day window.
// Overlapping instances are summed without deduplication.
func PlannedMinutes(day time.Time, shifts []model.ShiftInstance) (int, error) {
	dayStart, dayEnd := utils.DayBounds(day)
	total := 0
	for _, s := range shifts {
		start, end, err := ShiftWindow(s)
		if err != nil {
			return 0, err
		}
		total += OverlapMinutes(start, end, dayStart, dayEnd)
	}
	return total, nil
}

// Engine recomputes the canonical Daily Actual for a calendar date. It is the
// only writer of daily_actuals.
type Engine struct {
	db  *gorm.DB
	Now func() time.Time
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db, Now: time.Now}
}

// Recompute derives planned and actual minutes for the date and upserts the
// Daily Actual keyed by date, preserving its id when one already exists.
// Calling it twice over unchanged data yields the same record.
func (e *Engine) Recompute(date time.Time, manual []ManualEntry) (*model.DailyActual, error) {
	dayStart, dayEnd := utils.DayBounds(date)

	// Shifts dated the previous day can run past midnight into this one.
	var shifts []model.ShiftInstance
	err := e.db.
		Where("date >= ? AND date < ?", dayStart.AddDate(0, 0, -1), dayEnd).
		Find(&shifts).Error
	if err != nil {
		return nil, fmt.Errorf("fetch shifts: %w", err)
	}

	planned, err := PlannedMinutes(dayStart, shifts)
	if err != nil {
		return nil, err
	}

	var actual int
	var source string
	if len(manual) > 0 {
		for _, m := range manual {
			actual += OverlapMinutes(m.Start, m.End, dayStart, dayEnd)
		}
		source = model.SourceManual
	} else {
		actual, source, err = e.actualFromSessions(dayStart, dayEnd)
		if err != nil {
			return nil, err
		}
	}

	record := model.DailyActual{
		ID:             uuid.NewString(),
		Date:           dayStart,
		PlannedMinutes: planned,
		ActualMinutes:  actual,
		Source:         source,
	}

	var existing model.DailyActual
	err = e.db.Where("date = ?", dayStart).First(&existing).Error
	switch {
	case err == nil:
		record.ID = existing.ID
		record.ConfirmedAt = existing.ConfirmedAt
		record.CreatedAt = existing.CreatedAt
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("fetch daily actual: %w", err)
	}

	if err := e.db.Save(&record).Error; err != nil {
		return nil, fmt.Errorf("save daily actual: %w", err)
	}
	return &record, nil
}

// Confirm recomputes the date and stamps the confirmation time. The caller
// takes the returned record on to noise injection and the submission queue.
func (e *Engine) Confirm(date time.Time, manual []ManualEntry) (*model.DailyActual, error) {
	record, err := e.Recompute(date, manual)
	if err != nil {
		return nil, err
	}
	now := e.Now()
	record.ConfirmedAt = &now
	if err := e.db.Model(record).Update("confirmed_at", now).Error; err != nil {
		return nil, fmt.Errorf("confirm daily actual: %w", err)
	}
	return record, nil
}

// actualFromSessions sums per-session overlap with the day window. Sessions
// at different locations can run simultaneously; their minutes are summed
// without deduplication, so a day can exceed 24h of credited time. Known
// limitation, not capped here.
func (e *Engine) actualFromSessions(dayStart, dayEnd time.Time) (int, string, error) {
	var sessions []model.Session
	err := e.db.
		Where("state = ?", model.SessionClosed).
		Where("clock_in < ? AND clock_out > ?", dayEnd, dayStart).
		Find(&sessions).Error
	if err != nil {
		return 0, "", fmt.Errorf("fetch sessions: %w", err)
	}

	total := 0
	sawAutomatic, sawManual := false, false
	for _, s := range sessions {
		if s.ClockOut == nil {
			continue
		}
		minutes := OverlapMinutes(s.ClockIn, *s.ClockOut, dayStart, dayEnd)
		if minutes == 0 {
			continue
		}
		total += minutes
		switch s.Trigger {
		case model.TriggerManual:
			sawManual = true
		default:
			sawAutomatic = true
		}
	}

	source := model.SourceAutomatic
	switch {
	case sawAutomatic && sawManual:
		source = model.SourceMixed
	case sawManual:
		source = model.SourceManual
	}
	return total, source, nil
}
