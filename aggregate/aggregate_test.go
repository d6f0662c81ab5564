package aggregate

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lukashondrich/open-workinghours-sub006/model"
	"github.com/lukashondrich/open-workinghours-sub006/store"
	"github.com/lukashondrich/open-workinghours-sub006/utils"
)

func TestOverlapMinutes(t *testing.T) {
	day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	dayEnd := day.AddDate(0, 0, 1)

	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		expected int
	}{
		{
			name:     "Fully inside",
			start:    day.Add(9 * time.Hour),
			end:      day.Add(17 * time.Hour),
			expected: 480,
		},
		{
			name:     "Straddles day start",
			start:    day.Add(-2 * time.Hour),
			end:      day.Add(2 * time.Hour),
			expected: 120,
		},
		{
			name:     "Straddles day end",
			start:    day.Add(22 * time.Hour),
			end:      day.Add(26 * time.Hour),
			expected: 120,
		},
		{
			name:     "Entirely before",
			start:    day.Add(-4 * time.Hour),
			end:      day.Add(-1 * time.Hour),
			expected: 0,
		},
		{
			name:     "Zero-length window",
			start:    day.Add(9 * time.Hour),
			end:      day.Add(9 * time.Hour),
			expected: 0,
		},
		{
			name:     "Rounds to nearest minute",
			start:    day.Add(9 * time.Hour),
			end:      day.Add(9*time.Hour + 90*time.Second),
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, OverlapMinutes(tt.start, tt.end, day, dayEnd))
		})
	}
}

func TestOvernightShiftSplitsAcrossDays(t *testing.T) {
	day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	shift, err := NewShiftInstance(day, "22:00", "06:00")
	require.NoError(t, err)
	assert.Equal(t, 480, shift.DurationMin)

	toDay, err := PlannedMinutes(day, []model.ShiftInstance{shift})
	require.NoError(t, err)
	toNext, err := PlannedMinutes(day.AddDate(0, 0, 1), []model.ShiftInstance{shift})
	require.NoError(t, err)

	assert.Equal(t, 120, toDay)
	assert.Equal(t, 360, toNext)
	assert.Equal(t, 480, toDay+toNext)
}

func TestPlannedMinutesSumsOverlappingShifts(t *testing.T) {
	day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	a, err := NewShiftInstance(day, "09:00", "17:00")
	require.NoError(t, err)
	b, err := NewShiftInstance(day, "16:00", "18:00")
	require.NoError(t, err)

	// Overlapping instances are summed without deduplication.
	total, err := PlannedMinutes(day, []model.ShiftInstance{a, b})
	require.NoError(t, err)
	assert.Equal(t, 480+120, total)
}

func newTestStore(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := store.OpenForTesting()
	require.NoError(t, err)
	return db
}

func closedSession(t *testing.T, db *gorm.DB, locationID string, trigger string, clockIn, clockOut time.Time) {
	t.Helper()
	minutes := int(clockOut.Sub(clockIn).Minutes())
	s := model.Session{
		ID:         uuid.NewString(),
		LocationID: locationID,
		ClockIn:    clockIn,
		ClockOut:   utils.Ptr(clockOut),
		Minutes:    utils.Ptr(minutes),
		Trigger:    trigger,
		State:      model.SessionClosed,
	}
	require.NoError(t, db.Create(&s).Error)
}

func TestRecomputeFromSessions(t *testing.T) {
	db := newTestStore(t)
	engine := NewEngine(db)
	day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	shift, err := NewShiftInstance(day, "09:00", "17:00")
	require.NoError(t, err)
	require.NoError(t, db.Create(&shift).Error)

	closedSession(t, db, "loc-1", model.TriggerAutomatic, day.Add(9*time.Hour), day.Add(12*time.Hour))
	closedSession(t, db, "loc-1", model.TriggerAutomatic, day.Add(13*time.Hour), day.Add(17*time.Hour))

	record, err := engine.Recompute(day, nil)
	require.NoError(t, err)

	assert.Equal(t, 480, record.PlannedMinutes)
	assert.Equal(t, 420, record.ActualMinutes)
	assert.Equal(t, model.SourceAutomatic, record.Source)
	assert.Nil(t, record.ConfirmedAt)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	db := newTestStore(t)
	engine := NewEngine(db)
	day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	closedSession(t, db, "loc-1", model.TriggerAutomatic, day.Add(9*time.Hour), day.Add(17*time.Hour))

	first, err := engine.Recompute(day, nil)
	require.NoError(t, err)
	second, err := engine.Recompute(day, nil)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.PlannedMinutes, second.PlannedMinutes)
	assert.Equal(t, first.ActualMinutes, second.ActualMinutes)

	var count int64
	require.NoError(t, db.Model(&model.DailyActual{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRecomputeSourceTag(t *testing.T) {
	day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	t.Run("Mixed triggers", func(t *testing.T) {
		db := newTestStore(t)
		closedSession(t, db, "loc-1", model.TriggerAutomatic, day.Add(9*time.Hour), day.Add(12*time.Hour))
		closedSession(t, db, "loc-2", model.TriggerManual, day.Add(14*time.Hour), day.Add(16*time.Hour))

		record, err := NewEngine(db).Recompute(day, nil)
		require.NoError(t, err)
		assert.Equal(t, model.SourceMixed, record.Source)
		assert.Equal(t, 300, record.ActualMinutes)
	})

	t.Run("Manual entries short-circuit sessions", func(t *testing.T) {
		db := newTestStore(t)
		closedSession(t, db, "loc-1", model.TriggerAutomatic, day.Add(9*time.Hour), day.Add(12*time.Hour))

		manual := []ManualEntry{{Start: day.Add(10 * time.Hour), End: day.Add(14 * time.Hour)}}
		record, err := NewEngine(db).Recompute(day, manual)
		require.NoError(t, err)

		assert.Equal(t, model.SourceManual, record.Source)
		assert.Equal(t, 240, record.ActualMinutes)
	})
}

func TestRecomputeSumsCrossLocationOverlap(t *testing.T) {
	db := newTestStore(t)
	day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	// Simultaneous sessions at two locations double-count; the engine does
	// not cap the daily total.
	closedSession(t, db, "loc-1", model.TriggerAutomatic, day.Add(9*time.Hour), day.Add(12*time.Hour))
	closedSession(t, db, "loc-2", model.TriggerAutomatic, day.Add(9*time.Hour), day.Add(12*time.Hour))

	record, err := NewEngine(db).Recompute(day, nil)
	require.NoError(t, err)
	assert.Equal(t, 360, record.ActualMinutes)
}

func TestConfirmStampsConfirmedAt(t *testing.T) {
	db := newTestStore(t)
	engine := NewEngine(db)
	now := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)
	engine.Now = func() time.Time { return now }

	day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	closedSession(t, db, "loc-1", model.TriggerAutomatic, day.Add(9*time.Hour), day.Add(17*time.Hour))

	record, err := engine.Confirm(day, nil)
	require.NoError(t, err)
	require.NotNil(t, record.ConfirmedAt)
	assert.True(t, record.ConfirmedAt.Equal(now))
}

func TestRecomputeEmptyDayYieldsZeros(t *testing.T) {
	db := newTestStore(t)
	day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	record, err := NewEngine(db).Recompute(day, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, record.PlannedMinutes)
	assert.Equal(t, 0, record.ActualMinutes)
}
