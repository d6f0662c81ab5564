package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lukashondrich/open-workinghours-sub006/model"
)

const (
	DefaultExitDelay  = 5 * time.Minute
	DefaultMinSession = 5 * time.Minute
)

const (
	StateIdle        = "idle"
	StateTracking    = "tracking"
	StateExitPending = "exit_pending"
)

type EventKind string

const (
	EventEnter EventKind = "enter"
	EventExit  EventKind = "exit"
)

// RegionEvent is one presence notification from the geofence source.
type RegionEvent struct {
	LocationID string    `json:"locationId"`
	Kind       EventKind `json:"kind"`
	Timestamp  time.Time `json:"timestamp"`
}

// CloseOutcome reports what happened to a session on close. A session shorter
// than the minimum countable duration is discarded rather than persisted as a
// work period; the caller is expected to surface that as a notice.
type CloseOutcome struct {
	Session   model.Session
	Discarded bool
}

// Tracker drives the per-location session state machine. Region events and
// manual actions can arrive concurrently (background delivery vs. foreground
// UI), so every mutation runs under the tracker mutex; the state itself lives
// in the sessions table, which makes it survive restarts.
type Tracker struct {
	db    *gorm.DB
	clock Clock
	mu    sync.Mutex

	ExitDelay  time.Duration
	MinSession time.Duration
}

func New(db *gorm.DB, clock Clock) *Tracker {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Tracker{
		db:         db,
		clock:      clock,
		ExitDelay:  DefaultExitDelay,
		MinSession: DefaultMinSession,
	}
}

// openSession returns the single in-flight session for a location, or nil.
func (t *Tracker) openSession(locationID string) (*model.Session, error) {
	var s model.Session
	err := t.db.
		Where("location_id = ?", locationID).
		Where("state IN ?", []string{model.SessionOpen, model.SessionExitPending}).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch open session: %w", err)
	}
	return &s, nil
}

// State reports the tracker state for one location, derived from the
// persisted session rather than in-memory bookkeeping.
func (t *Tracker) State(locationID string) (string, error) {
	s, err := t.openSession(locationID)
	if err != nil {
		return "", err
	}
	if s == nil {
		return StateIdle, nil
	}
	if s.State == model.SessionExitPending {
		return StateExitPending, nil
	}
	return StateTracking, nil
}

// HandleEvent applies one region enter/exit. Duplicate enters are no-ops;
// an enter during the hysteresis window cancels the pending exit. Exits never
// close a session directly, they only arm the hysteresis timer.
func (t *Tracker) HandleEvent(ev RegionEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ev.Timestamp.IsZero() {
		ev.Timestamp = t.clock.Now()
	}

	current, err := t.openSession(ev.LocationID)
	if err != nil {
		return err
	}

	switch ev.Kind {
	case EventEnter:
		if current != nil {
			// Re-entry cancels any pending exit; already-tracking is a no-op.
			if current.State == model.SessionExitPending {
				updates := map[string]any{"state": model.SessionOpen, "exit_at": nil}
				if err := t.db.Model(current).Updates(updates).Error; err != nil {
					return fmt.Errorf("cancel pending exit: %w", err)
				}
			}
			return nil
		}
		return t.open(ev.LocationID, ev.Timestamp, model.TriggerAutomatic)

	case EventExit:
		if current == nil || current.State != model.SessionOpen {
			// Exit while idle or while a pending exit is already armed keeps
			// the original exit time.
			return nil
		}
		updates := map[string]any{"state": model.SessionExitPending, "exit_at": ev.Timestamp}
		if err := t.db.Model(current).Updates(updates).Error; err != nil {
			return fmt.Errorf("arm pending exit: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}

func (t *Tracker) open(locationID string, at time.Time, trigger string) error {
	s := model.Session{
		ID:         uuid.NewString(),
		LocationID: locationID,
		ClockIn:    at,
		Trigger:    trigger,
		State:      model.SessionOpen,
	}
	if err := t.db.Create(&s).Error; err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	return nil
}

// StartManual opens a session by user action. If one is already in flight for
// the location it is returned unchanged, matching the duplicate-enter no-op.
func (t *Tracker) StartManual(locationID string, at time.Time) (*model.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if at.IsZero() {
		at = t.clock.Now()
	}

	current, err := t.openSession(locationID)
	if err != nil {
		return nil, err
	}
	if current != nil {
		return current, nil
	}

	if err := t.open(locationID, at, model.TriggerManual); err != nil {
		return nil, err
	}
	return t.openSession(locationID)
}

// StopManual closes the in-flight session immediately, bypassing the
// hysteresis delay. Returns gorm.ErrRecordNotFound when nothing is tracking.
func (t *Tracker) StopManual(locationID string, at time.Time) (*CloseOutcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if at.IsZero() {
		at = t.clock.Now()
	}

	current, err := t.openSession(locationID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("no open session for location %s: %w", locationID, gorm.ErrRecordNotFound)
	}

	return t.close(current, at)
}

// Sweep closes every session whose hysteresis window has elapsed without an
// intervening re-entry. It must be called on resume as well as on a timer:
// the wake time is stored on the session row, so a sweep after a suspension
// applies exactly the close that the missed timer would have.
func (t *Tracker) Sweep(now time.Time) ([]CloseOutcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if now.IsZero() {
		now = t.clock.Now()
	}

	var pending []model.Session
	err := t.db.
		Where("state = ?", model.SessionExitPending).
		Where("exit_at <= ?", now.Add(-t.ExitDelay)).
		Order("exit_at").
		Find(&pending).Error
	if err != nil {
		return nil, fmt.Errorf("fetch pending exits: %w", err)
	}

	var outcomes []CloseOutcome
	for i := range pending {
		s := pending[i]
		// Clock-out at the original exit time, not the sweep time.
		out, err := t.close(&s, *s.ExitAt)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, *out)
	}
	return outcomes, nil
}

func (t *Tracker) close(s *model.Session, clockOut time.Time) (*CloseOutcome, error) {
	duration := clockOut.Sub(s.ClockIn)
	if duration < t.MinSession {
		if err := t.db.Delete(&model.Session{}, "id = ?", s.ID).Error; err != nil {
			return nil, fmt.Errorf("discard session: %w", err)
		}
		return &CloseOutcome{Session: *s, Discarded: true}, nil
	}

	minutes := int(math.Round(duration.Minutes()))
	s.ClockOut = &clockOut
	s.Minutes = &minutes
	s.State = model.SessionClosed
	s.ExitAt = nil
	updates := map[string]any{
		"clock_out": clockOut,
		"minutes":   minutes,
		"state":     model.SessionClosed,
		"exit_at":   nil,
	}
	if err := t.db.Model(&model.Session{}).Where("id = ?", s.ID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("close session: %w", err)
	}
	return &CloseOutcome{Session: *s}, nil
}

// Run feeds the tracker from a single-consumer event channel and sweeps
// pending exits periodically, preserving per-location ordering without
// fine-grained locking in callers.
func (t *Tracker) Run(ctx context.Context, events <-chan RegionEvent) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	// Resuming after a suspension: evaluate stored wake times first.
	if _, err := t.Sweep(t.clock.Now()); err != nil {
		log.Printf("tracker: resume sweep: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := t.HandleEvent(ev); err != nil {
				log.Printf("tracker: %s %s: %v", ev.Kind, ev.LocationID, err)
			}
		case <-ticker.C:
			outcomes, err := t.Sweep(t.clock.Now())
			if err != nil {
				log.Printf("tracker: sweep: %v", err)
				continue
			}
			for _, out := range outcomes {
				if out.Discarded {
					log.Printf("tracker: discarded short session at %s", out.Session.LocationID)
				}
			}
		}
	}
}
