// Package queue holds the durable submission queue: one record per confirmed
// period, drained against the remote aggregation service by a single
// in-process worker.
package queue

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lukashondrich/open-workinghours-sub006/model"
	v1 "github.com/lukashondrich/open-workinghours-sub006/remote/v1"
)

const (
	DefaultMaxRetries = 10
	DefaultBaseDelay  = 1000 * time.Millisecond
	DefaultMaxDelay   = 32000 * time.Millisecond
)

// ErrInvalidTransition is returned when a retry or delete targets a record
// whose status does not allow it.
var ErrInvalidTransition = errors.New("invalid status transition")

// Queue owns the submission_records table. Tests instantiate isolated queues
// against their own stores; there is no ambient global state.
type Queue struct {
	db     *gorm.DB
	client *v1.Client
	mu     sync.Mutex

	BaseDelay     time.Duration
	MaxDelay      time.Duration
	ClientVersion string

	sleep func(time.Duration)
	now   func() time.Time
}

func New(db *gorm.DB, client *v1.Client, clientVersion string) *Queue {
	return &Queue{
		db:            db,
		client:        client,
		BaseDelay:     DefaultBaseDelay,
		MaxDelay:      DefaultMaxDelay,
		ClientVersion: clientVersion,
		sleep:         time.Sleep,
		now:           time.Now,
	}
}

// HoursFromMinutes converts a minute total to hours at two-decimal precision.
func HoursFromMinutes(minutes int) float64 {
	return math.Round(float64(minutes)/60.0*100) / 100
}

// Enqueue creates one pending record for a period's already-noised figures.
// Callers are responsible for not enqueuing the same period twice; the queue
// does not deduplicate.
func (q *Queue) Enqueue(periodStart, periodEnd time.Time, noisedPlannedMin, noisedActualMin int) (*model.SubmissionRecord, error) {
	rec := model.SubmissionRecord{
		ID:          uuid.NewString(),
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		PlannedHrs:  HoursFromMinutes(noisedPlannedMin),
		ActualHrs:   HoursFromMinutes(noisedActualMin),
		Status:      model.SubmissionPending,
	}
	if err := q.db.Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("enqueue submission: %w", err)
	}
	return &rec, nil
}

// List returns all records in creation order.
func (q *Queue) List() ([]model.SubmissionRecord, error) {
	var recs []model.SubmissionRecord
	if err := q.db.Order("created_at, id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return recs, nil
}

func (q *Queue) get(id string) (*model.SubmissionRecord, error) {
	var rec model.SubmissionRecord
	if err := q.db.First(&rec, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("submission %s: %w", id, err)
	}
	return &rec, nil
}

// Retry moves a failed record back to pending. Only failed records can be
// retried.
func (q *Queue) Retry(id string) error {
	rec, err := q.get(id)
	if err != nil {
		return err
	}
	if rec.Status != model.SubmissionFailed {
		return fmt.Errorf("retry submission %s in status %s: %w", id, rec.Status, ErrInvalidTransition)
	}
	updates := map[string]any{"status": model.SubmissionPending, "error_detail": nil}
	return q.db.Model(rec).Updates(updates).Error
}

// Delete removes a pending or failed record. Sent records are kept as the
// delivery log; in-flight ones cannot be removed underneath the worker.
func (q *Queue) Delete(id string) error {
	rec, err := q.get(id)
	if err != nil {
		return err
	}
	if rec.Status != model.SubmissionPending && rec.Status != model.SubmissionFailed {
		return fmt.Errorf("delete submission %s in status %s: %w", id, rec.Status, ErrInvalidTransition)
	}
	return q.db.Delete(rec).Error
}

// ResetStale moves records stuck in sending back to pending. A persisted
// sending status is never trusted across restarts; callers must run this
// before the first drain.
func (q *Queue) ResetStale() error {
	return q.db.Model(&model.SubmissionRecord{}).
		Where("status = ?", model.SubmissionSending).
		Update("status", model.SubmissionPending).Error
}

// Send performs one delivery attempt for a pending record. Records in any
// other status are skipped; the status check is the guard, not locking, since
// a single worker drains the queue.
func (q *Queue) Send(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	rec, err := q.get(id)
	if err != nil {
		return err
	}
	if rec.Status != model.SubmissionPending {
		return nil
	}
	return q.attempt(rec)
}

// attempt runs one send regardless of prior failures; callers hold q.mu.
func (q *Queue) attempt(rec *model.SubmissionRecord) error {
	if err := q.db.Model(rec).Update("status", model.SubmissionSending).Error; err != nil {
		return fmt.Errorf("mark sending: %w", err)
	}

	dto := &v1.SubmissionDTO{
		WeekStart:     rec.PeriodStart.Format("2006-01-02"),
		WeekEnd:       rec.PeriodEnd.Format("2006-01-02"),
		PlannedHours:  rec.PlannedHrs,
		ActualHours:   rec.ActualHrs,
		ClientVersion: q.ClientVersion,
	}

	_, sendErr := q.client.Submissions.Submit(dto)
	if sendErr == nil {
		now := q.now()
		updates := map[string]any{"status": model.SubmissionSent, "sent_at": now, "error_detail": nil}
		if err := q.db.Model(rec).Updates(updates).Error; err != nil {
			return fmt.Errorf("mark sent: %w", err)
		}
		return nil
	}

	detail := sendErr.Error()
	if v1.Unauthenticated(sendErr) {
		detail = "unauthenticated: " + detail
	}
	updates := map[string]any{"status": model.SubmissionFailed, "error_detail": detail}
	if err := q.db.Model(rec).Updates(updates).Error; err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return fmt.Errorf("send submission %s: %w", rec.ID, sendErr)
}

// Drain sends pending records in creation order, one attempt each, and stops
// at the first failure. The failed record keeps its error detail; the next
// invocation picks up from the remaining pending records.
func (q *Queue) Drain() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	var pending []model.SubmissionRecord
	err := q.db.
		Where("status = ?", model.SubmissionPending).
		Order("created_at, id").
		Find(&pending).Error
	if err != nil {
		return fmt.Errorf("fetch pending submissions: %w", err)
	}

	for i := range pending {
		if err := q.attempt(&pending[i]); err != nil {
			return err
		}
	}
	return nil
}

// ProcessAll drains every pending record, retrying each up to maxRetries
// attempts with capped exponential backoff between attempts. Records that
// exhaust their budget stay failed and the errors surface to the caller;
// nothing is discarded silently.
func (q *Queue) ProcessAll(maxRetries int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	var pending []model.SubmissionRecord
	err := q.db.
		Where("status = ?", model.SubmissionPending).
		Order("created_at, id").
		Find(&pending).Error
	if err != nil {
		return fmt.Errorf("fetch pending submissions: %w", err)
	}

	var failures []error
	for i := range pending {
		rec := &pending[i]

		var lastErr error
		for attempt := 1; attempt <= maxRetries; attempt++ {
			lastErr = q.attempt(rec)
			if lastErr == nil {
				break
			}
			if attempt < maxRetries {
				q.sleep(q.backoff(attempt))
			}
		}
		if lastErr != nil {
			log.Printf("queue: giving up on %s after %d attempts: %v", rec.ID, maxRetries, lastErr)
			failures = append(failures, lastErr)
		}
	}
	return errors.Join(failures...)
}

// backoff returns the delay after the given attempt number:
// min(BaseDelay * 2^(attempt-1), MaxDelay).
func (q *Queue) backoff(attempt int) time.Duration {
	delay := q.BaseDelay << (attempt - 1)
	if delay > q.MaxDelay || delay <= 0 {
		delay = q.MaxDelay
	}
	return delay
}
