package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shiftlog/timeclock-backend-go/internal/domain/audit"
	"github.com/shiftlog/timeclock-backend-go/internal/domain/timeclock"
)

// TimeclockJobs contains timeclock-related cron jobs
type TimeclockJobs struct {
	clockService timeclock.ClockService
	auditRepo    audit.AuditRepository
	now          func() time.Time

	mu        sync.Mutex
	lastYear  int
	lastWeek  int
	hasPurged bool
}

// NewTimeclockJobs creates timeclock cron jobs
func NewTimeclockJobs(clockService timeclock.ClockService, auditRepo audit.AuditRepository) *TimeclockJobs {
	return &TimeclockJobs{
		clockService: clockService,
		auditRepo:    auditRepo,
		now:          time.Now,
	}
}

// RegisterJobs registers all timeclock-related cron jobs
func (j *TimeclockJobs) RegisterJobs(scheduler *Scheduler, checkInterval time.Duration) {
	// Reset timesheet data once per ISO week, on Monday (UTC)
	scheduler.AddJob(
		"weekly_timesheet_purge",
		checkInterval,
		j.WeeklyPurge,
	)
}

// WeeklyPurge clears all clock logs at the start of a new reporting
// week. The job ticks more often than it fires: it only purges the
// first time it observes a Monday of an ISO week it has not purged yet.
func (j *TimeclockJobs) WeeklyPurge(ctx context.Context) error {
	// Fire only in the first hour of Monday (UTC). A process restart
	// later in the day must not wipe data already collected this week.
	now := j.now().UTC()
	if now.Weekday() != time.Monday || now.Hour() != 0 {
		return nil
	}

	year, week := now.ISOWeek()

	j.mu.Lock()
	alreadyPurged := j.hasPurged && j.lastYear == year && j.lastWeek == week
	j.mu.Unlock()
	if alreadyPurged {
		return nil
	}

	// The in-memory marker does not survive a restart inside the purge
	// window, so also consult the audit trail before firing again.
	done, err := j.purgedThisWeek(ctx, now)
	if err != nil {
		return err
	}
	if done {
		j.markPurged(year, week)
		return nil
	}

	if err := j.clockService.Purge(ctx); err != nil {
		return err
	}

	j.markPurged(year, week)
	slog.Info("Weekly timesheet purge executed", "year", year, "week", week)
	return nil
}

// purgedThisWeek reports whether a weekly reset was already recorded
// since Monday midnight of the current week.
func (j *TimeclockJobs) purgedThisWeek(ctx context.Context, now time.Time) (bool, error) {
	mondayMidnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	entries, err := j.auditRepo.FindInRange(ctx, mondayMidnight, now.Add(time.Second))
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Action == audit.ActionWeeklyReset {
			return true, nil
		}
	}
	return false, nil
}

func (j *TimeclockJobs) markPurged(year, week int) {
	j.mu.Lock()
	j.lastYear, j.lastWeek, j.hasPurged = year, week, true
	j.mu.Unlock()
}
