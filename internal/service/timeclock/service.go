package timeclock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/shiftlog/timeclock-backend-go/internal/domain/audit"
	"github.com/shiftlog/timeclock-backend-go/internal/domain/timeclock"
	"github.com/shiftlog/timeclock-backend-go/internal/domain/user"
	"github.com/shiftlog/timeclock-backend-go/internal/pkg/database"
	"github.com/shiftlog/timeclock-backend-go/internal/pkg/locker"
	auditService "github.com/shiftlog/timeclock-backend-go/internal/service/audit"
)

type ClockServiceImpl struct {
	txm          database.TxManager
	clockLogRepo timeclock.ClockLogRepository
	userRepo     user.UserRepository
	recorder     auditService.Recorder

	// userLocks serializes the read-latest-then-write section per
	// employee; purgeGate keeps the purge from overlapping commits.
	userLocks *locker.Keyed
	purgeGate *locker.Gate

	now func() time.Time
}

func NewClockService(
	txm database.TxManager,
	clockLogRepo timeclock.ClockLogRepository,
	userRepo user.UserRepository,
	recorder auditService.Recorder,
) *ClockServiceImpl {
	return &ClockServiceImpl{
		txm:          txm,
		clockLogRepo: clockLogRepo,
		userRepo:     userRepo,
		recorder:     recorder,
		userLocks:    locker.NewKeyed(),
		purgeGate:    locker.NewGate(),
		now:          time.Now,
	}
}

// Clock implements timeclock.ClockService.
//
// The PIN identifies the employee by a linear bcrypt scan over every
// EMPLOYEE-role user. PINs are stored only as hashes, so there is no
// keyed lookup to take instead; the roster is small and the scan is
// the authentication model, not an inefficiency. First match wins.
func (s *ClockServiceImpl) Clock(ctx context.Context, req timeclock.PinClockRequest) (timeclock.ClockResponse, error) {
	employees, err := s.userRepo.FindAllByRole(ctx, user.RoleEmployee)
	if err != nil {
		return timeclock.ClockResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	var matched *user.User
	for i := range employees {
		if bcrypt.CompareHashAndPassword([]byte(employees[i].PINHash), []byte(req.PIN)) == nil {
			matched = &employees[i]
			break
		}
	}

	if matched == nil {
		// The failure entry is written outside any transaction: it
		// must survive even though no clock log exists.
		s.recorder.RecordFailure(ctx, nil, audit.ActionPinLoginFailure, "Failed PIN login attempt. No matching user found.")
		return timeclock.ClockResponse{}, timeclock.ErrInvalidPIN
	}

	leave := s.purgeGate.Enter()
	defer leave()

	unlock := s.userLocks.Lock(matched.ID)
	defer unlock()

	var resp timeclock.ClockResponse
	err = s.txm.WithinTransaction(ctx, func(txCtx context.Context) error {
		lastLog, err := s.clockLogRepo.LatestForUser(txCtx, matched.ID)
		if err != nil {
			return err
		}

		newLog, message, hoursWorked := s.resolve(*matched, lastLog)

		if newLog, err = s.clockLogRepo.Create(txCtx, newLog); err != nil {
			return err
		}

		tag := audit.ActionClockInSuccess
		details := "User clocked in via PIN-only kiosk."
		if newLog.Action == timeclock.ActionClockOut {
			tag = audit.ActionClockOutSuccess
			details = fmt.Sprintf("User clocked out. Hours worked: %.2f", hoursWorked)
		}
		if err := s.recorder.Record(txCtx, &matched.ID, tag, audit.StatusSuccess, details); err != nil {
			return err
		}

		resp = timeclock.ClockResponse{
			Message:                message,
			UserEmail:              matched.Email,
			Action:                 newLog.Action,
			Timestamp:              newLog.Timestamp,
			SessionID:              newLog.SessionID,
			HoursWorkedThisSession: hoursWorked,
		}
		return nil
	})
	if err != nil {
		return timeclock.ClockResponse{}, err
	}

	return resp, nil
}

// resolve decides the next action from the employee's latest log. No
// log, or a CLOCK_OUT, means the employee is out and clocks in with a
// fresh session; a CLOCK_IN means they clock out of that session.
func (s *ClockServiceImpl) resolve(matched user.User, lastLog *timeclock.ClockLog) (timeclock.ClockLog, string, float64) {
	name := user.DisplayName(matched.Email)

	newLog := timeclock.ClockLog{
		UserID:    matched.ID,
		Timestamp: s.now().UTC(),
	}

	if lastLog == nil || lastLog.Action == timeclock.ActionClockOut {
		newLog.Action = timeclock.ActionClockIn
		newLog.SessionID = uuid.NewString()
		return newLog, fmt.Sprintf("Welcome, %s! Clock-in successful.", name), 0
	}

	newLog.Action = timeclock.ActionClockOut
	newLog.SessionID = lastLog.SessionID

	// Whole-minute resolution, expressed in fractional hours.
	totalMinutes := int64(newLog.Timestamp.Sub(lastLog.Timestamp).Minutes())
	hoursWorked := float64(totalMinutes) / 60.0
	newLog.DurationHours = &hoursWorked

	return newLog, fmt.Sprintf("Goodbye, %s! Clock-out successful.", name), hoursWorked
}

// UserStatuses implements timeclock.ClockService.
func (s *ClockServiceImpl) UserStatuses(ctx context.Context) ([]user.UserStatusResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	statuses := make([]user.UserStatusResponse, 0, len(users))
	for _, u := range users {
		status := user.UserStatusResponse{
			ID:     u.ID,
			Email:  u.Email,
			Role:   u.Role,
			Status: "Never Clocked In",
		}

		lastLog, err := s.clockLogRepo.LatestForUser(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest clock log: %w", err)
		}
		if lastLog != nil {
			if lastLog.Action == timeclock.ActionClockIn {
				status.Status = "Clocked In"
			} else {
				status.Status = "Clocked Out"
			}
			ts := lastLog.Timestamp
			status.LastActionTimestamp = &ts
		}

		statuses = append(statuses, status)
	}

	return statuses, nil
}

// Purge implements timeclock.ClockService. It holds the gate
// exclusively, so it waits out in-flight clock commits and blocks new
// ones for its duration. The audit entry recording the reset commits
// with the delete and survives it.
func (s *ClockServiceImpl) Purge(ctx context.Context) error {
	release := s.purgeGate.Exclusive()
	defer release()

	return s.txm.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.clockLogRepo.DeleteAll(txCtx); err != nil {
			return err
		}
		return s.recorder.Record(txCtx, nil, audit.ActionWeeklyReset, audit.StatusSuccess, "Timesheet data cleared for the new week.")
	})
}
