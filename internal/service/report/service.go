package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/shiftlog/timeclock-backend-go/internal/domain/audit"
	"github.com/shiftlog/timeclock-backend-go/internal/domain/report"
	"github.com/shiftlog/timeclock-backend-go/internal/domain/timeclock"
	"github.com/shiftlog/timeclock-backend-go/internal/domain/user"
	auditService "github.com/shiftlog/timeclock-backend-go/internal/service/audit"
)

// DefaultWindowDays is the reporting window length: one calendar week.
const DefaultWindowDays = 7

// ReportService aggregates the persisted event stream for admin
// reporting and export.
type ReportService interface {
	// WeeklyTimesheets produces per-employee daily and total hours for
	// the window [weekStart, weekStart+windowDays). Only employees
	// with at least one event in range appear; each carries exactly
	// windowDays day entries, zero-filled.
	WeeklyTimesheets(ctx context.Context, weekStart time.Time, windowDays int) ([]report.WeeklyTimesheet, error)

	// ExportClockLogsCSV streams clock logs in [start, end) as CSV.
	ExportClockLogsCSV(ctx context.Context, w io.Writer, start, end time.Time) error

	// ExportAuditLogsCSV streams audit entries as CSV, optionally
	// bounded to [start, end).
	ExportAuditLogsCSV(ctx context.Context, w io.Writer, start, end *time.Time) error

	// AuditLogs lists audit entries newest first, resolved against the
	// user store.
	AuditLogs(ctx context.Context, page, limit int) ([]audit.EntryResponse, int64, error)

	// Notifications renders the most recent audit entries as a
	// humanized activity feed.
	Notifications(ctx context.Context) ([]audit.NotificationResponse, error)
}

type ReportServiceImpl struct {
	clockLogRepo timeclock.ClockLogRepository
	auditRepo    audit.AuditRepository
	userRepo     user.UserRepository
	recorder     auditService.Recorder
}

func NewReportService(
	clockLogRepo timeclock.ClockLogRepository,
	auditRepo audit.AuditRepository,
	userRepo user.UserRepository,
	recorder auditService.Recorder,
) ReportService {
	return &ReportServiceImpl{
		clockLogRepo: clockLogRepo,
		auditRepo:    auditRepo,
		userRepo:     userRepo,
		recorder:     recorder,
	}
}

// WeekWindow returns the Monday-anchored week containing t, in UTC.
func WeekWindow(t time.Time) (start, end time.Time) {
	t = t.UTC()
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -daysSinceMonday)
	return start, start.AddDate(0, 0, DefaultWindowDays)
}

// WeeklyTimesheets implements ReportService.
func (s *ReportServiceImpl) WeeklyTimesheets(ctx context.Context, weekStart time.Time, windowDays int) ([]report.WeeklyTimesheet, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	weekStart = weekStart.UTC().Truncate(24 * time.Hour)
	windowEnd := weekStart.AddDate(0, 0, windowDays)

	logs, err := s.clockLogRepo.FindInRange(ctx, weekStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list clock logs: %w", err)
	}

	// Hours accumulate into the UTC calendar day of the CLOCK_OUT
	// event; everyone with any event in range gets a row, even if all
	// their hours are zero.
	byUser := make(map[string]map[string]float64)
	for _, log := range logs {
		days, ok := byUser[log.UserID]
		if !ok {
			days = make(map[string]float64, windowDays)
			for i := 0; i < windowDays; i++ {
				days[weekStart.AddDate(0, 0, i).Format("2006-01-02")] = 0
			}
			byUser[log.UserID] = days
		}
		if log.Action == timeclock.ActionClockOut && log.DurationHours != nil {
			days[log.Timestamp.UTC().Format("2006-01-02")] += *log.DurationHours
		}
	}

	userIDs := make([]string, 0, len(byUser))
	for id := range byUser {
		userIDs = append(userIDs, id)
	}
	users, err := s.userRepo.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve users: %w", err)
	}

	timesheets := make([]report.WeeklyTimesheet, 0, len(byUser))
	for id, days := range byUser {
		total := 0.0
		for _, h := range days {
			total += h
		}
		timesheets = append(timesheets, report.WeeklyTimesheet{
			UserID:     id,
			UserEmail:  s.emailFor(users, id),
			DailyHours: days,
			TotalHours: total,
		})
	}

	sort.Slice(timesheets, func(i, j int) bool {
		return timesheets[i].UserEmail < timesheets[j].UserEmail
	})

	return timesheets, nil
}

// ExportClockLogsCSV implements ReportService.
func (s *ReportServiceImpl) ExportClockLogsCSV(ctx context.Context, w io.Writer, start, end time.Time) error {
	logs, err := s.clockLogRepo.FindInRange(ctx, start, end)
	if err != nil {
		s.recorder.RecordFailure(ctx, nil, audit.ActionTimesheetExport, "Error exporting timesheet: "+err.Error())
		return fmt.Errorf("failed to list clock logs: %w", err)
	}

	userIDs := make([]string, 0, len(logs))
	seen := make(map[string]bool)
	for _, log := range logs {
		if !seen[log.UserID] {
			seen[log.UserID] = true
			userIDs = append(userIDs, log.UserID)
		}
	}
	users, err := s.userRepo.FindByIDs(ctx, userIDs)
	if err != nil {
		return fmt.Errorf("failed to resolve users: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"LogID", "UserID", "UserEmail", "Action", "Timestamp (UTC)", "SessionID", "DurationHours"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, log := range logs {
		duration := ""
		if log.DurationHours != nil {
			duration = strconv.FormatFloat(*log.DurationHours, 'f', 2, 64)
		}
		record := []string{
			log.ID,
			log.UserID,
			s.emailFor(users, log.UserID),
			string(log.Action),
			log.Timestamp.UTC().Format(time.RFC3339),
			log.SessionID,
			duration,
		}
		if err := cw.Write(record); err != nil {
			s.recorder.RecordFailure(ctx, nil, audit.ActionTimesheetExport, "Error exporting timesheet: "+err.Error())
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		s.recorder.RecordFailure(ctx, nil, audit.ActionTimesheetExport, "Error exporting timesheet: "+err.Error())
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	if err := s.recorder.Record(ctx, nil, audit.ActionTimesheetExport, audit.StatusSuccess, "Timesheet exported."); err != nil {
		return fmt.Errorf("failed to record export: %w", err)
	}
	return nil
}

// ExportAuditLogsCSV implements ReportService.
func (s *ReportServiceImpl) ExportAuditLogsCSV(ctx context.Context, w io.Writer, start, end *time.Time) error {
	var entries []audit.Entry
	var err error
	if start != nil && end != nil {
		entries, err = s.auditRepo.FindInRange(ctx, *start, *end)
	} else {
		entries, err = s.auditRepo.FindAll(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to list audit entries: %w", err)
	}

	userIDs := make([]string, 0, len(entries))
	seen := make(map[string]bool)
	for _, e := range entries {
		if e.UserID != nil && !seen[*e.UserID] {
			seen[*e.UserID] = true
			userIDs = append(userIDs, *e.UserID)
		}
	}
	users, err := s.userRepo.FindByIDs(ctx, userIDs)
	if err != nil {
		return fmt.Errorf("failed to resolve users: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"LogID", "Timestamp (UTC)", "UserEmail", "Action", "Status", "Details"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, e := range entries {
		record := []string{
			e.ID,
			e.Timestamp.UTC().Format(time.RFC3339),
			s.actorEmail(users, e.UserID),
			e.Action,
			string(e.Status),
			e.Details,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	if err := s.recorder.Record(ctx, nil, audit.ActionAuditExport, audit.StatusSuccess, "Audit logs exported."); err != nil {
		return fmt.Errorf("failed to record export: %w", err)
	}
	return nil
}

// AuditLogs implements ReportService.
func (s *ReportServiceImpl) AuditLogs(ctx context.Context, page, limit int) ([]audit.EntryResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	entries, total, err := s.auditRepo.FindRecent(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit entries: %w", err)
	}

	users, err := s.resolveActors(ctx, entries)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]audit.EntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, audit.EntryResponse{
			ID:        e.ID,
			Timestamp: e.Timestamp,
			UserEmail: s.actorEmail(users, e.UserID),
			Action:    e.Action,
			Status:    e.Status,
			Details:   e.Details,
		})
	}

	return responses, total, nil
}

// Notifications implements ReportService.
func (s *ReportServiceImpl) Notifications(ctx context.Context) ([]audit.NotificationResponse, error) {
	entries, _, err := s.auditRepo.FindRecent(ctx, 0, 20)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	users, err := s.resolveActors(ctx, entries)
	if err != nil {
		return nil, err
	}

	notifications := make([]audit.NotificationResponse, 0, len(entries))
	for _, e := range entries {
		notifications = append(notifications, audit.NotificationResponse{
			ID:        e.ID,
			Message:   s.notificationMessage(e, users),
			Timestamp: e.Timestamp,
		})
	}
	return notifications, nil
}

func (s *ReportServiceImpl) notificationMessage(e audit.Entry, users map[string]user.User) string {
	actorName := "System"
	if e.UserID != nil {
		if u, ok := users[*e.UserID]; ok {
			actorName = user.DisplayName(u.Email)
		} else {
			actorName = "An unknown user"
		}
	}

	switch e.Action {
	case audit.ActionClockInSuccess:
		return actorName + " clocked in."
	case audit.ActionClockOutSuccess:
		return actorName + " clocked out."
	case audit.ActionAdminLoginOK:
		return actorName + " logged into the admin dashboard."
	}

	if e.Details != "" {
		return e.Details
	}
	return "An unspecified action occurred."
}

func (s *ReportServiceImpl) resolveActors(ctx context.Context, entries []audit.Entry) (map[string]user.User, error) {
	userIDs := make([]string, 0, len(entries))
	seen := make(map[string]bool)
	for _, e := range entries {
		if e.UserID != nil && !seen[*e.UserID] {
			seen[*e.UserID] = true
			userIDs = append(userIDs, *e.UserID)
		}
	}
	users, err := s.userRepo.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve users: %w", err)
	}
	return users, nil
}

func (s *ReportServiceImpl) emailFor(users map[string]user.User, id string) string {
	if u, ok := users[id]; ok {
		return u.Email
	}
	return "Unknown User (ID: " + id + ")"
}

func (s *ReportServiceImpl) actorEmail(users map[string]user.User, id *string) string {
	if id == nil {
		return "System"
	}
	if u, ok := users[*id]; ok {
		return u.Email
	}
	return "Unknown User"
}
