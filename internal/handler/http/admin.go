package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shiftlog/timeclock-backend-go/internal/domain/timeclock"
	"github.com/shiftlog/timeclock-backend-go/internal/domain/user"
	"github.com/shiftlog/timeclock-backend-go/internal/handler/http/response"
	"github.com/shiftlog/timeclock-backend-go/internal/pkg/validator"
	adminService "github.com/shiftlog/timeclock-backend-go/internal/service/admin"
	reportService "github.com/shiftlog/timeclock-backend-go/internal/service/report"
)

type AdminHandler struct {
	adminService  adminService.AdminService
	clockService  timeclock.ClockService
	reportService reportService.ReportService
}

func NewAdminHandler(
	adminService adminService.AdminService,
	clockService timeclock.ClockService,
	reportService reportService.ReportService,
) *AdminHandler {
	return &AdminHandler{
		adminService:  adminService,
		clockService:  clockService,
		reportService: reportService,
	}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListUsers(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, users)
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req user.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	created, err := h.adminService.CreateUser(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "User created successfully", created)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Invalid user ID", nil)
		return
	}

	if err := h.adminService.DeleteUser(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "User deleted successfully", nil)
}

func (h *AdminHandler) ResetUserPIN(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Invalid user ID", nil)
		return
	}

	var req user.ResetPINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.adminService.ResetUserPIN(r.Context(), id, req.NewPIN); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "PIN reset successfully", nil)
}

func (h *AdminHandler) UserStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.clockService.UserStatuses(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, statuses)
}

// WeeklyTimesheets reports per-employee hours for the week starting at
// week_start (YYYY-MM-DD). Without the parameter it defaults to the
// current Monday-anchored week.
func (h *AdminHandler) WeeklyTimesheets(w http.ResponseWriter, r *http.Request) {
	weekStart, _, err := h.weekWindowFromQuery(r)
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}

	timesheets, err := h.reportService.WeeklyTimesheets(r.Context(), weekStart, reportService.DefaultWindowDays)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, timesheets)
}

func (h *AdminHandler) ExportTimesheets(w http.ResponseWriter, r *http.Request) {
	weekStart, weekEnd, err := h.weekWindowFromQuery(r)
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}

	filename := fmt.Sprintf("timesheet_%s.csv", weekStart.Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := h.reportService.ExportClockLogsCSV(r.Context(), w, weekStart, weekEnd); err != nil {
		// Headers are already written; nothing to do but abort the
		// stream.
		return
	}
}

func (h *AdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	entries, total, err := h.reportService.AuditLogs(r.Context(), page, limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	response.SuccessWithMeta(w, entries, &response.Meta{
		Page:       page,
		Limit:      limit,
		TotalItems: total,
		TotalPages: totalPages,
	})
}

func (h *AdminHandler) ExportAuditLogs(w http.ResponseWriter, r *http.Request) {
	var start, end *time.Time
	if raw := r.URL.Query().Get("week_start"); raw != "" {
		parsed, ok := validator.IsValidDate(raw)
		if !ok {
			response.BadRequest(w, "week_start must be formatted as YYYY-MM-DD", nil)
			return
		}
		windowEnd := parsed.AddDate(0, 0, reportService.DefaultWindowDays)
		start, end = &parsed, &windowEnd
	}

	filename := fmt.Sprintf("audit_logs_%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := h.reportService.ExportAuditLogsCSV(r.Context(), w, start, end); err != nil {
		return
	}
}

func (h *AdminHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.reportService.Notifications(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, notifications)
}

// Purge clears all clock logs to start a new reporting period. The
// same operation the weekly scheduler runs, exposed for manual resets.
func (h *AdminHandler) Purge(w http.ResponseWriter, r *http.Request) {
	if err := h.clockService.Purge(r.Context()); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Timesheet data cleared for the new week.", nil)
}

func (h *AdminHandler) weekWindowFromQuery(r *http.Request) (start, end time.Time, err error) {
	raw := r.URL.Query().Get("week_start")
	if raw == "" {
		start, end = reportService.WeekWindow(time.Now())
		return start, end, nil
	}

	start, ok := validator.IsValidDate(raw)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("week_start must be formatted as YYYY-MM-DD")
	}
	return start, start.AddDate(0, 0, reportService.DefaultWindowDays), nil
}
