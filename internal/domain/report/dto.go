package report

// WeeklyTimesheet summarizes one employee's hours over a reporting
// window. DailyHours holds exactly one "YYYY-MM-DD" key per day of the
// window, zero-filled; TotalHours is the sum of those values, never
// recomputed independently.
type WeeklyTimesheet struct {
	UserID     string             `json:"user_id"`
	UserEmail  string             `json:"user_email"`
	DailyHours map[string]float64 `json:"daily_hours"`
	TotalHours float64            `json:"total_hours"`
}
