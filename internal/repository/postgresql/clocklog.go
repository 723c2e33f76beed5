package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shiftlog/timeclock-backend-go/internal/domain/timeclock"
	"github.com/shiftlog/timeclock-backend-go/internal/pkg/database"
)

type clockLogRepository struct {
	db *database.DB
}

func NewClockLogRepository(db *database.DB) timeclock.ClockLogRepository {
	return &clockLogRepository{db: db}
}

const clockLogColumns = "id, user_id, action, timestamp, session_id, duration_hours, created_at"

func scanClockLog(row pgx.Row) (timeclock.ClockLog, error) {
	var log timeclock.ClockLog
	err := row.Scan(&log.ID, &log.UserID, &log.Action, &log.Timestamp, &log.SessionID, &log.DurationHours, &log.CreatedAt)
	return log, err
}

// Create implements timeclock.ClockLogRepository.
func (r *clockLogRepository) Create(ctx context.Context, newLog timeclock.ClockLog) (timeclock.ClockLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO clock_logs (user_id, action, timestamp, session_id, duration_hours)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		newLog.UserID,
		newLog.Action,
		newLog.Timestamp,
		newLog.SessionID,
		newLog.DurationHours,
	).Scan(&newLog.ID, &newLog.CreatedAt)

	if err != nil {
		return timeclock.ClockLog{}, fmt.Errorf("failed to create clock log: %w", err)
	}

	return newLog, nil
}

// LatestForUser implements timeclock.ClockLogRepository.
func (r *clockLogRepository) LatestForUser(ctx context.Context, userID string) (*timeclock.ClockLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + clockLogColumns + `
		FROM clock_logs
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT 1
	`

	log, err := scanClockLog(q.QueryRow(ctx, query, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // user has never clocked in
		}
		return nil, fmt.Errorf("failed to get latest clock log: %w", err)
	}

	return &log, nil
}

// FindInRange implements timeclock.ClockLogRepository.
func (r *clockLogRepository) FindInRange(ctx context.Context, start, end time.Time) ([]timeclock.ClockLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + clockLogColumns + `
		FROM clock_logs
		WHERE timestamp >= $1 AND timestamp < $2
		ORDER BY timestamp
	`

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list clock logs in range: %w", err)
	}
	defer rows.Close()

	var logs []timeclock.ClockLog
	for rows.Next() {
		log, err := scanClockLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clock log: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clock logs: %w", err)
	}

	return logs, nil
}

// DeleteAll implements timeclock.ClockLogRepository.
func (r *clockLogRepository) DeleteAll(ctx context.Context) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM clock_logs`); err != nil {
		return fmt.Errorf("failed to delete clock logs: %w", err)
	}

	return nil
}
