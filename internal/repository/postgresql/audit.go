package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shiftlog/timeclock-backend-go/internal/domain/audit"
	"github.com/shiftlog/timeclock-backend-go/internal/pkg/database"
)

type auditRepository struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) audit.AuditRepository {
	return &auditRepository{db: db}
}

const auditColumns = "id, user_id, action, status, timestamp, details"

func scanAuditEntry(row pgx.Row) (audit.Entry, error) {
	var e audit.Entry
	err := row.Scan(&e.ID, &e.UserID, &e.Action, &e.Status, &e.Timestamp, &e.Details)
	return e, err
}

// Create implements audit.AuditRepository. Entries are append-only:
// there is no update or delete path in this repository.
func (r *auditRepository) Create(ctx context.Context, entry audit.Entry) (audit.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO audit_logs (user_id, action, status, timestamp, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := q.QueryRow(ctx, query,
		entry.UserID,
		entry.Action,
		entry.Status,
		entry.Timestamp,
		entry.Details,
	).Scan(&entry.ID)

	if err != nil {
		return audit.Entry{}, fmt.Errorf("failed to create audit entry: %w", err)
	}

	return entry, nil
}

// FindRecent implements audit.AuditRepository.
func (r *auditRepository) FindRecent(ctx context.Context, offset, limit int) ([]audit.Entry, int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	query := `
		SELECT ` + auditColumns + `
		FROM audit_logs
		ORDER BY timestamp DESC
		OFFSET $1 LIMIT $2
	`

	rows, err := q.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recent audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate audit entries: %w", err)
	}

	return entries, total, nil
}

// FindInRange implements audit.AuditRepository.
func (r *auditRepository) FindInRange(ctx context.Context, start, end time.Time) ([]audit.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + auditColumns + `
		FROM audit_logs
		WHERE timestamp >= $1 AND timestamp < $2
		ORDER BY timestamp
	`

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries in range: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}

	return entries, nil
}

// FindAll implements audit.AuditRepository.
func (r *auditRepository) FindAll(ctx context.Context) ([]audit.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + auditColumns + ` FROM audit_logs ORDER BY timestamp`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}

	return entries, nil
}
