package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/99minutos/timeclock/internal/core/domain"
	"github.com/99minutos/timeclock/internal/core/ports"
)

// ShiftLedger is the append-only shift_records table.
type ShiftLedger struct {
	db *sql.DB
}

var _ ports.ShiftLedger = (*ShiftLedger)(nil)

func NewShiftLedger(db *sql.DB) *ShiftLedger {
	return &ShiftLedger{db: db}
}

// Append inserts a completed shift. A second record for the same user and
// start instant is an integrity fault.
func (l *ShiftLedger) Append(ctx context.Context, r *domain.ShiftRecord) error {
	query := `INSERT INTO shift_records (id, user_id, start, duration_seconds, created_at)
		VALUES (?, ?, ?, ?, ?)`
	_, err := conn(ctx, l.db).ExecContext(ctx, query,
		r.ID,
		r.UserID,
		formatTime(r.Start),
		r.DurationSeconds,
		formatTime(r.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: shift for user %s starting %s already recorded",
				domain.ErrDataIntegrity, r.UserID, r.Start.Format(time.RFC3339))
		}
		return storageErr("insert shift", err)
	}
	return nil
}

// QueryByDateRange returns the user's shifts starting in [from, to).
func (l *ShiftLedger) QueryByDateRange(ctx context.Context, userID string, from, to time.Time) ([]domain.ShiftRecord, error) {
	query := `SELECT id, user_id, start, duration_seconds, created_at
		FROM shift_records
		WHERE user_id = ? AND start >= ? AND start < ?
		ORDER BY start`
	rows, err := conn(ctx, l.db).QueryContext(ctx, query, userID, formatBound(from), formatBound(to))
	if err != nil {
		return nil, storageErr("query shifts", err)
	}
	defer rows.Close()

	var records []domain.ShiftRecord
	for rows.Next() {
		var (
			rec              domain.ShiftRecord
			start, createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &start, &rec.DurationSeconds, &createdAt); err != nil {
			return nil, storageErr("scan shift", err)
		}
		if rec.Start, err = parseTime(start); err != nil {
			return nil, err
		}
		if rec.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate shifts", err)
	}
	return records, nil
}
