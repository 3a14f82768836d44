package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/99minutos/timeclock/internal/core/domain"
	"github.com/99minutos/timeclock/internal/core/ports"
)

// ClockStatusRepository keeps one row per user. Saves are conditional on the
// version column.
type ClockStatusRepository struct {
	db *sql.DB
}

var _ ports.ClockStatusRepository = (*ClockStatusRepository)(nil)

func NewClockStatusRepository(db *sql.DB) *ClockStatusRepository {
	return &ClockStatusRepository{db: db}
}

func (r *ClockStatusRepository) Create(ctx context.Context, s *domain.ClockStatus) error {
	query := `INSERT INTO clock_status (user_id, active, clocked_in, clocked_out, version, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		s.UserID,
		boolToInt(s.Active),
		nullableTime(s.ClockedIn),
		nullableTime(s.ClockedOut),
		s.Version,
		formatTime(s.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrProfileExists
		}
		return storageErr("insert clock status", err)
	}
	return nil
}

func (r *ClockStatusRepository) Get(ctx context.Context, userID string) (*domain.ClockStatus, error) {
	query := `SELECT user_id, active, clocked_in, clocked_out, version, updated_at
		FROM clock_status WHERE user_id = ?`

	var (
		s                     domain.ClockStatus
		active                int
		clockedIn, clockedOut sql.NullString
		updatedAt             string
	)
	err := conn(ctx, r.db).QueryRowContext(ctx, query, userID).
		Scan(&s.UserID, &active, &clockedIn, &clockedOut, &s.Version, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, storageErr("select clock status", err)
	}

	s.Active = active != 0
	if s.ClockedIn, err = parseNullableTime(clockedIn); err != nil {
		return nil, err
	}
	if s.ClockedOut, err = parseNullableTime(clockedOut); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save updates the row only while the stored version equals expectedVersion.
func (r *ClockStatusRepository) Save(ctx context.Context, s *domain.ClockStatus, expectedVersion int64) error {
	query := `UPDATE clock_status
		SET active = ?, clocked_in = ?, clocked_out = ?, updated_at = ?, version = ?
		WHERE user_id = ? AND version = ?`
	res, err := conn(ctx, r.db).ExecContext(ctx, query,
		boolToInt(s.Active),
		nullableTime(s.ClockedIn),
		nullableTime(s.ClockedOut),
		formatTime(s.UpdatedAt),
		expectedVersion+1,
		s.UserID,
		expectedVersion,
	)
	if err != nil {
		return storageErr("update clock status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("update clock status", err)
	}
	if n == 0 {
		return domain.ErrVersionConflict
	}
	s.Version = expectedVersion + 1
	return nil
}
