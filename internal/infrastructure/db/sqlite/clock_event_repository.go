package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/99minutos/timeclock/internal/core/domain"
	"github.com/99minutos/timeclock/internal/core/ports"
)

// ClockEventRepository writes the clock transition audit trail.
type ClockEventRepository struct {
	db *sql.DB
}

var _ ports.ClockEventRepository = (*ClockEventRepository)(nil)

func NewClockEventRepository(db *sql.DB) *ClockEventRepository {
	return &ClockEventRepository{db: db}
}

func (r *ClockEventRepository) InsertEvent(ctx context.Context, e *domain.ClockEvent) error {
	query := `INSERT INTO clock_events (user_id, action, at, request_id, recorded_at)
		VALUES (?, ?, ?, ?, ?)`
	var requestID any
	if e.RequestID != "" {
		requestID = e.RequestID
	}
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		e.UserID,
		string(e.Action),
		formatTime(e.At),
		requestID,
		formatTime(time.Now()),
	)
	if err != nil {
		return storageErr("insert clock event", err)
	}
	return nil
}
