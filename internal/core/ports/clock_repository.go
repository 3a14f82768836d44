package ports

import (
	"context"
	"time"

	"github.com/99minutos/timeclock/internal/core/domain"
)

// Transactor runs fn inside a storage transaction. Repository calls made with
// the ctx passed to fn take part in that transaction; if fn returns an error
// nothing it wrote is kept.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ClockStatusRepository persists the one ClockStatus row per user.
type ClockStatusRepository interface {
	// Create inserts an initial status. Returns domain.ErrProfileExists when
	// the user already has one.
	Create(ctx context.Context, status *domain.ClockStatus) error
	// Get returns domain.ErrProfileNotFound for unknown users.
	Get(ctx context.Context, userID string) (*domain.ClockStatus, error)
	// Save writes status only if the stored version still equals
	// expectedVersion, bumping it by one. Returns domain.ErrVersionConflict
	// otherwise. On success status.Version holds the new version.
	Save(ctx context.Context, status *domain.ClockStatus, expectedVersion int64) error
}

// ShiftLedger is the append-only store of completed shifts.
type ShiftLedger interface {
	Append(ctx context.Context, record *domain.ShiftRecord) error
	// QueryByDateRange returns the user's records with from <= Start < to,
	// in no particular order.
	QueryByDateRange(ctx context.Context, userID string, from, to time.Time) ([]domain.ShiftRecord, error)
}

// ClockEventRepository persists the clock transition audit trail.
type ClockEventRepository interface {
	InsertEvent(ctx context.Context, event *domain.ClockEvent) error
}

// HoursCache stores computed hour totals per user. The field identifies the
// reference day and the status version the totals were computed at.
type HoursCache interface {
	Get(ctx context.Context, userID, field string) (*domain.ClockedHours, bool, error)
	Set(ctx context.Context, userID, field string, hours domain.ClockedHours) error
	// Invalidate drops every cached entry for the user.
	Invalidate(ctx context.Context, userID string) error
}
