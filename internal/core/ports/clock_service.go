package ports

import (
	"context"
	"time"

	"github.com/99minutos/timeclock/internal/core/domain"
)

// ClockResult is returned by the clock mutations. Shift is set only for a
// clock-out.
type ClockResult struct {
	Status *domain.ClockStatus
	Shift  *domain.ShiftRecord
}

// ClockCommander performs clock transitions. Implemented by the clock
// service and by the per-user dispatcher that fronts it.
type ClockCommander interface {
	ClockIn(ctx context.Context, userID string) (*ClockResult, error)
	ClockOut(ctx context.Context, userID string) (*ClockResult, error)
}

// ClockService defines the clock state machine use cases.
type ClockService interface {
	ClockCommander
	CreateUserProfile(ctx context.Context, userID string) (*domain.ClockStatus, error)
	// CurrentStatus returns domain.ErrNoActiveSession when the user is idle.
	CurrentStatus(ctx context.Context, userID string) (*domain.ClockStatus, error)
}

// ListShiftsInput bounds a shift listing. Zero From/To fall back to the
// month-to-date window of the current day.
type ListShiftsInput struct {
	UserID string
	From   time.Time
	To     time.Time
}

// ListShiftsResult is the caller's own shift history for a window.
type ListShiftsResult struct {
	Items []domain.ShiftRecord
	From  time.Time
	To    time.Time
	Hours int64
}

// HoursService defines the windowed aggregation queries.
type HoursService interface {
	ClockedHours(ctx context.Context, userID string, asOf time.Time) (domain.ClockedHours, error)
	ListShifts(ctx context.Context, input ListShiftsInput) (*ListShiftsResult, error)
}
