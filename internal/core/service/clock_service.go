package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/timeclock/internal/core/domain"
	"github.com/99minutos/timeclock/internal/core/ports"
)

// maxSaveAttempts bounds how often a transition is re-evaluated after losing
// an optimistic version race.
const maxSaveAttempts = 3

// ClockService implements the clock-in/clock-out state machine on top of the
// status repository and the shift ledger.
type ClockService struct {
	statuses ports.ClockStatusRepository
	ledger   ports.ShiftLedger
	tx       ports.Transactor
	events   ports.ClockEventRepository
	cache    ports.HoursCache
	now      func() time.Time
	newID    func() string
	log      zerolog.Logger
}

// ClockOption customises a ClockService.
type ClockOption func(*ClockService)

// WithEventRepository enables the clock event audit trail.
func WithEventRepository(events ports.ClockEventRepository) ClockOption {
	return func(s *ClockService) { s.events = events }
}

// WithHoursCache makes clock-outs invalidate the user's cached hour totals.
func WithHoursCache(cache ports.HoursCache) ClockOption {
	return func(s *ClockService) { s.cache = cache }
}

// WithNow replaces the wall clock used to capture instants.
func WithNow(now func() time.Time) ClockOption {
	return func(s *ClockService) { s.now = now }
}

func NewClockService(
	statuses ports.ClockStatusRepository,
	ledger ports.ShiftLedger,
	tx ports.Transactor,
	log zerolog.Logger,
	opts ...ClockOption,
) *ClockService {
	s := &ClockService{
		statuses: statuses,
		ledger:   ledger,
		tx:       tx,
		now:      time.Now,
		newID:    uuid.NewString,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUserProfile initialises an idle clock status for a new user. A second
// call for the same user fails with domain.ErrProfileExists.
func (s *ClockService) CreateUserProfile(ctx context.Context, userID string) (*domain.ClockStatus, error) {
	status := domain.NewClockStatus(userID, domain.CaptureInstant(s.now()))
	if err := s.statuses.Create(ctx, status); err != nil {
		return nil, fmt.Errorf("create clock profile: %w", err)
	}
	s.log.Info().Str("user_id", userID).Msg("clock profile created")
	return status, nil
}

// ClockIn opens a shift for the user.
func (s *ClockService) ClockIn(ctx context.Context, userID string) (*ports.ClockResult, error) {
	var result *ports.ClockResult
	err := s.transition(ctx, func(ctx context.Context) error {
		current, err := s.statuses.Get(ctx, userID)
		if err != nil {
			return err
		}
		next := current.Clone()
		if err := next.ClockIn(s.now()); err != nil {
			return err
		}
		if err := s.statuses.Save(ctx, next, current.Version); err != nil {
			return err
		}
		result = &ports.ClockResult{Status: next}
		return nil
	})
	if err != nil {
		s.logFailure(err, userID, domain.ActionClockIn)
		return nil, fmt.Errorf("clock in: %w", err)
	}

	s.recordEvent(ctx, userID, domain.ActionClockIn, *result.Status.ClockedIn)
	s.log.Info().Str("user_id", userID).Time("clocked_in", *result.Status.ClockedIn).Msg("clocked in")
	return result, nil
}

// ClockOut closes the open shift and appends its record to the ledger. The
// status change and the append commit together or not at all.
func (s *ClockService) ClockOut(ctx context.Context, userID string) (*ports.ClockResult, error) {
	var result *ports.ClockResult
	err := s.transition(ctx, func(ctx context.Context) error {
		current, err := s.statuses.Get(ctx, userID)
		if err != nil {
			return err
		}
		next := current.Clone()
		shift, err := next.ClockOut(s.now(), s.newID())
		if err != nil {
			return err
		}
		if err := s.statuses.Save(ctx, next, current.Version); err != nil {
			return err
		}
		if err := s.ledger.Append(ctx, shift); err != nil {
			return err
		}
		result = &ports.ClockResult{Status: next, Shift: shift}
		return nil
	})
	if err != nil {
		s.logFailure(err, userID, domain.ActionClockOut)
		return nil, fmt.Errorf("clock out: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to invalidate hours cache")
		}
	}
	s.recordEvent(ctx, userID, domain.ActionClockOut, *result.Status.ClockedOut)
	s.log.Info().
		Str("user_id", userID).
		Str("shift_id", result.Shift.ID).
		Int64("duration_seconds", result.Shift.DurationSeconds).
		Msg("clocked out")
	return result, nil
}

// CurrentStatus returns the user's status while a shift is open.
func (s *ClockService) CurrentStatus(ctx context.Context, userID string) (*domain.ClockStatus, error) {
	status, err := s.statuses.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("current status: %w", err)
	}
	if !status.Active {
		return nil, domain.ErrNoActiveSession
	}
	return status, nil
}

// transition runs fn in a transaction, re-running it when the status save
// lost a version race so the state check sees the winner's write.
func (s *ClockService) transition(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		err = s.tx.WithinTx(ctx, fn)
		if !errors.Is(err, domain.ErrVersionConflict) {
			return err
		}
		s.log.Debug().Int("attempt", attempt).Msg("clock status version conflict, retrying")
	}
	return err
}

func (s *ClockService) recordEvent(ctx context.Context, userID string, action domain.ClockAction, at time.Time) {
	if s.events == nil {
		return
	}
	event := &domain.ClockEvent{
		UserID:    userID,
		Action:    action,
		At:        at,
		RequestID: ports.RequestID(ctx),
	}
	if err := s.events.InsertEvent(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Str("action", string(action)).Msg("failed to insert clock event")
	}
}

func (s *ClockService) logFailure(err error, userID string, action domain.ClockAction) {
	switch {
	case errors.Is(err, domain.ErrAlreadyClockedIn), errors.Is(err, domain.ErrNotClockedIn),
		errors.Is(err, domain.ErrClockInTooSoon):
		s.log.Debug().Err(err).Str("user_id", userID).Str("action", string(action)).Msg("clock transition rejected")
	case errors.Is(err, domain.ErrProfileNotFound):
		s.log.Warn().Err(err).Str("user_id", userID).Str("action", string(action)).Msg("clock transition for unknown profile")
	default:
		s.log.Error().Err(err).Str("user_id", userID).Str("action", string(action)).Msg("clock transition failed")
	}
}
