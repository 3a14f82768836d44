package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/timeclock/internal/core/domain"
	"github.com/99minutos/timeclock/internal/core/ports"
)

const dayKeyLayout = "2006-01-02"

// HoursService aggregates a user's shift ledger into rounded hour totals.
// All calendar windows are computed in loc.
type HoursService struct {
	ledger   ports.ShiftLedger
	statuses ports.ClockStatusRepository
	cache    ports.HoursCache
	loc      *time.Location
	now      func() time.Time
	log      zerolog.Logger
}

// NewHoursService returns an HoursService. cache may be nil; cached totals
// are keyed by the user's clock status version, read from statuses.
func NewHoursService(
	ledger ports.ShiftLedger,
	statuses ports.ClockStatusRepository,
	cache ports.HoursCache,
	loc *time.Location,
	log zerolog.Logger,
) *HoursService {
	if loc == nil {
		loc = time.UTC
	}
	return &HoursService{ledger: ledger, statuses: statuses, cache: cache, loc: loc, now: time.Now, log: log}
}

// ClockedHours returns the today / current week / current month totals as of
// asOf. Each shift is rounded to whole hours on its own before summing.
func (s *HoursService) ClockedHours(ctx context.Context, userID string, asOf time.Time) (domain.ClockedHours, error) {
	ws := domain.WindowsAt(asOf, s.loc)
	day := ws.Day.Start.Format(dayKeyLayout)

	field, cacheable := s.cacheField(ctx, userID, day)
	if cacheable {
		cached, ok, err := s.cache.Get(ctx, userID, field)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("hours cache read failed, computing")
		} else if ok {
			return *cached, nil
		}
	}

	span := ws.Span()
	records, err := s.ledger.QueryByDateRange(ctx, userID, span.Start, span.End)
	if err != nil {
		return domain.ClockedHours{}, fmt.Errorf("clocked hours: %w", err)
	}

	hours := domain.SumHours(records, ws)

	if cacheable {
		if err := s.cache.Set(ctx, userID, field, hours); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("hours cache write failed")
		}
	}

	s.log.Debug().
		Str("user_id", userID).
		Str("day", day).
		Int("records", len(records)).
		Int64("today", hours.Today).
		Int64("week", hours.CurrentWeek).
		Int64("month", hours.CurrentMonth).
		Msg("clocked hours computed")

	return hours, nil
}

// cacheField names the cache entry for the reference day at the user's current
// status version. A clock-out bumps the version in the same transaction that
// appends the shift, so totals computed before it land under an old field and
// are never served afterwards.
func (s *HoursService) cacheField(ctx context.Context, userID, day string) (string, bool) {
	if s.cache == nil || s.statuses == nil {
		return "", false
	}
	status, err := s.statuses.Get(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("clock status read failed, bypassing hours cache")
		return "", false
	}
	return fmt.Sprintf("%s@%d", day, status.Version), true
}

// ListShifts returns the user's own shifts in [From, To), oldest first.
func (s *HoursService) ListShifts(ctx context.Context, in ports.ListShiftsInput) (*ports.ListShiftsResult, error) {
	window := domain.MonthToDate(s.now(), s.loc)
	if !in.From.IsZero() {
		window.Start = in.From
	}
	if !in.To.IsZero() {
		window.End = in.To
	}
	if !window.Start.Before(window.End) {
		return nil, fmt.Errorf("list shifts: %w", domain.ErrInvalidRange)
	}

	records, err := s.ledger.QueryByDateRange(ctx, in.UserID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Start.Before(records[j].Start) })

	var total int64
	for _, r := range records {
		total += r.RoundedHours()
	}

	return &ports.ListShiftsResult{
		Items: records,
		From:  window.Start,
		To:    window.End,
		Hours: total,
	}, nil
}
