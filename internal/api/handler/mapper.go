package handler

import (
	"time"

	"github.com/99minutos/timeclock/internal/core/domain"
	"github.com/99minutos/timeclock/internal/core/ports"
)

// --- Domain → Response ---

func toUserResponse(u *domain.User) *userResponse {
	if u == nil {
		return nil
	}
	return &userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func toClockView(s *domain.ClockStatus) *clockView {
	if s == nil {
		return nil
	}
	return &clockView{
		Active:     s.Active,
		ClockedIn:  s.ClockedIn,
		ClockedOut: s.ClockedOut,
	}
}

func toShiftView(r domain.ShiftRecord) shiftView {
	return shiftView{
		ID:              r.ID,
		Start:           r.Start,
		End:             r.Start.Add(time.Duration(r.DurationSeconds) * time.Second),
		DurationSeconds: r.DurationSeconds,
		Hours:           r.RoundedHours(),
	}
}

func toClockResponse(res *ports.ClockResult) clockResponse {
	out := clockResponse{Clock: toClockView(res.Status)}
	if res.Shift != nil {
		sv := toShiftView(*res.Shift)
		out.Shift = &sv
	}
	return out
}

func toHoursResponse(h domain.ClockedHours, asOf time.Time) hoursResponse {
	return hoursResponse{
		Today:        h.Today,
		CurrentWeek:  h.CurrentWeek,
		CurrentMonth: h.CurrentMonth,
		AsOf:         asOf,
	}
}

func toShiftsResponse(res *ports.ListShiftsResult) shiftsResponse {
	items := make([]shiftView, 0, len(res.Items))
	for _, r := range res.Items {
		items = append(items, toShiftView(r))
	}
	return shiftsResponse{
		From:  res.From,
		To:    res.To,
		Hours: res.Hours,
		Items: items,
	}
}

// --- Query → time ---

// parseOptionalTime parses an RFC 3339 value already checked by the validator.
// Empty input yields the zero time.
func parseOptionalTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
