package domain

import (
	"fmt"
	"time"
)

// ClockAction identifies a clock transition.
type ClockAction string

const (
	ActionClockIn  ClockAction = "clock_in"
	ActionClockOut ClockAction = "clock_out"
)

// ClockEvent is an audit entry for a successful clock transition.
type ClockEvent struct {
	UserID    string
	Action    ClockAction
	At        time.Time
	RequestID string
}

// ClockStatus is the per-user clock state. Active is true exactly when
// ClockedIn holds the start of an open shift.
type ClockStatus struct {
	UserID     string     `json:"user_id"`
	Active     bool       `json:"active"`
	ClockedIn  *time.Time `json:"clocked_in"`
	ClockedOut *time.Time `json:"clocked_out"`
	Version    int64      `json:"-"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewClockStatus returns the idle status every user starts with.
func NewClockStatus(userID string, now time.Time) *ClockStatus {
	return &ClockStatus{UserID: userID, UpdatedAt: now.UTC()}
}

// Clone returns a deep copy so callers can stage a transition without
// touching the stored value.
func (s *ClockStatus) Clone() *ClockStatus {
	c := *s
	if s.ClockedIn != nil {
		t := *s.ClockedIn
		c.ClockedIn = &t
	}
	if s.ClockedOut != nil {
		t := *s.ClockedOut
		c.ClockedOut = &t
	}
	return &c
}

// ClockIn opens a shift at the given instant. The instant must be later than
// the previous clock-in, since shifts are keyed by user and start.
func (s *ClockStatus) ClockIn(at time.Time) error {
	if s.Active {
		return ErrAlreadyClockedIn
	}
	in := CaptureInstant(at)
	if s.ClockedIn != nil && !in.After(*s.ClockedIn) {
		return ErrClockInTooSoon
	}
	s.Active = true
	s.ClockedIn = &in
	s.ClockedOut = nil
	s.UpdatedAt = in
	return nil
}

// ClockOut closes the open shift at the given instant and returns the shift
// record it produced. The status is left untouched on error.
func (s *ClockStatus) ClockOut(at time.Time, recordID string) (*ShiftRecord, error) {
	if !s.Active {
		return nil, ErrNotClockedIn
	}
	if s.ClockedIn == nil {
		return nil, fmt.Errorf("%w: active status for user %s has no clock-in instant", ErrDataIntegrity, s.UserID)
	}

	out := CaptureInstant(at)
	start := *s.ClockedIn
	seconds := int64(out.Sub(start) / time.Second)
	if seconds < 0 {
		return nil, fmt.Errorf("%w: clock-out %s precedes clock-in %s", ErrDataIntegrity,
			out.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	s.Active = false
	s.ClockedOut = &out
	s.UpdatedAt = out

	return &ShiftRecord{
		ID:              recordID,
		UserID:          s.UserID,
		Start:           start,
		DurationSeconds: seconds,
		CreatedAt:       out,
	}, nil
}

// CaptureInstant normalises a server-side instant: UTC, whole seconds.
func CaptureInstant(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
