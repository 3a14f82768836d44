package domain

import "errors"

var (
	ErrAlreadyClockedIn = errors.New("you are already clocked in")
	ErrNotClockedIn     = errors.New("you are not currently clocked in")
	ErrNoActiveSession  = errors.New("no active session")

	// ErrClockInTooSoon rejects a clock-in that does not come after the
	// previous one, e.g. clocking in, out and in again within one second.
	ErrClockInTooSoon = errors.New("clock-in must be later than the previous clock-in")

	ErrProfileNotFound = errors.New("clock profile not found")
	ErrProfileExists   = errors.New("clock profile already exists")

	// ErrVersionConflict is returned by a status save whose expected version
	// no longer matches the stored one.
	ErrVersionConflict = errors.New("clock status was modified concurrently")

	// ErrDataIntegrity marks an invariant violation in stored or captured data,
	// e.g. a clock-out instant that precedes its clock-in.
	ErrDataIntegrity = errors.New("data integrity fault")

	// ErrStorage wraps failures of the persistence layer.
	ErrStorage = errors.New("storage fault")
)

var ErrInvalidRange = errors.New("invalid time range")
