package domain

import (
	"math"
	"time"
)

// ShiftRecord is one completed work session. Records are immutable once
// appended to the ledger.
type ShiftRecord struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Start           time.Time `json:"start"`
	DurationSeconds int64     `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
}

// RoundedHours converts the duration to whole hours, rounding half to even.
// Shifts shorter than 30 minutes contribute zero.
func (r ShiftRecord) RoundedHours() int64 {
	return RoundHours(r.DurationSeconds)
}

// RoundHours is round-half-to-even of seconds/3600.
func RoundHours(seconds int64) int64 {
	return int64(math.RoundToEven(float64(seconds) / 3600))
}
