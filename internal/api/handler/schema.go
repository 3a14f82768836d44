package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email"    validate:"omitempty,email"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type authResponse struct {
	Token string        `json:"token,omitempty"`
	User  *userResponse `json:"user,omitempty"`
}

// --- Clock ---

type clockView struct {
	Active     bool       `json:"active"`
	ClockedIn  *time.Time `json:"clocked_in"`
	ClockedOut *time.Time `json:"clocked_out"`
}

type shiftView struct {
	ID              string    `json:"id"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationSeconds int64     `json:"duration_seconds"`
	Hours           int64     `json:"hours"`
}

// clockResponse wraps the current clock. Clock is null while the user is
// not clocked in.
type clockResponse struct {
	Clock *clockView `json:"clock"`
	Shift *shiftView `json:"shift,omitempty"`
}

// --- Hours ---

type hoursQuery struct {
	AsOf string `query:"as_of" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type hoursResponse struct {
	Today        int64     `json:"today"`
	CurrentWeek  int64     `json:"currentWeek"`
	CurrentMonth int64     `json:"currentMonth"`
	AsOf         time.Time `json:"as_of"`
}

type shiftsQuery struct {
	From string `query:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To   string `query:"to"   validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type shiftsResponse struct {
	From  time.Time   `json:"from"`
	To    time.Time   `json:"to"`
	Hours int64       `json:"hours"`
	Items []shiftView `json:"items"`
}
