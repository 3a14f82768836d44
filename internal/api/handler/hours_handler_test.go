package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/99minutos/timeclock/internal/core/domain"
	"github.com/99minutos/timeclock/internal/core/ports"
)

func TestHoursHandler_Hours_DefaultsToNow(t *testing.T) {
	now := mustTime("2024-03-06T12:00:00Z")
	stub := &stubHoursService{
		hoursFn: func(ctx context.Context, userID string, asOf time.Time) (domain.ClockedHours, error) {
			if !asOf.Equal(now) {
				t.Fatalf("expected asOf=now, got %s", asOf)
			}
			return domain.ClockedHours{Today: 8, CurrentWeek: 16, CurrentMonth: 40}, nil
		},
	}
	handler := NewHoursHandler(stub)
	handler.now = func() time.Time { return now }

	c, rec := newTestContext(http.MethodGet, "/v1/hours", nil, "u1")
	if err := handler.Hours(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["today"] != float64(8) || resp["currentWeek"] != float64(16) || resp["currentMonth"] != float64(40) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestHoursHandler_Hours_AsOfQuery(t *testing.T) {
	want := mustTime("2024-02-29T23:00:00Z")
	stub := &stubHoursService{
		hoursFn: func(ctx context.Context, userID string, asOf time.Time) (domain.ClockedHours, error) {
			if !asOf.Equal(want) {
				t.Fatalf("expected asOf=%s, got %s", want, asOf)
			}
			return domain.ClockedHours{}, nil
		},
	}
	handler := NewHoursHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/v1/hours?as_of=2024-02-29T23:00:00Z", nil, "u1")
	if err := handler.Hours(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHoursHandler_Hours_BadAsOf(t *testing.T) {
	handler := NewHoursHandler(&stubHoursService{})

	c, _ := newTestContext(http.MethodGet, "/v1/hours?as_of=yesterday", nil, "u1")
	if code := httpCode(handler.Hours(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestHoursHandler_Shifts(t *testing.T) {
	from := mustTime("2024-03-01T00:00:00Z")
	to := mustTime("2024-03-08T00:00:00Z")
	stub := &stubHoursService{
		shiftsFn: func(ctx context.Context, in ports.ListShiftsInput) (*ports.ListShiftsResult, error) {
			if in.UserID != "u1" || !in.From.Equal(from) || !in.To.Equal(to) {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.ListShiftsResult{
				From:  from,
				To:    to,
				Hours: 3,
				Items: []domain.ShiftRecord{
					{ID: "a", UserID: "u1", Start: mustTime("2024-03-04T09:00:00Z"), DurationSeconds: 3 * 3600},
				},
			}, nil
		},
	}
	handler := NewHoursHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/v1/shifts?from=2024-03-01T00:00:00Z&to=2024-03-08T00:00:00Z", nil, "u1")
	if err := handler.Shifts(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp shiftsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Hours != 3 || len(resp.Items) != 1 || resp.Items[0].Hours != 3 {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestHoursHandler_Shifts_EmptyListIsArray(t *testing.T) {
	stub := &stubHoursService{
		shiftsFn: func(ctx context.Context, in ports.ListShiftsInput) (*ports.ListShiftsResult, error) {
			if !in.From.IsZero() || !in.To.IsZero() {
				t.Fatalf("expected open range, got %+v", in)
			}
			return &ports.ListShiftsResult{}, nil
		},
	}
	handler := NewHoursHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/v1/shifts", nil, "u1")
	if err := handler.Shifts(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if items, ok := resp["items"].([]any); !ok || len(items) != 0 {
		t.Fatalf("expected empty items array, got %v", resp["items"])
	}
}

func TestHoursHandler_Shifts_InvalidRange(t *testing.T) {
	stub := &stubHoursService{
		shiftsFn: func(ctx context.Context, in ports.ListShiftsInput) (*ports.ListShiftsResult, error) {
			return nil, domain.ErrInvalidRange
		},
	}
	handler := NewHoursHandler(stub)

	c, _ := newTestContext(http.MethodGet, "/v1/shifts?from=2024-03-08T00:00:00Z&to=2024-03-01T00:00:00Z", nil, "u1")
	if err := handler.Shifts(c); !errors.Is(err, domain.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}
