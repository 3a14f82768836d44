package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/timeclock/internal/api/middleware"
	"github.com/99minutos/timeclock/internal/core/domain"
	"github.com/99minutos/timeclock/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, username, password, email string) (*domain.User, error)
	loginFn    func(ctx context.Context, username, password string) (string, *domain.User, error)
	meFn       func(ctx context.Context, userID string) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, username, password, email string) (*domain.User, error) {
	return s.registerFn(ctx, username, password, email)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.meFn(ctx, userID)
}

type stubClockService struct {
	clockInFn  func(ctx context.Context, userID string) (*ports.ClockResult, error)
	clockOutFn func(ctx context.Context, userID string) (*ports.ClockResult, error)
	currentFn  func(ctx context.Context, userID string) (*domain.ClockStatus, error)
}

func (s *stubClockService) ClockIn(ctx context.Context, userID string) (*ports.ClockResult, error) {
	return s.clockInFn(ctx, userID)
}

func (s *stubClockService) ClockOut(ctx context.Context, userID string) (*ports.ClockResult, error) {
	return s.clockOutFn(ctx, userID)
}

func (s *stubClockService) CreateUserProfile(_ context.Context, userID string) (*domain.ClockStatus, error) {
	return domain.NewClockStatus(userID, time.Now()), nil
}

func (s *stubClockService) CurrentStatus(ctx context.Context, userID string) (*domain.ClockStatus, error) {
	return s.currentFn(ctx, userID)
}

type stubHoursService struct {
	hoursFn  func(ctx context.Context, userID string, asOf time.Time) (domain.ClockedHours, error)
	shiftsFn func(ctx context.Context, in ports.ListShiftsInput) (*ports.ListShiftsResult, error)
}

func (s *stubHoursService) ClockedHours(ctx context.Context, userID string, asOf time.Time) (domain.ClockedHours, error) {
	return s.hoursFn(ctx, userID, asOf)
}

func (s *stubHoursService) ListShifts(ctx context.Context, in ports.ListShiftsInput) (*ports.ListShiftsResult, error) {
	return s.shiftsFn(ctx, in)
}

// newTestContext builds an Echo context for a handler call. A non-empty
// userID stands in for the Auth middleware.
func newTestContext(method, target string, body io.Reader, userID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set(middleware.UserIDKey, userID)
	}
	return c, rec
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func httpCode(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return 0
}
