package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/timeclock/internal/api/middleware"
)

// ctxUserID extracts the caller identity injected by the Auth middleware. An
// empty value means the route was mounted without Auth, which is a wiring
// bug, so it is reported as 401 rather than trusted.
func ctxUserID(c echo.Context) (string, error) {
	userID, _ := c.Get(middleware.UserIDKey).(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, nil
}

// bindAndValidate binds the request into req and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
