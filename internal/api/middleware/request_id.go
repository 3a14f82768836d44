package middleware

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/99minutos/timeclock/internal/core/ports"
)

// RequestID assigns or propagates X-Request-ID and copies it into the request
// context, where the clock audit trail reads it.
func RequestID() echo.MiddlewareFunc {
	return echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(ports.WithRequestID(req.Context(), id)))
		},
	})
}
