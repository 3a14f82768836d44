package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/timeclock/internal/core/domain"
	"github.com/99minutos/timeclock/internal/core/ports"
)

// ClockHandler exposes the clock state machine. Mutations go through
// commands, which in production is the per-user dispatcher.
type ClockHandler struct {
	commands ports.ClockCommander
	clocks   ports.ClockService
}

func NewClockHandler(commands ports.ClockCommander, clocks ports.ClockService) *ClockHandler {
	return &ClockHandler{commands: commands, clocks: clocks}
}

// ClockIn handles POST /v1/clock/in.
//
// @Summary      Clock in
// @Tags         clock
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  clockResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse  "already clocked in"
// @Router       /v1/clock/in [post]
func (h *ClockHandler) ClockIn(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	res, err := h.commands.ClockIn(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toClockResponse(res))
}

// ClockOut handles POST /v1/clock/out.
//
// @Summary      Clock out
// @Description  Closes the open shift and returns the recorded shift.
// @Tags         clock
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  clockResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse  "not clocked in"
// @Failure      500  {object}  errorResponse
// @Router       /v1/clock/out [post]
func (h *ClockHandler) ClockOut(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	res, err := h.commands.ClockOut(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toClockResponse(res))
}

// Current handles GET /v1/clock.
//
// @Summary      Current clock
// @Description  Returns the open clock, or {"clock": null} when not clocked in.
// @Tags         clock
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  clockResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/clock [get]
func (h *ClockHandler) Current(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	status, err := h.clocks.CurrentStatus(c.Request().Context(), userID)
	if errors.Is(err, domain.ErrNoActiveSession) {
		return c.JSON(http.StatusOK, clockResponse{})
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, clockResponse{Clock: toClockView(status)})
}
