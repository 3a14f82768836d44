package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/timeclock/internal/core/ports"
)

// HoursHandler exposes the hour aggregation queries.
type HoursHandler struct {
	service ports.HoursService
	now     func() time.Time
}

func NewHoursHandler(service ports.HoursService) *HoursHandler {
	return &HoursHandler{service: service, now: time.Now}
}

// Hours handles GET /v1/hours.
//
// @Summary      Clocked hours
// @Description  Rounded hours worked today, this ISO week and this month.
// @Tags         hours
// @Produce      json
// @Security     BearerAuth
// @Param        as_of  query     string  false  "Reference instant (RFC 3339), defaults to now"
// @Success      200    {object}  hoursResponse
// @Failure      400    {object}  errorResponse
// @Failure      401    {object}  errorResponse
// @Router       /v1/hours [get]
func (h *HoursHandler) Hours(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var q hoursQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}
	asOf, err := parseOptionalTime(q.AsOf)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "as_of must be an RFC 3339 timestamp")
	}
	if asOf.IsZero() {
		asOf = h.now()
	}

	hours, err := h.service.ClockedHours(c.Request().Context(), userID, asOf)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toHoursResponse(hours, asOf))
}

// Shifts handles GET /v1/shifts.
//
// @Summary      List shifts
// @Description  The caller's shifts starting in [from, to). Defaults to the current month.
// @Tags         hours
// @Produce      json
// @Security     BearerAuth
// @Param        from  query     string  false  "Range start (RFC 3339, inclusive)"
// @Param        to    query     string  false  "Range end (RFC 3339, exclusive)"
// @Success      200   {object}  shiftsResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/shifts [get]
func (h *HoursHandler) Shifts(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var q shiftsQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}
	from, err := parseOptionalTime(q.From)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "from must be an RFC 3339 timestamp")
	}
	to, err := parseOptionalTime(q.To)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "to must be an RFC 3339 timestamp")
	}

	res, err := h.service.ListShifts(c.Request().Context(), ports.ListShiftsInput{
		UserID: userID,
		From:   from,
		To:     to,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toShiftsResponse(res))
}
