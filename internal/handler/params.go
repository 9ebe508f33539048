package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/salao-caixa/caixa-backend/internal/domain"
	"github.com/salao-caixa/caixa-backend/internal/util"
)

// parseDateRange reads startDate and endDate (YYYY-MM-DD) as whole days in loc.
// A nil range means both were absent.
func parseDateRange(c echo.Context, loc *time.Location) (*domain.DateRange, []ValidationError) {
	startStr := c.QueryParam("startDate")
	endStr := c.QueryParam("endDate")
	if startStr == "" && endStr == "" {
		return nil, nil
	}

	var errs []ValidationError
	dateRange := &domain.DateRange{}
	if startStr != "" {
		start, err := util.ParseDay(startStr, loc)
		if err != nil {
			errs = append(errs, ValidationError{Field: "startDate", Message: "Must be in YYYY-MM-DD format"})
		} else {
			dateRange.Start = &start
		}
	}
	if endStr != "" {
		end, err := util.ParseDay(endStr, loc)
		if err != nil {
			errs = append(errs, ValidationError{Field: "endDate", Message: "Must be in YYYY-MM-DD format"})
		} else {
			endOfDay := util.EndOfDay(end)
			dateRange.End = &endOfDay
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	if dateRange.Start != nil && dateRange.End != nil && dateRange.Start.After(*dateRange.End) {
		return nil, []ValidationError{{Field: "endDate", Message: "Must not be before startDate"}}
	}
	return dateRange, nil
}

// parseMovementID reads the :id path parameter
func parseMovementID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parsePositiveInt reads an optional positive integer query parameter
func parsePositiveInt(c echo.Context, name string, fallback int) (int, bool) {
	s := c.QueryParam(name)
	if s == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, false
	}
	return v, true
}
