package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// PaginationParams carries limit/offset parsed from the request query.
type PaginationParams struct {
	Limit  int
	Offset int
}

// GetPaginationParams extracts limit and offset from the request, applying
// sane defaults and an upper bound on page size.
func GetPaginationParams(c echo.Context, defaultLimit int) PaginationParams {
	limit := defaultLimit
	offset := 0

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 100 {
		limit = 100
	}

	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	return PaginationParams{Limit: limit, Offset: offset}
}
