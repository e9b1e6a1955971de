// Package pagination reads the limit/offset window from list endpoints such
// as patient rosters and appointment schedules, and wraps list payloads with
// the totals the portal needs to render page controls.
package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	// DefaultLimit matches the portal's page size for roster views.
	DefaultLimit = 20
	// MaxLimit caps a single page so one request cannot pull the whole
	// patient table.
	MaxLimit = 100
)

// Params is the window a list query should return.
type Params struct {
	Limit  int
	Offset int
}

// FromContext reads "limit" and "offset" query parameters, treating missing,
// malformed, and out-of-range values as the defaults. It never fails; a bad
// pagination string is not worth a 400 on a list endpoint.
func FromContext(c echo.Context) Params {
	return Params{
		Limit:  clampInt(c.QueryParam("limit"), DefaultLimit, MaxLimit),
		Offset: clampInt(c.QueryParam("offset"), 0, 0),
	}
}

// clampInt parses raw, substituting fallback when the value is absent,
// unparsable, or not positive, and capping at max when max is positive.
func clampInt(raw string, fallback, max int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	if max > 0 && n > max {
		return max
	}
	return n
}

// Response carries one page of results plus the bookkeeping a client needs
// to ask for the next one.
type Response struct {
	Data    interface{} `json:"data"`
	Total   int         `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
	HasMore bool        `json:"has_more"`
}

// NewResponse wraps data for the window that produced it. HasMore reports
// whether rows remain past this page.
func NewResponse(data interface{}, total, limit, offset int) *Response {
	return &Response{
		Data:    data,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+limit < total,
	}
}
