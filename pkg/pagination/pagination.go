package pagination

import (
	"errors"
	"math"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps Offset within int for any accepted limit.
	MaxPage = math.MaxInt / MaxLimit
)

// Params holds pagination parameters extracted from a request.
type Params struct {
	Page  int
	Limit int
}

// FromContext extracts page and limit from the query string. Missing,
// malformed or non-positive values fall back to the defaults.
func FromContext(c echo.Context) Params {
	return New(c.QueryParam("page"), c.QueryParam("limit"))
}

// New parses raw page and limit values. Pages past MaxPage are clamped.
func New(page, limit string) Params {
	p, err := strconv.Atoi(page)
	switch {
	case errors.Is(err, strconv.ErrRange) && p > 0:
		p = MaxPage
	case err != nil || p < 1:
		p = DefaultPage
	case p > MaxPage:
		p = MaxPage
	}
	l, err := strconv.Atoi(limit)
	if err != nil || l < 1 {
		l = DefaultLimit
	}
	if l > MaxLimit {
		l = MaxLimit
	}
	return Params{Page: p, Limit: l}
}

// Offset returns the number of rows skipped before this page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta describes where a page sits in the full result set.
type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Response wraps a paginated API response.
type Response struct {
	Data interface{} `json:"data"`
	Meta Meta        `json:"meta"`
}

func NewResponse(data interface{}, total int, p Params) *Response {
	return &Response{
		Data: data,
		Meta: Meta{
			Total:      total,
			Page:       p.Page,
			Limit:      p.Limit,
			TotalPages: TotalPages(total, p.Limit),
		},
	}
}

// TotalPages returns ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
