package models

import (
	"net/http"
	"net/url"
	"strconv"
)

// FilterParams carries list filter and pagination criteria. Zero values mean
// "no filter"; the date range is inclusive on both ends.
type FilterParams struct {
	Status   string
	DateFrom string
	DateTo   string
	Search   string
	Limit    int
	Offset   int
}

// Query encodes the params for the backend list endpoints. Only set fields
// are emitted, so the backend applies its own defaults for the rest.
func (f FilterParams) Query() url.Values {
	q := url.Values{}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	if f.Status != "" && f.Status != "All" {
		q.Set("status", f.Status)
	}
	if f.DateFrom != "" {
		q.Set("dateFrom", f.DateFrom)
	}
	if f.DateTo != "" {
		q.Set("dateTo", f.DateTo)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}

// FilterFromRequest parses filter criteria from an incoming request's query
// string, used by the proxy routes to forward caller filters verbatim.
func FilterFromRequest(r *http.Request) FilterParams {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	return FilterParams{
		Status:   q.Get("status"),
		DateFrom: q.Get("dateFrom"),
		DateTo:   q.Get("dateTo"),
		Search:   q.Get("search"),
		Limit:    limit,
		Offset:   offset,
	}
}
