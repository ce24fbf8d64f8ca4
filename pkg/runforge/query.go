package runforge

import (
	"net/url"
	"strconv"
	"strings"
)

// QueryParams expresses common list options for Runforge list endpoints.
type QueryParams struct {
	Page          int
	PerPage       int
	OrderBy       string
	LabelSelector string
	Filters       map[string][]string
}

// NewQueryParams creates an empty QueryParams.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Filters: make(map[string][]string),
	}
}

// WithPage sets the page number.
func (q *QueryParams) WithPage(page int) *QueryParams {
	q.Page = page

	return q
}

// WithPerPage sets the page size.
func (q *QueryParams) WithPerPage(perPage int) *QueryParams {
	q.PerPage = perPage

	return q
}

// WithOrderBy sets the ordering field. Prefix with "-" for descending.
func (q *QueryParams) WithOrderBy(orderBy string) *QueryParams {
	q.OrderBy = orderBy

	return q
}

// WithLabelSelector sets the label selector expression.
func (q *QueryParams) WithLabelSelector(selector string) *QueryParams {
	q.LabelSelector = selector

	return q
}

// WithFilter appends values to a named filter.
func (q *QueryParams) WithFilter(name string, values ...string) *QueryParams {
	if q.Filters == nil {
		q.Filters = make(map[string][]string)
	}

	q.Filters[name] = append(q.Filters[name], values...)

	return q
}

// ToValues converts the params to url.Values. Multi-valued filters are
// comma-joined, matching the platform's list endpoints.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}

	if q.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(q.PerPage))
	}

	if q.OrderBy != "" {
		values.Set("order_by", q.OrderBy)
	}

	if q.LabelSelector != "" {
		values.Set("label_selector", q.LabelSelector)
	}

	for name, filterValues := range q.Filters {
		if len(filterValues) > 0 {
			values.Set(name, strings.Join(filterValues, ","))
		}
	}

	return values
}
