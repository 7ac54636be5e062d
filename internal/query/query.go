// Package query turns task listing requests into validated, normalized
// queries and assembles the resulting pages.
package query

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"todo-list/internal/config"
	"todo-list/internal/domain"
	"todo-list/internal/validation"
)

const (
	DefaultSortBy    = domain.SortByCreatedAt
	DefaultSortOrder = domain.SortDesc
)

// dateOnly is accepted for startDate and endDate besides RFC 3339.
const dateOnly = "2006-01-02"

// Normalize fills defaults for unset fields and tidies filters: search is
// trimmed and dropped when blank, tags are trimmed and de-duplicated.
func Normalize(q domain.TaskQuery, limits config.ValidationConfig) domain.TaskQuery {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = limits.DefaultPageLimit
	}
	if q.SortBy == "" {
		q.SortBy = DefaultSortBy
	}
	if q.SortOrder == "" {
		q.SortOrder = DefaultSortOrder
	}
	if q.Search != nil {
		trimmed := strings.TrimSpace(*q.Search)
		if trimmed == "" {
			q.Search = nil
		} else {
			q.Search = &trimmed
		}
	}
	if q.Category != nil {
		trimmed := strings.TrimSpace(*q.Category)
		q.Category = &trimmed
	}
	q.Tags = cleanTags(q.Tags)
	return q
}

// Validate checks a normalized query.
func Validate(q domain.TaskQuery, limits config.ValidationConfig) error {
	ve := validation.NewValidationError()

	if q.Status != nil && !q.Status.IsValid() {
		ve.AddInvalidValueError("status", *q.Status, "must be one of pending, in_progress, completed, archived")
	}
	if q.Priority != nil && !q.Priority.IsValid() {
		ve.AddInvalidValueError("priority", *q.Priority, "must be one of low, medium, high")
	}
	if !q.SortBy.IsValid() {
		ve.AddInvalidValueError("sortBy", q.SortBy, "unsupported sort field")
	}
	if !q.SortOrder.IsValid() {
		ve.AddInvalidValueError("sortOrder", q.SortOrder, "must be asc or desc")
	}
	if q.Page < 1 {
		ve.AddInvalidRangeError("page", q.Page, "page must be at least 1")
	}
	if q.Limit < 1 || q.Limit > limits.MaxPageLimit {
		ve.AddInvalidRangeError("limit", q.Limit, fmt.Sprintf("limit must be between 1 and %d", limits.MaxPageLimit))
	} else if q.Page > 1 && q.Page-1 > math.MaxInt/q.Limit {
		ve.AddInvalidRangeError("page", q.Page, "page is too large")
	}
	if q.StartDate != nil && q.EndDate != nil && q.StartDate.After(*q.EndDate) {
		ve.AddInvalidRangeError("startDate", *q.StartDate, "startDate must not be after endDate")
	}

	return ve.OrNil()
}

// FromValues parses listing query parameters. Tags may be repeated or
// comma-separated. A date-only endDate covers the whole day.
func FromValues(values url.Values) (domain.TaskQuery, error) {
	var q domain.TaskQuery
	ve := validation.NewValidationError()

	if v := values.Get("status"); v != "" {
		status := domain.Status(v)
		q.Status = &status
	}
	if v := values.Get("priority"); v != "" {
		priority := domain.Priority(v)
		q.Priority = &priority
	}
	if v := values.Get("category"); v != "" {
		q.Category = &v
	}
	if v, ok := values["search"]; ok && len(v) > 0 {
		search := v[0]
		q.Search = &search
	}
	for _, raw := range values["tags"] {
		q.Tags = append(q.Tags, strings.Split(raw, ",")...)
	}

	var err error
	if q.StartDate, err = parseDate(values.Get("startDate"), false); err != nil {
		ve.AddInvalidFormatError("startDate", values.Get("startDate"), "RFC 3339 timestamp or YYYY-MM-DD")
	}
	if q.EndDate, err = parseDate(values.Get("endDate"), true); err != nil {
		ve.AddInvalidFormatError("endDate", values.Get("endDate"), "RFC 3339 timestamp or YYYY-MM-DD")
	}

	q.Page = parsePositive(ve, values, "page")
	q.Limit = parsePositive(ve, values, "limit")
	q.SortBy = domain.SortField(values.Get("sortBy"))
	q.SortOrder = domain.SortOrder(strings.ToLower(values.Get("sortOrder")))

	return q, ve.OrNil()
}

// BuildPage wraps items with the pagination totals of q.
func BuildPage(items []domain.Task, total int, q domain.TaskQuery) domain.TaskPage {
	if items == nil {
		items = []domain.Task{}
	}
	totalPages := 0
	if q.Limit > 0 {
		totalPages = (total + q.Limit - 1) / q.Limit
	}
	return domain.TaskPage{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: totalPages,
		HasMore:    q.Offset()+len(items) < total,
	}
}

// parsePositive reads an optional integer parameter. Absent means zero so
// Normalize applies the default; present values must be at least 1.
func parsePositive(ve *validation.ValidationError, values url.Values, key string) int {
	raw := values.Get(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		ve.AddInvalidFormatError(key, raw, "integer")
		return 0
	}
	if n < 1 {
		ve.AddInvalidRangeError(key, n, key+" must be at least 1")
		return 0
	}
	return n
}

func parseDate(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(dateOnly, raw)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func cleanTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
