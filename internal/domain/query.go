package domain

import (
	"math"
	"time"
)

// SortField is a task attribute a listing may be sorted by.
type SortField string

const (
	SortByTitle       SortField = "title"
	SortByDescription SortField = "description"
	SortByPriority    SortField = "priority"
	SortByStatus      SortField = "status"
	SortByDueDate     SortField = "dueDate"
	SortByCategory    SortField = "category"
	SortByOrder       SortField = "order"
	SortByCreatedAt   SortField = "createdAt"
	SortByUpdatedAt   SortField = "updatedAt"
	SortByCompletedAt SortField = "completedAt"
)

// SortFields lists the accepted sort fields.
var SortFields = []SortField{
	SortByTitle, SortByDescription, SortByPriority, SortByStatus, SortByDueDate,
	SortByCategory, SortByOrder, SortByCreatedAt, SortByUpdatedAt, SortByCompletedAt,
}

// IsValid reports whether f is an accepted sort field.
func (f SortField) IsValid() bool {
	for _, known := range SortFields {
		if f == known {
			return true
		}
	}
	return false
}

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// IsValid reports whether o is asc or desc.
func (o SortOrder) IsValid() bool {
	return o == SortAsc || o == SortDesc
}

// TaskQuery describes a filtered, sorted page of one owner's tasks. Every
// filter is optional; nil or empty means "no constraint".
type TaskQuery struct {
	Status    *Status
	Priority  *Priority
	Category  *string
	Tags      []string
	Search    *string
	StartDate *time.Time
	EndDate   *time.Time
	SortBy    SortField
	SortOrder SortOrder
	Page      int
	Limit     int
}

// Offset is the number of matching tasks preceding the requested page.
// It saturates at math.MaxInt instead of overflowing.
func (q TaskQuery) Offset() int {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// TaskPage is one page of a query result.
type TaskPage struct {
	Items      []Task `json:"items"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"totalPages"`
	HasMore    bool   `json:"hasMore"`
}
