package api

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"todo-list/internal/domain"
	"todo-list/internal/errors"
	"todo-list/internal/validation"
)

type createTaskRequest struct {
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Priority    domain.Priority `json:"priority"`
	Status      domain.Status   `json:"status"`
	DueDate     *string         `json:"dueDate"`
	Tags        []string        `json:"tags"`
	Category    *string         `json:"category"`
}

func (r createTaskRequest) input() (domain.CreateTaskInput, error) {
	ve := validation.NewValidationError()
	input := domain.CreateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Status:      r.Status,
		Tags:        r.Tags,
		Category:    r.Category,
	}
	if r.DueDate != nil && strings.TrimSpace(*r.DueDate) != "" {
		input.DueDate = parseDueDate(ve, *r.DueDate)
	}
	return input, asRequestError(ve)
}

// updateTaskRequest is a partial update. An empty dueDate clears it.
type updateTaskRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Priority    *domain.Priority `json:"priority"`
	Status      *domain.Status   `json:"status"`
	DueDate     *string          `json:"dueDate"`
	Tags        *[]string        `json:"tags"`
	Category    *string          `json:"category"`
}

func (r updateTaskRequest) patch() (domain.TaskPatch, error) {
	ve := validation.NewValidationError()
	patch := domain.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Status:      r.Status,
		Tags:        r.Tags,
		Category:    r.Category,
	}
	if r.DueDate != nil {
		if strings.TrimSpace(*r.DueDate) == "" {
			patch.ClearDueDate = true
		} else {
			patch.DueDate = parseDueDate(ve, *r.DueDate)
		}
	}
	return patch, asRequestError(ve)
}

type statusRequest struct {
	Status domain.Status `json:"status"`
}

// idsRequest accepts both taskIds and the older ids field.
type idsRequest struct {
	TaskIDs []string `json:"taskIds"`
	IDs     []string `json:"ids"`
}

func (r idsRequest) ids() []string {
	if len(r.TaskIDs) > 0 {
		return r.TaskIDs
	}
	return r.IDs
}

type batchRequest struct {
	idsRequest
	Action domain.BatchAction `json:"action"`
	Data   struct {
		Status *domain.Status `json:"status"`
	} `json:"data"`
}

func (r batchRequest) operation() domain.BatchOperation {
	return domain.BatchOperation{
		IDs:    r.ids(),
		Action: r.Action,
		Status: r.Data.Status,
	}
}

type batchStatusRequest struct {
	idsRequest
	Status domain.Status `json:"status"`
}

type moveRequest struct {
	NewOrder *int `json:"newOrder"`
}

type reorderRequest struct {
	Tasks []domain.OrderAssignment `json:"tasks"`
}

// decodeBody reads the JSON request body into dst.
func decodeBody(c echo.Context, dst interface{}) error {
	return c.Echo().JSONSerializer.Deserialize(c, dst)
}

// parseDueDate accepts RFC3339 timestamps and plain YYYY-MM-DD dates.
func parseDueDate(ve *validation.ValidationError, raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	ve.AddInvalidFormatError("dueDate", raw, "RFC3339 or YYYY-MM-DD")
	return nil
}

func asRequestError(ve *validation.ValidationError) error {
	if !ve.HasErrors() {
		return nil
	}
	return errors.NewValidationError(ve.GetUserFriendlyMessage(), ve)
}
