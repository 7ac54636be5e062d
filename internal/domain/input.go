package domain

import "time"

// CreateTaskInput carries the caller-supplied fields of a new task. Empty
// Priority and Status fall back to medium and pending.
type CreateTaskInput struct {
	Title       string
	Description *string
	Priority    Priority
	Status      Status
	DueDate     *time.Time
	Tags        []string
	Category    *string
}

// TaskPatch is a partial update. Nil fields are left untouched. An empty
// Description or Category clears the field, as does ClearDueDate.
type TaskPatch struct {
	Title        *string
	Description  *string
	Priority     *Priority
	Status       *Status
	DueDate      *time.Time
	ClearDueDate bool
	Tags         *[]string
	Category     *string
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Status == nil && p.DueDate == nil && !p.ClearDueDate &&
		p.Tags == nil && p.Category == nil
}

// Apply merges the patch into t. It does not validate or touch timestamps
// other than CompletedAt.
func (p TaskPatch) Apply(t *Task, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = emptyToNil(*p.Description)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		due := p.DueDate.UTC()
		t.DueDate = &due
	}
	if p.Tags != nil {
		t.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.Category != nil {
		t.Category = emptyToNil(*p.Category)
	}
	if p.Status != nil {
		t.SetStatus(*p.Status, now)
	}
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// OrderAssignment is one entry of a bulk reorder request. Only the position
// of the entry in the request matters; Order is informational.
type OrderAssignment struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

// BatchAction names the operation a batch request applies.
type BatchAction string

const (
	BatchActionUpdateStatus BatchAction = "update_status"
	BatchActionDelete       BatchAction = "delete"
)

// BatchOperation applies Action to every task in IDs owned by the caller.
type BatchOperation struct {
	IDs    []string
	Action BatchAction
	Status *Status
}

// BatchResult reports how many of the requested ids were acted on. Ids
// that are malformed, unknown or owned by someone else count as failed.
type BatchResult struct {
	Requested int `json:"requested"`
	Affected  int `json:"affected"`
	Failed    int `json:"failed"`
}

// NewBatchResult derives Failed from the requested and affected counts.
func NewBatchResult(requested, affected int) BatchResult {
	failed := requested - affected
	if failed < 0 {
		failed = 0
	}
	return BatchResult{Requested: requested, Affected: affected, Failed: failed}
}

// OrderSlot is a task's position in its owner's list.
type OrderSlot struct {
	ID    string
	Order int
}
