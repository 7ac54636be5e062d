package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-list/internal/domain"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestTaskValidator() *TaskValidator {
	return NewTaskValidatorWith(NewValidator().WithClock(func() time.Time { return fixedNow }))
}

func strPtr(s string) *string { return &s }

func firstFieldError(t *testing.T, err error) FieldError {
	t.Helper()
	ve, ok := AsValidationError(err)
	require.True(t, ok, "expected ValidationError, got %T", err)
	require.NotEmpty(t, ve.Errors)
	return ve.Errors[0]
}

func TestTaskValidator_PrepareCreate_Defaults(t *testing.T) {
	validator := newTestTaskValidator()

	got, err := validator.PrepareCreate(domain.CreateTaskInput{
		Title:       "  Buy milk  ",
		Description: strPtr("   "),
		Tags:        []string{" home ", "home"},
		Category:    strPtr(" errands "),
	})

	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, domain.PriorityMedium, got.Priority)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Nil(t, got.Description)
	assert.Equal(t, []string{"home"}, got.Tags)
	require.NotNil(t, got.Category)
	assert.Equal(t, "errands", *got.Category)
}

func TestTaskValidator_PrepareCreate_Rejects(t *testing.T) {
	validator := newTestTaskValidator()
	past := fixedNow.Add(-time.Hour)

	tooManyTags := make([]string, 11)
	for i := range tooManyTags {
		tooManyTags[i] = strings.Repeat("t", i+1)
	}

	tests := []struct {
		name      string
		input     domain.CreateTaskInput
		field     string
		errorType ValidationErrorType
	}{
		{"missing title", domain.CreateTaskInput{Title: "   "}, "title", ErrorTypeRequired},
		{"title too long", domain.CreateTaskInput{Title: strings.Repeat("a", 201)}, "title", ErrorTypeInvalidLength},
		{"description too long", domain.CreateTaskInput{Title: "x", Description: strPtr(strings.Repeat("d", 1001))}, "description", ErrorTypeInvalidLength},
		{"category too long", domain.CreateTaskInput{Title: "x", Category: strPtr(strings.Repeat("c", 51))}, "category", ErrorTypeInvalidLength},
		{"bad priority", domain.CreateTaskInput{Title: "x", Priority: "urgent"}, "priority", ErrorTypeInvalidValue},
		{"bad status", domain.CreateTaskInput{Title: "x", Status: "done"}, "status", ErrorTypeInvalidValue},
		{"too many tags", domain.CreateTaskInput{Title: "x", Tags: tooManyTags}, "tags", ErrorTypeInvalidRange},
		{"empty tag", domain.CreateTaskInput{Title: "x", Tags: []string{"ok", "  "}}, "tags[1]", ErrorTypeRequired},
		{"past due date", domain.CreateTaskInput{Title: "x", DueDate: &past}, "dueDate", ErrorTypeInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validator.PrepareCreate(tt.input)
			fe := firstFieldError(t, err)
			assert.Equal(t, tt.field, fe.Field)
			assert.Equal(t, tt.errorType, fe.Type)
		})
	}
}

func TestTaskValidator_PrepareCreate_Boundaries(t *testing.T) {
	validator := newTestTaskValidator()
	future := fixedNow.Add(time.Hour)

	tags := make([]string, 10)
	for i := range tags {
		tags[i] = strings.Repeat("t", i+1)
	}

	_, err := validator.PrepareCreate(domain.CreateTaskInput{
		Title:       strings.Repeat("a", 200),
		Description: strPtr(strings.Repeat("d", 1000)),
		Category:    strPtr(strings.Repeat("c", 50)),
		Tags:        tags,
		DueDate:     &future,
	})
	assert.NoError(t, err)
}

func TestTaskValidator_PreparePatch(t *testing.T) {
	validator := newTestTaskValidator()
	past := fixedNow.Add(-48 * time.Hour)

	t.Run("empty patch", func(t *testing.T) {
		_, err := validator.PreparePatch(domain.TaskPatch{})
		fe := firstFieldError(t, err)
		assert.Equal(t, "body", fe.Field)
	})

	t.Run("past due date allowed on update", func(t *testing.T) {
		patch, err := validator.PreparePatch(domain.TaskPatch{DueDate: &past, Title: strPtr("  renamed ")})
		require.NoError(t, err)
		assert.Equal(t, "renamed", *patch.Title)
	})

	t.Run("blank title rejected", func(t *testing.T) {
		_, err := validator.PreparePatch(domain.TaskPatch{Title: strPtr("  ")})
		fe := firstFieldError(t, err)
		assert.Equal(t, "title", fe.Field)
	})

	t.Run("bad status rejected", func(t *testing.T) {
		bad := domain.Status("finished")
		_, err := validator.PreparePatch(domain.TaskPatch{Status: &bad})
		fe := firstFieldError(t, err)
		assert.Equal(t, "status", fe.Field)
	})

	t.Run("tags normalized", func(t *testing.T) {
		tags := []string{"a ", "a", "b"}
		patch, err := validator.PreparePatch(domain.TaskPatch{Tags: &tags})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, *patch.Tags)
	})
}

func TestTaskValidator_ValidateTask_CompletedAtCoupling(t *testing.T) {
	validator := newTestTaskValidator()
	now := fixedNow

	assert.NoError(t, validator.ValidateTask(domain.Task{Title: "x", Priority: domain.PriorityLow, Status: domain.StatusCompleted, CompletedAt: &now}))
	assert.Error(t, validator.ValidateTask(domain.Task{Title: "x", Priority: domain.PriorityLow, Status: domain.StatusCompleted}))
	assert.Error(t, validator.ValidateTask(domain.Task{Title: "x", Priority: domain.PriorityLow, Status: domain.StatusPending, CompletedAt: &now}))
}

func TestTaskValidator_ValidateTaskID(t *testing.T) {
	validator := newTestTaskValidator()

	assert.NoError(t, validator.ValidateTaskID("6f1c1f0a-1b5e-4c34-9a57-8a1d2b7d6b11"))
	assert.Equal(t, ErrorTypeRequired, firstFieldError(t, validator.ValidateTaskID("")).Type)
	assert.Equal(t, ErrorTypeInvalidFormat, firstFieldError(t, validator.ValidateTaskID("123")).Type)
}

func TestTaskValidator_ValidateBatchOperation(t *testing.T) {
	validator := newTestTaskValidator()
	completed := domain.StatusCompleted
	bogus := domain.Status("nope")

	tests := []struct {
		name  string
		op    domain.BatchOperation
		field string
	}{
		{"no ids", domain.BatchOperation{Action: domain.BatchActionDelete}, "taskIds"},
		{"missing action", domain.BatchOperation{IDs: []string{"a"}}, "action"},
		{"unknown action", domain.BatchOperation{IDs: []string{"a"}, Action: "archive"}, "action"},
		{"missing status", domain.BatchOperation{IDs: []string{"a"}, Action: domain.BatchActionUpdateStatus}, "data.status"},
		{"bad status", domain.BatchOperation{IDs: []string{"a"}, Action: domain.BatchActionUpdateStatus, Status: &bogus}, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := firstFieldError(t, validator.ValidateBatchOperation(tt.op))
			assert.Equal(t, tt.field, fe.Field)
		})
	}

	assert.NoError(t, validator.ValidateBatchOperation(domain.BatchOperation{IDs: []string{"a"}, Action: domain.BatchActionUpdateStatus, Status: &completed}))
	assert.NoError(t, validator.ValidateBatchOperation(domain.BatchOperation{IDs: []string{"a"}, Action: domain.BatchActionDelete}))
}

func TestTaskValidator_ValidateReorder(t *testing.T) {
	validator := newTestTaskValidator()

	assert.Error(t, validator.ValidateReorder(nil))
	assert.NoError(t, validator.ValidateReorder([]domain.OrderAssignment{{ID: "a", Order: 0}, {ID: "b", Order: 0}}))

	fe := firstFieldError(t, validator.ValidateReorder([]domain.OrderAssignment{{ID: "a"}, {ID: "b"}, {ID: "a"}}))
	assert.Equal(t, "tasks[2].id", fe.Field)
}

func TestTaskValidator_ValidateMove(t *testing.T) {
	validator := newTestTaskValidator()
	id := "6f1c1f0a-1b5e-4c34-9a57-8a1d2b7d6b11"

	assert.NoError(t, validator.ValidateMove(id))
	assert.Error(t, validator.ValidateMove("bad"))
}
