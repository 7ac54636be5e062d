package validation

import (
	"fmt"
	"strings"

	"todo-list/internal/config"
	"todo-list/internal/domain"
)

// TaskValidator validates and normalizes task input before it reaches the
// store.
type TaskValidator struct {
	validator *Validator
}

// NewTaskValidator creates a task validator with the default limits.
func NewTaskValidator() *TaskValidator {
	return &TaskValidator{validator: NewValidator()}
}

// NewTaskValidatorWithConfig creates a task validator using cfg's limits.
func NewTaskValidatorWithConfig(cfg *config.Config) *TaskValidator {
	return &TaskValidator{validator: NewValidatorWithConfig(cfg)}
}

// NewTaskValidatorWith wraps an existing validator.
func NewTaskValidatorWith(v *Validator) *TaskValidator {
	return &TaskValidator{validator: v}
}

// ValidateTaskID validates a single task id.
func (tv *TaskValidator) ValidateTaskID(id string) error {
	validationError := NewValidationError()
	tv.checkTaskID(validationError, "id", id)
	return validationError.OrNil()
}

func (tv *TaskValidator) checkTaskID(ve *ValidationError, field, id string) {
	if strings.TrimSpace(id) == "" {
		ve.AddRequiredError(field)
		return
	}
	if !tv.validator.IsValidTaskID(id) {
		ve.AddInvalidFormatError(field, id, "UUID")
	}
}

// PrepareCreate trims and defaults the input, then validates it. The
// returned input is what should be persisted.
func (tv *TaskValidator) PrepareCreate(input domain.CreateTaskInput) (domain.CreateTaskInput, error) {
	validationError := NewValidationError()

	input.Title = tv.validator.TrimAndValidateString(input.Title)
	if input.Priority == "" {
		input.Priority = domain.PriorityMedium
	}
	if input.Status == "" {
		input.Status = domain.StatusPending
	}
	input.Tags = tv.validator.NormalizeTags(input.Tags)
	input.Description = trimOptional(input.Description)
	input.Category = trimOptional(input.Category)

	tv.checkTitle(validationError, input.Title)
	tv.checkDescription(validationError, input.Description)
	tv.checkPriority(validationError, input.Priority)
	tv.checkStatus(validationError, input.Status)
	tv.checkTags(validationError, input.Tags)
	tv.checkCategory(validationError, input.Category)

	if input.DueDate != nil {
		if !tv.validator.IsFutureDate(*input.DueDate) {
			validationError.AddInvalidRangeError("dueDate", input.DueDate, "must be in the future")
		} else {
			due := input.DueDate.UTC()
			input.DueDate = &due
		}
	}

	return input, validationError.OrNil()
}

// PreparePatch trims and validates the fields present in a patch. Due
// dates are not required to be in the future on update.
func (tv *TaskValidator) PreparePatch(patch domain.TaskPatch) (domain.TaskPatch, error) {
	validationError := NewValidationError()

	if patch.IsEmpty() {
		validationError.AddError("body", ErrorTypeRequired, "at least one field must be provided", nil)
		return patch, validationError
	}

	if patch.Title != nil {
		title := tv.validator.TrimAndValidateString(*patch.Title)
		patch.Title = &title
		tv.checkTitle(validationError, title)
	}
	if patch.Description != nil {
		desc := strings.TrimSpace(*patch.Description)
		patch.Description = &desc
		tv.checkDescription(validationError, &desc)
	}
	if patch.Priority != nil {
		tv.checkPriority(validationError, *patch.Priority)
	}
	if patch.Status != nil {
		tv.checkStatus(validationError, *patch.Status)
	}
	if patch.Tags != nil {
		tags := tv.validator.NormalizeTags(*patch.Tags)
		patch.Tags = &tags
		tv.checkTags(validationError, tags)
	}
	if patch.Category != nil {
		cat := strings.TrimSpace(*patch.Category)
		patch.Category = &cat
		tv.checkCategory(validationError, &cat)
	}

	return patch, validationError.OrNil()
}

// ValidateTask validates a fully merged task, as stored after an update.
func (tv *TaskValidator) ValidateTask(task domain.Task) error {
	validationError := NewValidationError()

	tv.checkTitle(validationError, task.Title)
	tv.checkDescription(validationError, task.Description)
	tv.checkPriority(validationError, task.Priority)
	tv.checkStatus(validationError, task.Status)
	tv.checkTags(validationError, task.Tags)
	tv.checkCategory(validationError, task.Category)

	if task.IsCompleted() != (task.CompletedAt != nil) {
		validationError.AddInvalidValueError("completedAt", task.CompletedAt, "must be set exactly when the task is completed")
	}

	return validationError.OrNil()
}

// ValidateStatus validates a status value on its own.
func (tv *TaskValidator) ValidateStatus(status domain.Status) error {
	validationError := NewValidationError()
	tv.checkStatus(validationError, status)
	return validationError.OrNil()
}

// ValidateBatchIDs checks that a batch names at least one id and does not
// exceed the batch limit. Individual ids are not checked here: malformed
// ids are skipped by the batch operations.
func (tv *TaskValidator) ValidateBatchIDs(ids []string) error {
	validationError := NewValidationError()
	if len(ids) == 0 {
		validationError.AddError("taskIds", ErrorTypeRequired, "at least one task id is required", nil)
	} else if max := tv.validator.limits.MaxBatchSize; max > 0 && len(ids) > max {
		validationError.AddInvalidRangeError("taskIds", len(ids), fmt.Sprintf("at most %d ids per request", max))
	}
	return validationError.OrNil()
}

// ValidateBatchOperation validates the action-specific fields of a batch.
func (tv *TaskValidator) ValidateBatchOperation(op domain.BatchOperation) error {
	if err := tv.ValidateBatchIDs(op.IDs); err != nil {
		return err
	}
	validationError := NewValidationError()
	switch op.Action {
	case domain.BatchActionUpdateStatus:
		if op.Status == nil {
			validationError.AddRequiredError("data.status")
		} else {
			tv.checkStatus(validationError, *op.Status)
		}
	case domain.BatchActionDelete:
	case "":
		validationError.AddRequiredError("action")
	default:
		validationError.AddInvalidValueError("action", op.Action, "must be update_status or delete")
	}
	return validationError.OrNil()
}

// ValidateReorder rejects empty and oversized payloads and duplicate ids.
// Unknown or foreign ids are accepted here and skipped by the reorder.
func (tv *TaskValidator) ValidateReorder(assignments []domain.OrderAssignment) error {
	validationError := NewValidationError()
	if len(assignments) == 0 {
		validationError.AddError("tasks", ErrorTypeRequired, "at least one task is required", nil)
		return validationError
	}
	if max := tv.validator.limits.MaxBatchSize; max > 0 && len(assignments) > max {
		validationError.AddInvalidRangeError("tasks", len(assignments), fmt.Sprintf("at most %d tasks per request", max))
	}
	seen := make(map[string]struct{}, len(assignments))
	for i, a := range assignments {
		if _, dup := seen[a.ID]; dup {
			validationError.AddInvalidValueError(fmt.Sprintf("tasks[%d].id", i), a.ID, "duplicate task id")
			continue
		}
		seen[a.ID] = struct{}{}
	}
	return validationError.OrNil()
}

// ValidateMove validates a single-task move. Any target position is
// accepted; out-of-range values place the task first or last.
func (tv *TaskValidator) ValidateMove(id string) error {
	return tv.ValidateTaskID(id)
}

func (tv *TaskValidator) checkTitle(ve *ValidationError, title string) {
	if !tv.validator.IsNonEmptyString(title) {
		ve.AddRequiredError("title")
		return
	}
	if !tv.validator.IsValidStringLength(title, 1, tv.validator.limits.TitleMaxLength) {
		ve.AddInvalidLengthError("title", title, 1, tv.validator.limits.TitleMaxLength)
	}
}

func (tv *TaskValidator) checkDescription(ve *ValidationError, desc *string) {
	if desc == nil {
		return
	}
	if max := tv.validator.limits.DescriptionMaxLength; tv.validator.RuneLength(*desc) > max {
		ve.AddInvalidLengthError("description", *desc, 0, max)
	}
}

func (tv *TaskValidator) checkCategory(ve *ValidationError, cat *string) {
	if cat == nil {
		return
	}
	if max := tv.validator.limits.CategoryMaxLength; tv.validator.RuneLength(*cat) > max {
		ve.AddInvalidLengthError("category", *cat, 0, max)
	}
}

func (tv *TaskValidator) checkPriority(ve *ValidationError, p domain.Priority) {
	if !p.IsValid() {
		ve.AddInvalidValueError("priority", p, "must be one of low, medium, high")
	}
}

func (tv *TaskValidator) checkStatus(ve *ValidationError, s domain.Status) {
	if !s.IsValid() {
		ve.AddInvalidValueError("status", s, "must be one of pending, in_progress, completed, archived")
	}
}

func (tv *TaskValidator) checkTags(ve *ValidationError, tags []string) {
	limits := tv.validator.limits
	if len(tags) > limits.MaxTags {
		ve.AddInvalidRangeError("tags", len(tags), fmt.Sprintf("at most %d tags are allowed", limits.MaxTags))
	}
	for i, tag := range tags {
		field := fmt.Sprintf("tags[%d]", i)
		if tag == "" {
			ve.AddRequiredError(field)
		} else if tv.validator.RuneLength(tag) > limits.TagMaxLength {
			ve.AddInvalidLengthError(field, tag, 1, limits.TagMaxLength)
		}
	}
}

// trimOptional trims s and maps an empty result to nil.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
