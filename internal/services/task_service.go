package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"todo-list/internal/domain"
	"todo-list/internal/errors"
	"todo-list/internal/metrics"
	"todo-list/internal/ordering"
	"todo-list/internal/query"
	"todo-list/internal/repository/sqldb"
	"todo-list/internal/validation"
)

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	repo      sqldb.Repository
	validator *validation.TaskValidator
	ordering  *ordering.Engine
	query     *query.Engine
	logger    *logrus.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
	newID     func() string
}

// Option customizes a task service.
type Option func(*taskServiceImpl)

// WithClock replaces the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *taskServiceImpl) { s.now = now }
}

// WithIDGenerator replaces the task id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *taskServiceImpl) { s.newID = newID }
}

// NewTaskService creates a new TaskService instance
func NewTaskService(repo sqldb.Repository, validator *validation.TaskValidator, orderingEngine *ordering.Engine, queryEngine *query.Engine, logger *logrus.Logger, m *metrics.Metrics, opts ...Option) TaskService {
	if logger == nil {
		logger = logrus.New()
	}
	s := &taskServiceImpl{
		repo:      repo,
		validator: validator,
		ordering:  orderingEngine,
		query:     queryEngine,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates input and stores a new task at the end of the owner's list.
func (s *taskServiceImpl) Create(ctx context.Context, ownerID string, input domain.CreateTaskInput) (*domain.Task, error) {
	prepared, err := s.validator.PrepareCreate(input)
	if err != nil {
		return nil, validationFailure(err)
	}

	now := s.now().UTC()
	task := &domain.Task{
		ID:          s.newID(),
		OwnerID:     ownerID,
		Title:       prepared.Title,
		Description: prepared.Description,
		Priority:    prepared.Priority,
		DueDate:     prepared.DueDate,
		Tags:        prepared.Tags,
		Category:    prepared.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	task.SetStatus(prepared.Status, now)

	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, s.fail("create task", ownerID, err)
	}

	s.logger.WithFields(logrus.Fields{"owner": ownerID, "task_id": task.ID, "order": task.Order}).Debug("task created")
	return task, nil
}

// Get retrieves one of the owner's tasks.
func (s *taskServiceImpl) Get(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	if err := s.validator.ValidateTaskID(taskID); err != nil {
		return nil, validationFailure(err)
	}

	task, err := s.repo.GetTask(ctx, ownerID, taskID)
	if err != nil {
		return nil, s.fail("get task", ownerID, err)
	}
	return task, nil
}

// Update merges patch into the stored task and re-validates the result.
func (s *taskServiceImpl) Update(ctx context.Context, ownerID, taskID string, patch domain.TaskPatch) (*domain.Task, error) {
	if err := s.validator.ValidateTaskID(taskID); err != nil {
		return nil, validationFailure(err)
	}
	prepared, err := s.validator.PreparePatch(patch)
	if err != nil {
		return nil, validationFailure(err)
	}

	return s.mutate(ctx, "update task", ownerID, taskID, func(task *domain.Task, now time.Time) {
		prepared.Apply(task, now)
	})
}

// UpdateStatus changes only the status, keeping completedAt in step.
func (s *taskServiceImpl) UpdateStatus(ctx context.Context, ownerID, taskID string, status domain.Status) (*domain.Task, error) {
	if err := s.validator.ValidateTaskID(taskID); err != nil {
		return nil, validationFailure(err)
	}
	if err := s.validator.ValidateStatus(status); err != nil {
		return nil, validationFailure(err)
	}

	return s.mutate(ctx, "update task status", ownerID, taskID, func(task *domain.Task, now time.Time) {
		task.SetStatus(status, now)
	})
}

func (s *taskServiceImpl) mutate(ctx context.Context, operation, ownerID, taskID string, change func(*domain.Task, time.Time)) (*domain.Task, error) {
	now := s.now().UTC()
	task, err := s.repo.UpdateTask(ctx, ownerID, taskID, func(task *domain.Task) error {
		change(task, now)
		task.UpdatedAt = now
		if err := s.validator.ValidateTask(*task); err != nil {
			return validationFailure(err)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(operation, ownerID, err)
	}

	s.logger.WithFields(logrus.Fields{"owner": ownerID, "task_id": taskID, "status": string(task.Status)}).Debug("task updated")
	return task, nil
}

// Delete removes one task. Other tasks keep their order.
func (s *taskServiceImpl) Delete(ctx context.Context, ownerID, taskID string) error {
	if err := s.validator.ValidateTaskID(taskID); err != nil {
		return validationFailure(err)
	}

	if err := s.repo.DeleteTask(ctx, ownerID, taskID); err != nil {
		return s.fail("delete task", ownerID, err)
	}

	s.logger.WithFields(logrus.Fields{"owner": ownerID, "task_id": taskID}).Debug("task deleted")
	return nil
}

// BatchUpdateStatus sets status on every owned task among ids.
func (s *taskServiceImpl) BatchUpdateStatus(ctx context.Context, ownerID string, ids []string, status domain.Status) (domain.BatchResult, error) {
	if err := s.validator.ValidateBatchIDs(ids); err != nil {
		return domain.BatchResult{}, validationFailure(err)
	}
	if err := s.validator.ValidateStatus(status); err != nil {
		return domain.BatchResult{}, validationFailure(err)
	}

	affected, err := s.repo.UpdateStatusBatch(ctx, ownerID, s.usableIDs(ids), status, s.now().UTC())
	if err != nil {
		return domain.BatchResult{}, s.fail("batch update status", ownerID, err)
	}
	return s.batchResult(string(domain.BatchActionUpdateStatus), ownerID, len(ids), affected), nil
}

// BatchDelete deletes every owned task among ids.
func (s *taskServiceImpl) BatchDelete(ctx context.Context, ownerID string, ids []string) (domain.BatchResult, error) {
	if err := s.validator.ValidateBatchIDs(ids); err != nil {
		return domain.BatchResult{}, validationFailure(err)
	}

	affected, err := s.repo.DeleteBatch(ctx, ownerID, s.usableIDs(ids))
	if err != nil {
		return domain.BatchResult{}, s.fail("batch delete", ownerID, err)
	}
	return s.batchResult(string(domain.BatchActionDelete), ownerID, len(ids), affected), nil
}

// Batch dispatches a batch operation by action.
func (s *taskServiceImpl) Batch(ctx context.Context, ownerID string, op domain.BatchOperation) (domain.BatchResult, error) {
	if err := s.validator.ValidateBatchOperation(op); err != nil {
		return domain.BatchResult{}, validationFailure(err)
	}

	switch op.Action {
	case domain.BatchActionUpdateStatus:
		return s.BatchUpdateStatus(ctx, ownerID, op.IDs, *op.Status)
	default:
		return s.BatchDelete(ctx, ownerID, op.IDs)
	}
}

// Query returns one page of the owner's tasks.
func (s *taskServiceImpl) Query(ctx context.Context, ownerID string, q domain.TaskQuery) (*domain.TaskPage, error) {
	page, err := s.query.Find(ctx, ownerID, q)
	if err != nil {
		return nil, s.fail("query tasks", ownerID, err)
	}
	return page, nil
}

// MoveTask moves a task to newOrder and returns it with its new position.
func (s *taskServiceImpl) MoveTask(ctx context.Context, ownerID, taskID string, newOrder int) (*domain.Task, error) {
	if _, err := s.ordering.MoveTask(ctx, ownerID, taskID, newOrder); err != nil {
		return nil, s.fail("move task", ownerID, err)
	}
	return s.Get(ctx, ownerID, taskID)
}

// ReorderAll renumbers the owner's list from the sequence of assignments.
func (s *taskServiceImpl) ReorderAll(ctx context.Context, ownerID string, assignments []domain.OrderAssignment) (domain.BatchResult, error) {
	result, err := s.ordering.ReorderAll(ctx, ownerID, assignments)
	if err != nil {
		return domain.BatchResult{}, s.fail("reorder tasks", ownerID, err)
	}
	return result, nil
}

// usableIDs drops malformed and repeated ids, keeping first occurrences.
func (s *taskServiceImpl) usableIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] || s.validator.ValidateTaskID(id) != nil {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (s *taskServiceImpl) batchResult(action, ownerID string, requested, affected int) domain.BatchResult {
	result := domain.NewBatchResult(requested, affected)
	s.metrics.ObserveBatch(action, result.Affected, result.Failed)
	s.logger.WithFields(logrus.Fields{
		"owner":     ownerID,
		"action":    action,
		"requested": result.Requested,
		"affected":  result.Affected,
	}).Debug("batch applied")
	return result
}

// fail logs systemic errors and returns err unchanged.
func (s *taskServiceImpl) fail(operation, ownerID string, err error) error {
	if errors.ShouldLogError(err) {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"owner":     ownerID,
			"operation": operation,
			"retryable": errors.IsRetryable(err),
		}).Error("task operation failed")
	}
	return err
}

// validationFailure wraps field errors into a Validation AppError.
func validationFailure(err error) error {
	if errors.IsAppError(err) {
		return err
	}
	if ve, ok := validation.AsValidationError(err); ok {
		return errors.NewValidationError(ve.GetUserFriendlyMessage(), ve)
	}
	return errors.NewValidationError(err.Error(), err)
}
