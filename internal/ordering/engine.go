package ordering

import (
	"context"

	"github.com/sirupsen/logrus"

	"todo-list/internal/domain"
	"todo-list/internal/errors"
	"todo-list/internal/metrics"
	"todo-list/internal/repository/sqldb"
	"todo-list/internal/validation"
)

// Engine applies move and reorder plans through the store. Operations for
// the same owner are serialized in process before the store transaction,
// which holds the owner lock itself.
type Engine struct {
	repo      sqldb.Repository
	validator *validation.TaskValidator
	locks     *ownerLocks
	logger    *logrus.Logger
	metrics   *metrics.Metrics
}

// NewEngine creates an order maintenance engine. m may be nil.
func NewEngine(repo sqldb.Repository, validator *validation.TaskValidator, logger *logrus.Logger, m *metrics.Metrics) *Engine {
	if validator == nil {
		validator = validation.NewTaskValidator()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{
		repo:      repo,
		validator: validator,
		locks:     newOwnerLocks(),
		logger:    logger,
		metrics:   m,
	}
}

// MoveTask moves one owned task to newOrder, shifting the tasks between its
// old and new position by one. It returns the number of rows rewritten.
func (e *Engine) MoveTask(ctx context.Context, ownerID, taskID string, newOrder int) (int, error) {
	if err := e.validator.ValidateMove(taskID); err != nil {
		return 0, wrapValidation(err)
	}

	unlock, err := e.locks.lock(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	defer unlock()

	changed, err := e.repo.ReorderTasks(ctx, ownerID, func(current []domain.OrderSlot) ([]domain.OrderSlot, error) {
		return PlanMove(current, taskID, newOrder)
	})
	e.metrics.ObserveReorder("move", changed, err)
	if err != nil {
		return 0, err
	}

	e.logger.WithFields(logrus.Fields{
		"owner":     ownerID,
		"task_id":   taskID,
		"new_order": newOrder,
		"changed":   changed,
	}).Debug("task moved")
	return changed, nil
}

// ReorderAll renumbers the owner's list from the position of each id in
// assignments. Order values in the payload are ignored. Unknown or foreign
// ids are skipped and unlisted tasks follow the listed ones.
func (e *Engine) ReorderAll(ctx context.Context, ownerID string, assignments []domain.OrderAssignment) (domain.BatchResult, error) {
	if err := e.validator.ValidateReorder(assignments); err != nil {
		return domain.BatchResult{}, wrapValidation(err)
	}

	ids := make([]string, len(assignments))
	for i, a := range assignments {
		ids[i] = a.ID
	}

	unlock, err := e.locks.lock(ctx, ownerID)
	if err != nil {
		return domain.BatchResult{}, err
	}
	defer unlock()

	var matched int
	changed, err := e.repo.ReorderTasks(ctx, ownerID, func(current []domain.OrderSlot) ([]domain.OrderSlot, error) {
		var changes []domain.OrderSlot
		changes, matched = PlanReorder(current, ids)
		return changes, nil
	})
	e.metrics.ObserveReorder("reorder_all", changed, err)
	if err != nil {
		return domain.BatchResult{}, err
	}

	result := domain.NewBatchResult(len(ids), matched)
	e.logger.WithFields(logrus.Fields{
		"owner":     ownerID,
		"requested": result.Requested,
		"matched":   result.Affected,
		"changed":   changed,
	}).Debug("tasks reordered")
	return result, nil
}

func wrapValidation(err error) error {
	if ve, ok := validation.AsValidationError(err); ok {
		return errors.NewValidationError(ve.GetUserFriendlyMessage(), ve)
	}
	return err
}
