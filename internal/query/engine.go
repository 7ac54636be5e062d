package query

import (
	"context"

	"github.com/sirupsen/logrus"

	"todo-list/internal/config"
	"todo-list/internal/domain"
	"todo-list/internal/errors"
	"todo-list/internal/repository/sqldb"
	"todo-list/internal/validation"
)

// Engine answers task listing queries for one owner at a time.
type Engine struct {
	repo   sqldb.Repository
	limits config.ValidationConfig
	logger *logrus.Logger
}

// NewEngine creates a query engine enforcing limits.
func NewEngine(repo sqldb.Repository, limits config.ValidationConfig, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{repo: repo, limits: limits, logger: logger}
}

// Find normalizes and validates q, then returns the requested page of the
// owner's matching tasks.
func (e *Engine) Find(ctx context.Context, ownerID string, q domain.TaskQuery) (*domain.TaskPage, error) {
	q = Normalize(q, e.limits)
	if err := Validate(q, e.limits); err != nil {
		ve, _ := validation.AsValidationError(err)
		return nil, errors.NewValidationError(ve.GetUserFriendlyMessage(), ve)
	}

	items, total, err := e.repo.QueryTasks(ctx, ownerID, q)
	if err != nil {
		return nil, err
	}

	page := BuildPage(items, total, q)
	e.logger.WithFields(logrus.Fields{
		"owner":   ownerID,
		"page":    page.Page,
		"limit":   page.Limit,
		"total":   page.Total,
		"sort_by": string(q.SortBy),
	}).Debug("tasks queried")
	return &page, nil
}
