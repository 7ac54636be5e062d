package services

import (
	"github.com/sirupsen/logrus"

	"todo-list/internal/config"
	"todo-list/internal/metrics"
	"todo-list/internal/ordering"
	"todo-list/internal/query"
	"todo-list/internal/repository/sqldb"
	"todo-list/internal/validation"
)

// ServiceContainer wires the services and engines over one repository.
type ServiceContainer struct {
	TaskService TaskService
	Ordering    *ordering.Engine
	Query       *query.Engine
}

// NewServiceContainer builds every service from cfg. m may be nil.
func NewServiceContainer(repo sqldb.Repository, cfg *config.Config, logger *logrus.Logger, m *metrics.Metrics, opts ...Option) *ServiceContainer {
	validator := validation.NewTaskValidatorWithConfig(cfg)
	orderingEngine := ordering.NewEngine(repo, validator, logger, m)
	queryEngine := query.NewEngine(repo, cfg.Validation, logger)

	return &ServiceContainer{
		TaskService: NewTaskService(repo, validator, orderingEngine, queryEngine, logger, m, opts...),
		Ordering:    orderingEngine,
		Query:       queryEngine,
	}
}
