package services

import (
	"context"

	"todo-list/internal/domain"
)

// TaskService is the task lifecycle API shared by the HTTP server and the
// CLI. Every call is scoped to ownerID; tasks of other owners behave as if
// they did not exist.
type TaskService interface {
	// Task CRUD operations
	Create(ctx context.Context, ownerID string, input domain.CreateTaskInput) (*domain.Task, error)
	Get(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
	Update(ctx context.Context, ownerID, taskID string, patch domain.TaskPatch) (*domain.Task, error)
	UpdateStatus(ctx context.Context, ownerID, taskID string, status domain.Status) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, taskID string) error

	// Batch operations are best-effort: malformed, unknown and foreign ids
	// are skipped and reported as failed.
	BatchUpdateStatus(ctx context.Context, ownerID string, ids []string, status domain.Status) (domain.BatchResult, error)
	BatchDelete(ctx context.Context, ownerID string, ids []string) (domain.BatchResult, error)
	Batch(ctx context.Context, ownerID string, op domain.BatchOperation) (domain.BatchResult, error)

	// Listing
	Query(ctx context.Context, ownerID string, q domain.TaskQuery) (*domain.TaskPage, error)

	// Ordering
	MoveTask(ctx context.Context, ownerID, taskID string, newOrder int) (*domain.Task, error)
	ReorderAll(ctx context.Context, ownerID string, assignments []domain.OrderAssignment) (domain.BatchResult, error)
}
