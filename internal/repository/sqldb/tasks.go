package sqldb

import (
	"context"
	"database/sql"
	"time"

	"todo-list/internal/domain"
)

// CreateTask inserts task with order = max(owner orders) + 1, or 0 for an
// owner without tasks.
func (s *Store) CreateTask(ctx context.Context, task *domain.Task) error {
	return s.inOwnerTx(ctx, "create task", task.OwnerID, func(ctx context.Context, tx *sql.Tx) error {
		var next int
		err := tx.QueryRowContext(ctx,
			s.q(`SELECT COALESCE(MAX(sort_order), -1) + 1 FROM tasks WHERE owner_id = ?`),
			task.OwnerID).Scan(&next)
		if err != nil {
			return err
		}
		task.Order = next

		_, err = tx.ExecContext(ctx, s.q(`
		INSERT INTO tasks (id, owner_id, title, description, priority, status, due_date,
			category, sort_order, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			task.ID,
			task.OwnerID,
			task.Title,
			NullableString(task.Description),
			string(task.Priority),
			string(task.Status),
			FormatTimePtrForDB(task.DueDate),
			NullableString(task.Category),
			task.Order,
			FormatTimePtrForDB(task.CompletedAt),
			FormatTimeForDB(task.CreatedAt),
			FormatTimeForDB(task.UpdatedAt),
		)
		if err != nil {
			return err
		}

		return s.insertTags(ctx, tx, task)
	})
}

// GetTask retrieves one of the owner's tasks by id
func (s *Store) GetTask(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	var task *domain.Task
	err := s.inReadTx(ctx, "get task", func(ctx context.Context, tx *sql.Tx) error {
		var err error
		task, err = s.getTask(ctx, tx, ownerID, id)
		return err
	})
	return task, err
}

func (s *Store) getTask(ctx context.Context, q Querier, ownerID, id string) (*domain.Task, error) {
	query := s.q(`SELECT ` + taskColumns + ` FROM tasks t WHERE t.owner_id = ? AND t.id = ?`)
	task, err := QuerySingle(ctx, q, query, ScanTask, "task", id, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.loadTags(ctx, q, []*domain.Task{task}); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies mutate to the stored task and writes every mutable
// column back. Order and creation time are never changed here.
func (s *Store) UpdateTask(ctx context.Context, ownerID, id string, mutate TaskMutator) (*domain.Task, error) {
	var updated *domain.Task
	err := s.inOwnerTx(ctx, "update task", ownerID, func(ctx context.Context, tx *sql.Tx) error {
		task, err := s.getTask(ctx, tx, ownerID, id)
		if err != nil {
			return err
		}
		if err := mutate(task); err != nil {
			return err
		}

		query := s.q(`
		UPDATE tasks
		SET title = ?, description = ?, priority = ?, status = ?, due_date = ?,
			category = ?, completed_at = ?, updated_at = ?
		WHERE owner_id = ? AND id = ?`)
		err = ExecuteWithRowsAffected(ctx, tx, query, "task", id,
			task.Title,
			NullableString(task.Description),
			string(task.Priority),
			string(task.Status),
			FormatTimePtrForDB(task.DueDate),
			NullableString(task.Category),
			FormatTimePtrForDB(task.CompletedAt),
			FormatTimeForDB(task.UpdatedAt),
			ownerID, id,
		)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM task_tags WHERE task_id = ? AND owner_id = ?`), id, ownerID); err != nil {
			return err
		}
		if err := s.insertTags(ctx, tx, task); err != nil {
			return err
		}

		updated = task
		return nil
	})
	return updated, err
}

// DeleteTask removes one task. Surviving tasks keep their order values.
func (s *Store) DeleteTask(ctx context.Context, ownerID, id string) error {
	return s.inOwnerTx(ctx, "delete task", ownerID, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM task_tags WHERE task_id = ? AND owner_id = ?`), id, ownerID); err != nil {
			return err
		}
		return ExecuteWithRowsAffected(ctx, tx, s.q(`DELETE FROM tasks WHERE owner_id = ? AND id = ?`), "task", id, ownerID, id)
	})
}

// UpdateStatusBatch sets the status of the owned tasks among ids. A task
// keeps its completion time when it is already completed.
func (s *Store) UpdateStatusBatch(ctx context.Context, ownerID string, ids []string, status domain.Status, now time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var affected int
	err := s.inOwnerTx(ctx, "batch update status", ownerID, func(ctx context.Context, tx *sql.Tx) error {
		stamp := FormatTimeForDB(now)
		completedAt := "NULL"
		args := []interface{}{string(status)}
		if status == domain.StatusCompleted {
			completedAt = "COALESCE(completed_at, ?)"
			args = append(args, stamp)
		}
		args = append(args, stamp, ownerID)
		args = append(args, stringArgs(ids)...)

		query := s.q(`
		UPDATE tasks
		SET status = ?, completed_at = ` + completedAt + `, updated_at = ?
		WHERE owner_id = ? AND id IN (` + placeholders(len(ids)) + `)`)

		var err error
		affected, err = ExecuteCountingRows(ctx, tx, "batch update status", query, args...)
		return err
	})
	return affected, err
}

// DeleteBatch deletes the owned tasks among ids.
func (s *Store) DeleteBatch(ctx context.Context, ownerID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var affected int
	err := s.inOwnerTx(ctx, "batch delete", ownerID, func(ctx context.Context, tx *sql.Tx) error {
		in := placeholders(len(ids))
		tagArgs := append([]interface{}{ownerID}, stringArgs(ids)...)
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM task_tags WHERE owner_id = ? AND task_id IN (`+in+`)`), tagArgs...); err != nil {
			return err
		}

		var err error
		affected, err = ExecuteCountingRows(ctx, tx, "batch delete",
			s.q(`DELETE FROM tasks WHERE owner_id = ? AND id IN (`+in+`)`), tagArgs...)
		return err
	})
	return affected, err
}

// QueryTasks counts and pages the owner's matching tasks inside one read
// transaction so the total and the page agree.
func (s *Store) QueryTasks(ctx context.Context, ownerID string, q domain.TaskQuery) ([]domain.Task, int, error) {
	filter := buildTaskFilter(s.dialect, ownerID, q)

	var (
		total int
		items []domain.Task
	)
	err := s.inReadTx(ctx, "query tasks", func(ctx context.Context, tx *sql.Tx) error {
		countQuery := s.q(`SELECT COUNT(*) FROM tasks t WHERE ` + filter.where)
		if err := tx.QueryRowContext(ctx, countQuery, filter.args...).Scan(&total); err != nil {
			return err
		}
		if total == 0 || q.Offset() >= total {
			items = []domain.Task{}
			return nil
		}

		pageQuery := s.q(`SELECT ` + taskColumns + ` FROM tasks t WHERE ` + filter.where +
			` ORDER BY ` + buildOrderBy(q) + ` LIMIT ? OFFSET ?`)
		args := append(append([]interface{}{}, filter.args...), q.Limit, q.Offset())

		tasks, err := QueryMultiple(ctx, tx, pageQuery, ScanTasks, "tasks", args...)
		if err != nil {
			return err
		}
		if err := s.loadTags(ctx, tx, tasks); err != nil {
			return err
		}

		items = make([]domain.Task, 0, len(tasks))
		for _, task := range tasks {
			items = append(items, *task)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ReorderTasks loads the owner's positions under the owner lock, asks plan
// for the changes and writes only those.
func (s *Store) ReorderTasks(ctx context.Context, ownerID string, plan OrderPlanner) (int, error) {
	var changed int
	err := s.inOwnerTx(ctx, "reorder tasks", ownerID, func(ctx context.Context, tx *sql.Tx) error {
		current, err := QueryMultiple(ctx, tx,
			s.q(`SELECT id, sort_order FROM tasks WHERE owner_id = ? ORDER BY sort_order ASC, id ASC`),
			ScanOrderSlots, "task order", ownerID)
		if err != nil {
			return err
		}

		changes, err := plan(current)
		if err != nil {
			return err
		}

		stamp := FormatTimeForDB(s.now())
		update := s.q(`UPDATE tasks SET sort_order = ?, updated_at = ? WHERE owner_id = ? AND id = ?`)
		for _, change := range changes {
			if err := ExecuteWithRowsAffected(ctx, tx, update, "task", change.ID, change.Order, stamp, ownerID, change.ID); err != nil {
				return err
			}
		}
		changed = len(changes)
		return nil
	})
	return changed, err
}

func (s *Store) insertTags(ctx context.Context, tx *sql.Tx, task *domain.Task) error {
	if len(task.Tags) == 0 {
		return nil
	}
	insert := s.q(`INSERT INTO task_tags (task_id, owner_id, position, tag) VALUES (?, ?, ?, ?)`)
	for i, tag := range task.Tags {
		if _, err := tx.ExecContext(ctx, insert, task.ID, task.OwnerID, i, tag); err != nil {
			return err
		}
	}
	return nil
}

// loadTags fills in Tags for every task, preserving insertion order.
func (s *Store) loadTags(ctx context.Context, q Querier, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Task, len(tasks))
	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		task.Tags = []string{}
		byID[task.ID] = task
		ids = append(ids, task.ID)
	}

	query := s.q(`SELECT task_id, tag FROM task_tags WHERE task_id IN (` + placeholders(len(ids)) + `) ORDER BY task_id, position`)
	tags, err := QueryMultiple(ctx, q, query, scanTaskTags, "task tags", stringArgs(ids)...)
	if err != nil {
		return err
	}
	for _, tt := range tags {
		if task, ok := byID[tt.TaskID]; ok {
			task.Tags = append(task.Tags, tt.Tag)
		}
	}
	return nil
}
