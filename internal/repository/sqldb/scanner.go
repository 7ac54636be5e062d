package sqldb

import (
	"database/sql"

	"todo-list/internal/domain"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// taskColumns lists the columns ScanTask expects, in order.
const taskColumns = `t.id, t.owner_id, t.title, t.description, t.priority, t.status,
	t.due_date, t.category, t.sort_order, t.completed_at, t.created_at, t.updated_at`

// ScanTask scans one task row selected with taskColumns. Tags are loaded
// separately.
func ScanTask(scanner Scanner) (*domain.Task, error) {
	task := &domain.Task{Tags: []string{}}
	var (
		description, dueDate, category, completedAt sql.NullString
		priority, status, createdAt, updatedAt      string
	)

	err := scanner.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&description,
		&priority,
		&status,
		&dueDate,
		&category,
		&task.Order,
		&completedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Description = StringPtr(description)
	task.Category = StringPtr(category)
	task.Priority = domain.Priority(priority)
	task.Status = domain.Status(status)

	if task.DueDate, err = ParseNullTimeFromDB(dueDate); err != nil {
		return nil, err
	}
	if task.CompletedAt, err = ParseNullTimeFromDB(completedAt); err != nil {
		return nil, err
	}
	if task.CreatedAt, err = ParseTimeFromDB(createdAt); err != nil {
		return nil, err
	}
	if task.UpdatedAt, err = ParseTimeFromDB(updatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

// ScanTasks scans multiple tasks from database rows
func ScanTasks(rows Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		task, err := ScanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

// ScanOrderSlots scans (id, sort_order) pairs.
func ScanOrderSlots(rows Rows) ([]domain.OrderSlot, error) {
	var slots []domain.OrderSlot
	for rows.Next() {
		var slot domain.OrderSlot
		if err := rows.Scan(&slot.ID, &slot.Order); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

type taskTag struct {
	TaskID string
	Tag    string
}

// scanTaskTags scans (task_id, tag) pairs.
func scanTaskTags(rows Rows) ([]taskTag, error) {
	var tags []taskTag
	for rows.Next() {
		var tt taskTag
		if err := rows.Scan(&tt.TaskID, &tt.Tag); err != nil {
			return nil, err
		}
		tags = append(tags, tt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}
