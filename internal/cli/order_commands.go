package cli

import (
	"context"
	"strconv"
	"strings"

	"todo-list/internal/domain"
	"todo-list/internal/errors"
)

// MoveCommand moves one task to a new position in the owner's list.
type MoveCommand struct {
	app *App
}

// NewMoveCommand creates a new move command handler
func NewMoveCommand(app *App) *MoveCommand {
	return &MoveCommand{app: app}
}

// Execute runs the move command
func (c *MoveCommand) Execute(ctx context.Context, args []string) error {
	owner, err := c.app.ownerID()
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return errors.NewInvalidInputError("args", strings.Join(args, " "), "usage: todo move <id> <position>")
	}
	position, err := strconv.Atoi(args[1])
	if err != nil {
		return errors.NewInvalidInputError("position", args[1], "position must be an integer")
	}

	task, err := c.app.tasks.MoveTask(ctx, owner, args[0], position)
	if err != nil {
		return err
	}
	c.app.printf("Moved task %s to position %d\n", task.ID, task.Order)
	return nil
}

// ReorderCommand renumbers the owner's list: the given ids come first in
// the given order, every other task follows in its current order.
type ReorderCommand struct {
	app *App
}

// NewReorderCommand creates a new reorder command handler
func NewReorderCommand(app *App) *ReorderCommand {
	return &ReorderCommand{app: app}
}

// Execute runs the reorder command
func (c *ReorderCommand) Execute(ctx context.Context, args []string) error {
	owner, err := c.app.ownerID()
	if err != nil {
		return err
	}

	assignments := make([]domain.OrderAssignment, 0, len(args))
	for i, id := range args {
		assignments = append(assignments, domain.OrderAssignment{ID: id, Order: i})
	}

	result, err := c.app.tasks.ReorderAll(ctx, owner, assignments)
	if err != nil {
		return err
	}
	printBatchResult(c.app.out, "Reordered", result)
	return nil
}
