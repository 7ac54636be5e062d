package cli

import (
	"context"
	"strings"

	"github.com/spf13/pflag"

	"todo-list/internal/domain"
	"todo-list/internal/errors"
)

// AddCommand creates a task from its title words and flags.
type AddCommand struct {
	app         *App
	description string
	priority    string
	status      string
	due         string
	tags        []string
	category    string
}

// NewAddCommand creates a new add command handler
func NewAddCommand(app *App) *AddCommand {
	return &AddCommand{app: app}
}

// BindFlags registers the add flags.
func (c *AddCommand) BindFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&c.description, "description", "d", "", "Task description")
	flags.StringVarP(&c.priority, "priority", "p", "", "Priority: low, medium or high (default medium)")
	flags.StringVar(&c.status, "status", "", "Initial status (default pending)")
	flags.StringVar(&c.due, "due", "", "Due date: shorthand like 3d, RFC 3339 or YYYY-MM-DD")
	flags.StringSliceVarP(&c.tags, "tags", "t", nil, "Comma-separated tags")
	flags.StringVarP(&c.category, "category", "c", "", "Category")
}

// Execute runs the add command
func (c *AddCommand) Execute(ctx context.Context, args []string) error {
	owner, err := c.app.ownerID()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return errors.NewInvalidInputError("title", "", "usage: todo add <title> [flags]")
	}

	input := domain.CreateTaskInput{
		Title:    strings.Join(args, " "),
		Priority: domain.Priority(c.priority),
		Status:   domain.Status(c.status),
		Tags:     c.tags,
	}
	if c.description != "" {
		input.Description = &c.description
	}
	if c.category != "" {
		input.Category = &c.category
	}
	if c.due != "" {
		if input.DueDate, err = parseDue(c.due); err != nil {
			return err
		}
	}

	task, err := c.app.tasks.Create(ctx, owner, input)
	if err != nil {
		return err
	}
	c.app.printf("Created task %s at position %d: %s\n", task.ID, task.Order, task.Title)
	return nil
}

// ShowCommand prints one task in detail.
type ShowCommand struct {
	app    *App
	format string
}

// NewShowCommand creates a new show command handler
func NewShowCommand(app *App) *ShowCommand {
	return &ShowCommand{app: app, format: formatTable}
}

// BindFlags registers the show flags.
func (c *ShowCommand) BindFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&c.format, "format", "f", formatTable, "Output format: table or json")
}

// Execute runs the show command
func (c *ShowCommand) Execute(ctx context.Context, args []string) error {
	owner, err := c.app.ownerID()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return errors.NewInvalidInputError("id", strings.Join(args, " "), "usage: todo show <id>")
	}

	task, err := c.app.tasks.Get(ctx, owner, args[0])
	if err != nil {
		return err
	}
	if c.format == formatJSON {
		return writeJSON(c.app.out, task)
	}
	return printTask(c.app.out, task)
}

// EditCommand applies a partial update. Only flags given on the command
// line are changed.
type EditCommand struct {
	app         *App
	flags       *pflag.FlagSet
	title       string
	description string
	priority    string
	status      string
	due         string
	clearDue    bool
	tags        []string
	category    string
}

// NewEditCommand creates a new edit command handler
func NewEditCommand(app *App) *EditCommand {
	return &EditCommand{app: app}
}

// BindFlags registers the edit flags.
func (c *EditCommand) BindFlags(flags *pflag.FlagSet) {
	c.flags = flags
	flags.StringVar(&c.title, "title", "", "New title")
	flags.StringVarP(&c.description, "description", "d", "", "New description; empty clears it")
	flags.StringVarP(&c.priority, "priority", "p", "", "New priority")
	flags.StringVar(&c.status, "status", "", "New status")
	flags.StringVar(&c.due, "due", "", "New due date: shorthand like 3d, RFC 3339 or YYYY-MM-DD")
	flags.BoolVar(&c.clearDue, "clear-due", false, "Remove the due date")
	flags.StringSliceVarP(&c.tags, "tags", "t", nil, "Replace the tags; empty clears them")
	flags.StringVarP(&c.category, "category", "c", "", "New category; empty clears it")
}

func (c *EditCommand) changed(name string) bool {
	return c.flags != nil && c.flags.Changed(name)
}

// Execute runs the edit command
func (c *EditCommand) Execute(ctx context.Context, args []string) error {
	owner, err := c.app.ownerID()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return errors.NewInvalidInputError("id", strings.Join(args, " "), "usage: todo edit <id> [flags]")
	}

	var patch domain.TaskPatch
	if c.changed("title") {
		patch.Title = &c.title
	}
	if c.changed("description") {
		patch.Description = &c.description
	}
	if c.changed("priority") {
		priority := domain.Priority(c.priority)
		patch.Priority = &priority
	}
	if c.changed("status") {
		status := domain.Status(c.status)
		patch.Status = &status
	}
	if c.changed("tags") {
		tags := append([]string{}, c.tags...)
		patch.Tags = &tags
	}
	if c.changed("category") {
		patch.Category = &c.category
	}
	switch {
	case c.clearDue:
		patch.ClearDueDate = true
	case c.changed("due"):
		if patch.DueDate, err = parseDue(c.due); err != nil {
			return err
		}
	}

	task, err := c.app.tasks.Update(ctx, owner, args[0], patch)
	if err != nil {
		return err
	}
	c.app.printf("Updated task %s: %s\n", task.ID, task.Title)
	return nil
}

// StatusCommand changes the status of one task.
type StatusCommand struct {
	app *App
}

// NewStatusCommand creates a new status command handler
func NewStatusCommand(app *App) *StatusCommand {
	return &StatusCommand{app: app}
}

// Execute runs the status command
func (c *StatusCommand) Execute(ctx context.Context, args []string) error {
	owner, err := c.app.ownerID()
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return errors.NewInvalidInputError("args", strings.Join(args, " "), "usage: todo status <id> <status>")
	}

	task, err := c.app.tasks.UpdateStatus(ctx, owner, args[0], domain.Status(args[1]))
	if err != nil {
		return err
	}
	c.app.printf("Task %s is now %s\n", task.ID, task.Status)
	return nil
}

// DeleteCommand removes one task.
type DeleteCommand struct {
	app *App
}

// NewDeleteCommand creates a new delete command handler
func NewDeleteCommand(app *App) *DeleteCommand {
	return &DeleteCommand{app: app}
}

// Execute runs the delete command
func (c *DeleteCommand) Execute(ctx context.Context, args []string) error {
	owner, err := c.app.ownerID()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return errors.NewInvalidInputError("id", strings.Join(args, " "), "usage: todo delete <id>")
	}

	if err := c.app.tasks.Delete(ctx, owner, args[0]); err != nil {
		return err
	}
	c.app.printf("Deleted task %s\n", args[0])
	return nil
}

// BatchStatusCommand sets one status on many tasks.
type BatchStatusCommand struct {
	app *App
}

// NewBatchStatusCommand creates a new batch-status command handler
func NewBatchStatusCommand(app *App) *BatchStatusCommand {
	return &BatchStatusCommand{app: app}
}

// Execute runs the batch-status command
func (c *BatchStatusCommand) Execute(ctx context.Context, args []string) error {
	owner, err := c.app.ownerID()
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return errors.NewInvalidInputError("args", strings.Join(args, " "), "usage: todo batch-status <status> <id>...")
	}

	result, err := c.app.tasks.BatchUpdateStatus(ctx, owner, args[1:], domain.Status(args[0]))
	if err != nil {
		return err
	}
	printBatchResult(c.app.out, "Updated", result)
	return nil
}

// BatchDeleteCommand deletes many tasks.
type BatchDeleteCommand struct {
	app *App
}

// NewBatchDeleteCommand creates a new batch-delete command handler
func NewBatchDeleteCommand(app *App) *BatchDeleteCommand {
	return &BatchDeleteCommand{app: app}
}

// Execute runs the batch-delete command
func (c *BatchDeleteCommand) Execute(ctx context.Context, args []string) error {
	owner, err := c.app.ownerID()
	if err != nil {
		return err
	}

	result, err := c.app.tasks.BatchDelete(ctx, owner, args)
	if err != nil {
		return err
	}
	printBatchResult(c.app.out, "Deleted", result)
	return nil
}
