package cli

import (
	"context"
	"strings"

	"todo-list/internal/domain"
	"todo-list/internal/errors"
)

// ExportCommand writes every task of the owner, in list order, as CSV or
// JSON.
type ExportCommand struct {
	app *App
}

// NewExportCommand creates a new export command handler
func NewExportCommand(app *App) *ExportCommand {
	return &ExportCommand{app: app}
}

// Execute runs the export command
func (c *ExportCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.NewInvalidInputError("command", "export", "usage: todo export format=csv|json")
	}

	format := args[0]
	if !strings.HasPrefix(format, "format=") {
		return errors.NewInvalidInputError("format", format, "invalid format option")
	}
	format = strings.TrimPrefix(format, "format=")
	if format != formatCSV && format != formatJSON {
		return errors.NewInvalidInputError("format", format, "unsupported format")
	}

	owner, err := c.app.ownerID()
	if err != nil {
		return err
	}

	tasks, err := collectAll(ctx, c.app.tasks, owner, domain.TaskQuery{
		SortBy:    domain.SortByOrder,
		SortOrder: domain.SortAsc,
	})
	if err != nil {
		return err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}

	if format == formatJSON {
		return writeJSON(c.app.out, tasks)
	}
	return writeCSV(c.app.out, tasks)
}
