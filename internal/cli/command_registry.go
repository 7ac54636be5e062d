package cli

import (
	"context"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"todo-list/internal/errors"
)

// Command represents a CLI command
type Command interface {
	Execute(ctx context.Context, args []string) error
}

// FlagBinder is implemented by commands that take flags.
type FlagBinder interface {
	BindFlags(flags *pflag.FlagSet)
}

// CommandRegistry manages all available task commands
type CommandRegistry struct {
	commands map[string]Command
}

// NewCommandRegistry creates a registry holding every task command of app.
func NewCommandRegistry(app *App) *CommandRegistry {
	registry := &CommandRegistry{
		commands: make(map[string]Command),
	}

	registry.Register("add", NewAddCommand(app))
	registry.Register("list", NewListCommand(app))
	registry.Register("show", NewShowCommand(app))
	registry.Register("edit", NewEditCommand(app))
	registry.Register("status", NewStatusCommand(app))
	registry.Register("move", NewMoveCommand(app))
	registry.Register("reorder", NewReorderCommand(app))
	registry.Register("delete", NewDeleteCommand(app))
	registry.Register("batch-status", NewBatchStatusCommand(app))
	registry.Register("batch-delete", NewBatchDeleteCommand(app))
	registry.Register("export", NewExportCommand(app))

	return registry
}

// Register adds a command to the registry
func (r *CommandRegistry) Register(name string, command Command) {
	r.commands[name] = command
}

// Get returns the named command.
func (r *CommandRegistry) Get(name string) (Command, bool) {
	command, ok := r.commands[name]
	return command, ok
}

// Names lists the registered command names in sorted order.
func (r *CommandRegistry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs the specified command with the given arguments
func (r *CommandRegistry) Execute(ctx context.Context, commandName string, args []string) error {
	command, exists := r.commands[commandName]
	if !exists {
		return errors.NewInvalidInputError("command", commandName, "unknown command")
	}
	return command.Execute(ctx, args)
}

// GetUsage returns the usage string for the task commands
func (r *CommandRegistry) GetUsage() string {
	return "usage: todo <" + strings.Join(r.Names(), "|") + "> [args]"
}
