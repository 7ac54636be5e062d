package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"todo-list/internal/errors"
	"todo-list/internal/services"
)

// timeNow is a variable that can be replaced in tests
var timeNow = time.Now

// App carries what every task command needs: the task service, the owner
// the commands act for and the writer results are printed to.
type App struct {
	tasks    services.TaskService
	owner    string
	out      io.Writer
	errors   *ErrorHandler
	registry *CommandRegistry
}

// NewApp creates a CLI application over tasks. A nil out prints to stdout.
func NewApp(tasks services.TaskService, owner string, out io.Writer) *App {
	if out == nil {
		out = os.Stdout
	}
	app := &App{
		tasks:  tasks,
		owner:  owner,
		out:    out,
		errors: NewErrorHandler(),
	}
	app.registry = NewCommandRegistry(app)
	return app
}

// Run dispatches args[0] to the registered command of that name.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%s", a.registry.GetUsage())
	}
	return a.registry.Execute(ctx, args[0], args[1:])
}

// ownerID returns the owner commands act for.
func (a *App) ownerID() (string, error) {
	owner := strings.TrimSpace(a.owner)
	if owner == "" {
		return "", errors.NewInvalidInputError("owner", "", "an owner is required (--owner or TODO_OWNER)")
	}
	return owner, nil
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

var shorthandPattern = regexp.MustCompile(`^(\d+)(m|h|d|w|mo|y)$`)

// parseTimeShorthand parses time shorthand like "30m", "2h", "1d", etc.
func parseTimeShorthand(shorthand string) (time.Duration, error) {
	matches := shorthandPattern.FindStringSubmatch(shorthand)
	if matches == nil {
		return 0, fmt.Errorf("invalid time format: %s", shorthand)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid number in time format: %s", shorthand)
	}

	day := 24 * time.Hour
	switch matches[2] {
	case "m":
		return time.Duration(value) * time.Minute, nil
	case "h":
		return time.Duration(value) * time.Hour, nil
	case "d":
		return time.Duration(value) * day, nil
	case "w":
		return time.Duration(value) * 7 * day, nil
	case "mo":
		return time.Duration(value) * 30 * day, nil
	case "y":
		return time.Duration(value) * 365 * day, nil
	default:
		return 0, fmt.Errorf("invalid time unit: %s", matches[2])
	}
}

// parseDue reads a due date given as a shorthand offset from now ("3d"),
// an RFC 3339 timestamp or a plain date. A plain date means the end of that
// day in UTC.
func parseDue(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if d, err := parseTimeShorthand(raw); err == nil {
		due := timeNow().Add(d).UTC().Truncate(time.Second)
		return &due, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		t = t.Add(24*time.Hour - time.Second)
		return &t, nil
	}
	return nil, errors.NewInvalidInputError("due", raw, "expected a shorthand like 2d, an RFC 3339 time or YYYY-MM-DD")
}
