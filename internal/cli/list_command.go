package cli

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"todo-list/internal/domain"
	"todo-list/internal/errors"
	"todo-list/internal/query"
	"todo-list/internal/services"
)

// ListCommand prints one page, or every page, of the owner's tasks.
type ListCommand struct {
	app      *App
	status   string
	priority string
	category string
	tags     []string
	search   string
	from     string
	to       string
	sortBy   string
	order    string
	page     int
	limit    int
	all      bool
	format   string
}

// NewListCommand creates a new list command handler
func NewListCommand(app *App) *ListCommand {
	return &ListCommand{app: app, format: formatTable}
}

// BindFlags registers the list flags.
func (c *ListCommand) BindFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.status, "status", "", "Filter by status")
	flags.StringVarP(&c.priority, "priority", "p", "", "Filter by priority")
	flags.StringVarP(&c.category, "category", "c", "", "Filter by category")
	flags.StringSliceVarP(&c.tags, "tags", "t", nil, "Match tasks carrying any of these tags")
	flags.StringVarP(&c.search, "search", "s", "", "Case-insensitive text in title or description")
	flags.StringVar(&c.from, "from", "", "Earliest due date (RFC 3339 or YYYY-MM-DD)")
	flags.StringVar(&c.to, "to", "", "Latest due date (RFC 3339 or YYYY-MM-DD)")
	flags.StringVar(&c.sortBy, "sort", "order", "Sort field")
	flags.StringVar(&c.order, "order", "asc", "Sort direction: asc or desc")
	flags.IntVar(&c.page, "page", 0, "Page number (default 1)")
	flags.IntVar(&c.limit, "limit", 0, "Page size")
	flags.BoolVar(&c.all, "all", false, "Fetch every page")
	flags.StringVarP(&c.format, "format", "f", formatTable, "Output format: table, json or csv")
}

// Execute runs the list command. A leading time shorthand such as "2d"
// limits the listing to tasks due within that window from now; remaining
// arguments are search text.
func (c *ListCommand) Execute(ctx context.Context, args []string) error {
	owner, err := c.app.ownerID()
	if err != nil {
		return err
	}

	q, err := query.FromValues(c.values(args))
	if err != nil {
		return err
	}

	if c.all {
		tasks, err := collectAll(ctx, c.app.tasks, owner, q)
		if err != nil {
			return err
		}
		return c.print(tasks, nil)
	}

	page, err := c.app.tasks.Query(ctx, owner, q)
	if err != nil {
		return err
	}
	return c.print(page.Items, page)
}

func (c *ListCommand) values(args []string) url.Values {
	values := url.Values{}
	set := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}

	set("status", c.status)
	set("priority", c.priority)
	set("category", c.category)
	set("search", c.search)
	set("startDate", c.from)
	set("endDate", c.to)
	set("sortBy", c.sortBy)
	set("sortOrder", c.order)
	if len(c.tags) > 0 {
		values.Set("tags", strings.Join(c.tags, ","))
	}
	if c.page != 0 {
		values.Set("page", strconv.Itoa(c.page))
	}
	if c.limit != 0 {
		values.Set("limit", strconv.Itoa(c.limit))
	}

	if len(args) > 0 {
		if window, err := parseTimeShorthand(args[0]); err == nil {
			now := timeNow().UTC()
			values.Set("startDate", now.Format(time.RFC3339))
			values.Set("endDate", now.Add(window).Format(time.RFC3339))
			args = args[1:]
		}
	}
	if len(args) > 0 {
		values.Set("search", strings.Join(args, " "))
	}
	return values
}

func (c *ListCommand) print(tasks []domain.Task, page *domain.TaskPage) error {
	switch c.format {
	case formatJSON:
		if page != nil {
			return writeJSON(c.app.out, page)
		}
		return writeJSON(c.app.out, tasks)
	case formatCSV:
		return writeCSV(c.app.out, tasks)
	case formatTable, "":
		if err := printTaskTable(c.app.out, tasks); err != nil {
			return err
		}
		if page != nil && page.Total > 0 {
			c.app.printf("Page %d of %d (%d tasks)\n", page.Page, page.TotalPages, page.Total)
		}
		return nil
	default:
		return errors.NewInvalidInputError("format", c.format, "unsupported format")
	}
}

// collectAll walks every page of q, using the largest page size allowed.
func collectAll(ctx context.Context, tasks services.TaskService, owner string, q domain.TaskQuery) ([]domain.Task, error) {
	q.Page = 1
	if q.Limit == 0 {
		q.Limit = 50
	}

	var all []domain.Task
	for {
		page, err := tasks.Query(ctx, owner, q)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if !page.HasMore {
			return all, nil
		}
		q.Page++
	}
}
